// Package app orchestrates store queries into dashboard payloads.
package app

import (
	"context"

	"golang.org/x/sync/errgroup"

	"claimsight/domain/claims"
	"claimsight/ports"
)

// DashboardService assembles the overview and explorer payloads by fanning
// independent aggregate queries out against the claim store.
type DashboardService struct {
	store ports.ClaimStore
}

// NewDashboardService creates a dashboard service.
func NewDashboardService(store ports.ClaimStore) *DashboardService {
	return &DashboardService{store: store}
}

// Overview builds the portfolio-level payload: filtered KPIs, the entity
// baseline, the monthly series, and the dimensional breakdowns. The
// all-states breakdown ignores the state filter so charts can highlight
// the selected state against its peers.
func (s *DashboardService) Overview(ctx context.Context, f claims.FilterParams) (claims.OverviewResponse, error) {
	var out claims.OverviewResponse

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		out.Kpis, err = s.store.KpiSummary(gctx, f)
		return err
	})
	g.Go(func() (err error) {
		out.UnfilteredKpis, err = s.store.KpiSummary(gctx, claims.FilterParams{
			EntityID:       f.EntityID,
			IncludeFlagged: f.IncludeFlagged,
			Limit:          f.Limit,
		})
		return err
	})
	g.Go(func() (err error) {
		out.Monthly, err = s.store.MonthlySeries(gctx, f)
		return err
	})
	g.Go(func() (err error) {
		out.Formulary, err = s.store.FormularyBreakdown(gctx, f)
		return err
	})
	g.Go(func() (err error) {
		out.States, err = s.store.StateBreakdown(gctx, f)
		return err
	})
	g.Go(func() (err error) {
		out.AllStates, err = s.store.AllStateBreakdown(gctx, f)
		return err
	})
	g.Go(func() (err error) {
		out.Adjudication, err = s.store.AdjudicationSummary(gctx, f)
		return err
	})

	if err := g.Wait(); err != nil {
		return claims.OverviewResponse{}, err
	}
	return out, nil
}

// Explorer builds the drill-down payload: KPIs plus ranked drug, group,
// manufacturer, MONY, and days-supply breakdowns.
func (s *DashboardService) Explorer(ctx context.Context, f claims.FilterParams) (claims.ClaimsResponse, error) {
	var out claims.ClaimsResponse

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		out.Kpis, err = s.store.KpiSummary(gctx, f)
		return err
	})
	g.Go(func() (err error) {
		out.UnfilteredKpis, err = s.store.KpiSummary(gctx, claims.FilterParams{
			EntityID:       f.EntityID,
			IncludeFlagged: f.IncludeFlagged,
			Limit:          f.Limit,
		})
		return err
	})
	g.Go(func() (err error) {
		out.Monthly, err = s.store.MonthlySeries(gctx, f)
		return err
	})
	g.Go(func() (err error) {
		out.Drugs, err = s.store.TopDrugs(gctx, f)
		return err
	})
	g.Go(func() (err error) {
		out.DaysSupply, err = s.store.DaysSupplyBins(gctx, f)
		return err
	})
	g.Go(func() (err error) {
		out.Mony, err = s.store.MonyBreakdown(gctx, f)
		return err
	})
	g.Go(func() (err error) {
		out.TopGroups, err = s.store.TopGroups(gctx, f)
		return err
	})
	g.Go(func() (err error) {
		out.TopManufacturers, err = s.store.TopManufacturers(gctx, f)
		return err
	})

	if err := g.Wait(); err != nil {
		return claims.ClaimsResponse{}, err
	}
	return out, nil
}
