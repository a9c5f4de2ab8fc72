package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"claimsight/domain/claims"
	"claimsight/domain/insight"
)

func stubOverviewCalls(store *mockClaimStore, f claims.FilterParams) {
	store.On("KpiSummary", mock.Anything, mock.Anything).Return(entityKpis, nil)
	store.On("MonthlySeries", mock.Anything, f).Return([]claims.MonthlyPoint{
		{Month: "2021-09", Incurred: 78035, Reversed: 7094},
	}, nil)
	store.On("FormularyBreakdown", mock.Anything, f).Return([]claims.FormularyBreakdown{
		{Type: "OPEN", NetClaims: 243632, ReversalRate: 10.9},
		{Type: "MANAGED", NetClaims: 170571, ReversalRate: 10.8},
		{Type: "HMF", NetClaims: 73257, ReversalRate: 10.8},
	}, nil)
	store.On("StateBreakdown", mock.Anything, f).Return([]claims.StateBreakdown{}, nil)
	store.On("AllStateBreakdown", mock.Anything, f).Return([]claims.StateBreakdown{
		{State: "CA", NetClaims: 140439, GroupCount: 41},
		{State: "IN", NetClaims: 126347, GroupCount: 37},
		{State: "PA", NetClaims: 109916, GroupCount: 35},
		{State: "KS", NetClaims: 57444, GroupCount: 38},
		{State: "MN", NetClaims: 53314, GroupCount: 38},
	}, nil)
	store.On("AdjudicationSummary", mock.Anything, f).Return(claims.AdjudicationSummary{Rate: 25.1}, nil)
}

func TestCardsOverviewUnfiltered(t *testing.T) {
	f := claims.DefaultFilters()
	store := &mockClaimStore{}
	stubOverviewCalls(store, f)

	cards, err := NewInsightService(NewDashboardService(store)).
		Cards(context.Background(), f, insight.ViewOverview, 0)
	require.NoError(t, err)

	require.Len(t, cards, insight.DefaultMax)
	assert.Equal(t, "portfolio-summary", cards[0].ID)
	assert.Equal(t, "distribution-channel", cards[1].ID)
	assert.Equal(t, "ltc-pattern", cards[2].ID)
}

func TestCardsOverviewStateFiltered(t *testing.T) {
	f := claims.DefaultFilters()
	f.State = "KS"
	store := &mockClaimStore{}
	stubOverviewCalls(store, f)

	cards, err := NewInsightService(NewDashboardService(store)).
		Cards(context.Background(), f, insight.ViewOverview, 0)
	require.NoError(t, err)

	require.NotEmpty(t, cards)
	// With a state active the portfolio card drops out and the LTC pattern
	// leads, followed by the Kansas batch-reversal warning.
	assert.Equal(t, "ltc-pattern", cards[0].ID)
	assert.Equal(t, "state-ks-warning", cards[1].ID)
}

func TestCardsExplorerView(t *testing.T) {
	f := claims.DefaultFilters()
	store := &mockClaimStore{}
	store.On("KpiSummary", mock.Anything, mock.Anything).Return(entityKpis, nil)
	store.On("MonthlySeries", mock.Anything, f).Return([]claims.MonthlyPoint{}, nil)
	store.On("TopDrugs", mock.Anything, f).Return([]claims.DrugRow{
		{DrugName: "ATORVASTATIN CALCIUM", NetClaims: 24857, ReversalRate: 10.0},
	}, nil)
	store.On("DaysSupplyBins", mock.Anything, f).Return([]claims.DaysSupplyBin{
		{Bin: "7 days", Count: 73000},
		{Bin: "14 days", Count: 104000},
		{Bin: "30 days", Count: 36000},
	}, nil)
	store.On("MonyBreakdown", mock.Anything, f).Return([]claims.MonyBreakdown{
		{Type: "Y", NetClaims: 404000},
		{Type: "N", NetClaims: 65600},
		{Type: "O", NetClaims: 7200},
	}, nil)
	store.On("TopGroups", mock.Anything, f).Return([]claims.GroupVolume{
		{GroupID: "6P6002", NetClaims: 17016},
	}, nil)
	store.On("TopManufacturers", mock.Anything, f).Return([]claims.ManufacturerVolume{
		{Manufacturer: "AUROBINDO PHARMA", NetClaims: 43391},
	}, nil)

	cards, err := NewInsightService(NewDashboardService(store)).
		Cards(context.Background(), f, insight.ViewExplorer, 0)
	require.NoError(t, err)

	require.NotEmpty(t, cards)
	for _, c := range cards {
		assert.Contains(t, c.ID, "exp-")
	}
}

func TestCardsUnknownView(t *testing.T) {
	svc := NewInsightService(NewDashboardService(&mockClaimStore{}))
	_, err := svc.Cards(context.Background(), claims.DefaultFilters(), "sidebar", 0)
	assert.Error(t, err)
}

func TestCardsStoreErrorSurfaces(t *testing.T) {
	boom := errors.New("connection reset")
	store := &mockClaimStore{}
	store.On("KpiSummary", mock.Anything, mock.Anything).Return(claims.KpiSummary{}, boom)
	store.On("MonthlySeries", mock.Anything, mock.Anything).Return([]claims.MonthlyPoint{}, nil)
	store.On("FormularyBreakdown", mock.Anything, mock.Anything).Return([]claims.FormularyBreakdown{}, nil)
	store.On("StateBreakdown", mock.Anything, mock.Anything).Return([]claims.StateBreakdown{}, nil)
	store.On("AllStateBreakdown", mock.Anything, mock.Anything).Return([]claims.StateBreakdown{}, nil)
	store.On("AdjudicationSummary", mock.Anything, mock.Anything).Return(claims.AdjudicationSummary{}, nil)

	_, err := NewInsightService(NewDashboardService(store)).
		Cards(context.Background(), claims.DefaultFilters(), insight.ViewOverview, 0)
	assert.ErrorIs(t, err, boom)
}
