package ports

import (
	"context"

	"claimsight/domain/anomaly"
	"claimsight/domain/claims"
)

// ClaimStore defines the aggregate query surface over the claims dataset.
// Every method takes the normalized filter set; implementations translate
// it into the store's native predicate form.
type ClaimStore interface {
	// Headline aggregates
	KpiSummary(ctx context.Context, f claims.FilterParams) (claims.KpiSummary, error)
	MonthlySeries(ctx context.Context, f claims.FilterParams) ([]claims.MonthlyPoint, error)
	StateBreakdown(ctx context.Context, f claims.FilterParams) ([]claims.StateBreakdown, error)
	AllStateBreakdown(ctx context.Context, f claims.FilterParams) ([]claims.StateBreakdown, error)
	FormularyBreakdown(ctx context.Context, f claims.FilterParams) ([]claims.FormularyBreakdown, error)
	AdjudicationSummary(ctx context.Context, f claims.FilterParams) (claims.AdjudicationSummary, error)

	// Drill-down aggregates
	TopDrugs(ctx context.Context, f claims.FilterParams) ([]claims.DrugRow, error)
	DaysSupplyBins(ctx context.Context, f claims.FilterParams) ([]claims.DaysSupplyBin, error)
	MonyBreakdown(ctx context.Context, f claims.FilterParams) ([]claims.MonyBreakdown, error)
	TopGroups(ctx context.Context, f claims.FilterParams) ([]claims.GroupVolume, error)
	TopManufacturers(ctx context.Context, f claims.FilterParams) ([]claims.ManufacturerVolume, error)

	// Listings
	FilterOptions(ctx context.Context, f claims.FilterParams) (claims.FilterOptions, error)
	Entities(ctx context.Context) ([]claims.Entity, error)

	// Anomaly support
	AnomalyInputs(ctx context.Context, entityID int) (anomaly.Inputs, error)
}
