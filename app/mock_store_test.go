package app

import (
	"context"

	"github.com/stretchr/testify/mock"

	"claimsight/domain/anomaly"
	"claimsight/domain/claims"
)

type mockClaimStore struct {
	mock.Mock
}

func (m *mockClaimStore) KpiSummary(ctx context.Context, f claims.FilterParams) (claims.KpiSummary, error) {
	args := m.Called(ctx, f)
	return args.Get(0).(claims.KpiSummary), args.Error(1)
}

func (m *mockClaimStore) MonthlySeries(ctx context.Context, f claims.FilterParams) ([]claims.MonthlyPoint, error) {
	args := m.Called(ctx, f)
	return args.Get(0).([]claims.MonthlyPoint), args.Error(1)
}

func (m *mockClaimStore) StateBreakdown(ctx context.Context, f claims.FilterParams) ([]claims.StateBreakdown, error) {
	args := m.Called(ctx, f)
	return args.Get(0).([]claims.StateBreakdown), args.Error(1)
}

func (m *mockClaimStore) AllStateBreakdown(ctx context.Context, f claims.FilterParams) ([]claims.StateBreakdown, error) {
	args := m.Called(ctx, f)
	return args.Get(0).([]claims.StateBreakdown), args.Error(1)
}

func (m *mockClaimStore) FormularyBreakdown(ctx context.Context, f claims.FilterParams) ([]claims.FormularyBreakdown, error) {
	args := m.Called(ctx, f)
	return args.Get(0).([]claims.FormularyBreakdown), args.Error(1)
}

func (m *mockClaimStore) AdjudicationSummary(ctx context.Context, f claims.FilterParams) (claims.AdjudicationSummary, error) {
	args := m.Called(ctx, f)
	return args.Get(0).(claims.AdjudicationSummary), args.Error(1)
}

func (m *mockClaimStore) TopDrugs(ctx context.Context, f claims.FilterParams) ([]claims.DrugRow, error) {
	args := m.Called(ctx, f)
	return args.Get(0).([]claims.DrugRow), args.Error(1)
}

func (m *mockClaimStore) DaysSupplyBins(ctx context.Context, f claims.FilterParams) ([]claims.DaysSupplyBin, error) {
	args := m.Called(ctx, f)
	return args.Get(0).([]claims.DaysSupplyBin), args.Error(1)
}

func (m *mockClaimStore) MonyBreakdown(ctx context.Context, f claims.FilterParams) ([]claims.MonyBreakdown, error) {
	args := m.Called(ctx, f)
	return args.Get(0).([]claims.MonyBreakdown), args.Error(1)
}

func (m *mockClaimStore) TopGroups(ctx context.Context, f claims.FilterParams) ([]claims.GroupVolume, error) {
	args := m.Called(ctx, f)
	return args.Get(0).([]claims.GroupVolume), args.Error(1)
}

func (m *mockClaimStore) TopManufacturers(ctx context.Context, f claims.FilterParams) ([]claims.ManufacturerVolume, error) {
	args := m.Called(ctx, f)
	return args.Get(0).([]claims.ManufacturerVolume), args.Error(1)
}

func (m *mockClaimStore) FilterOptions(ctx context.Context, f claims.FilterParams) (claims.FilterOptions, error) {
	args := m.Called(ctx, f)
	return args.Get(0).(claims.FilterOptions), args.Error(1)
}

func (m *mockClaimStore) Entities(ctx context.Context) ([]claims.Entity, error) {
	args := m.Called(ctx)
	return args.Get(0).([]claims.Entity), args.Error(1)
}

func (m *mockClaimStore) AnomalyInputs(ctx context.Context, entityID int) (anomaly.Inputs, error) {
	args := m.Called(ctx, entityID)
	return args.Get(0).(anomaly.Inputs), args.Error(1)
}
