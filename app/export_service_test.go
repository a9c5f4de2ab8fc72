package app

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"claimsight/domain/claims"
	"claimsight/domain/insight"
)

var exportNow = time.Date(2026, 8, 28, 9, 30, 0, 0, time.UTC)

func stubEntities(store *mockClaimStore) {
	store.On("Entities", mock.Anything).Return([]claims.Entity{
		{ID: 1, Name: "Pharmacy A", Description: "2021 LTC claims"},
	}, nil)
}

func TestOverviewExportCSV(t *testing.T) {
	f := ksFilters()
	store := &mockClaimStore{}
	store.On("KpiSummary", mock.Anything, f).Return(filteredKpis, nil)
	store.On("KpiSummary", mock.Anything, entityOnly(f)).Return(entityKpis, nil)
	store.On("MonthlySeries", mock.Anything, f).Return([]claims.MonthlyPoint{
		{Month: "2021-08", Incurred: 1108, Reversed: 4921},
	}, nil)
	store.On("FormularyBreakdown", mock.Anything, f).Return([]claims.FormularyBreakdown{
		{Type: "OPEN", NetClaims: 23144, ReversalRate: 16.4},
	}, nil)
	store.On("StateBreakdown", mock.Anything, f).Return([]claims.StateBreakdown{
		{State: "KS", NetClaims: 46288, TotalClaims: 68600, ReversalRate: 16.3, GroupCount: 38},
	}, nil)
	store.On("AllStateBreakdown", mock.Anything, f).Return([]claims.StateBreakdown{}, nil)
	store.On("AdjudicationSummary", mock.Anything, f).Return(claims.AdjudicationSummary{
		Adjudicated: 17220, NotAdjudicated: 51380, Rate: 25.1,
	}, nil)
	stubEntities(store)

	svc := NewExportService(NewDashboardService(store), store)
	data, filename, contentType, err := svc.Document(context.Background(), insight.ViewOverview, f, FormatCSV, exportNow)
	require.NoError(t, err)

	assert.Equal(t, "overview-export-2026-08-28.csv", filename)
	assert.Equal(t, "text/csv", contentType)

	body := string(data)
	assert.Contains(t, body, "# SPS Health — Overview Export")
	assert.Contains(t, body, "# Filters: State = KS")
	assert.Contains(t, body, "# Entity: Pharmacy A")
	assert.Contains(t, body, "KPI Summary")
	assert.Contains(t, body, `"Total Claims","68,600"`)
	assert.Contains(t, body, "State Breakdown")
	assert.Contains(t, body, `"KS","46,288","68,600","16.3%","38"`)
	// The monthly series is densified to all twelve months.
	assert.Contains(t, body, `"2021-01","0","0","0"`)
	assert.Contains(t, body, `"2021-08","1,108","4,921","-3,813"`)
	assert.Contains(t, body, `"2021-12","0","0","0"`)
}

func TestExplorerExportFilename(t *testing.T) {
	f := claims.DefaultFilters()
	store := &mockClaimStore{}
	store.On("KpiSummary", mock.Anything, mock.Anything).Return(entityKpis, nil)
	store.On("MonthlySeries", mock.Anything, f).Return([]claims.MonthlyPoint{}, nil)
	store.On("TopDrugs", mock.Anything, f).Return([]claims.DrugRow{
		{DrugName: "GABAPENTIN", LabelName: "GABAPENTIN 300MG", NDC: "1234567890", NetClaims: 15021, ReversalRate: 10.0, Formulary: "OPEN", TopState: "CA"},
	}, nil)
	store.On("DaysSupplyBins", mock.Anything, f).Return([]claims.DaysSupplyBin{}, nil)
	store.On("MonyBreakdown", mock.Anything, f).Return([]claims.MonyBreakdown{}, nil)
	store.On("TopGroups", mock.Anything, f).Return([]claims.GroupVolume{}, nil)
	store.On("TopManufacturers", mock.Anything, f).Return([]claims.ManufacturerVolume{}, nil)
	stubEntities(store)

	svc := NewExportService(NewDashboardService(store), store)
	data, filename, contentType, err := svc.Document(context.Background(), insight.ViewExplorer, f, FormatCSV, exportNow)
	require.NoError(t, err)

	assert.Equal(t, "explorer-export-2026-08-28.csv", filename)
	assert.Equal(t, "text/csv", contentType)

	body := string(data)
	assert.Contains(t, body, "# SPS Health — Claims Explorer Export")
	assert.Contains(t, body, "# Filters: None")
	assert.Contains(t, body, "Top Drugs")
	assert.True(t, strings.Contains(body, `"GABAPENTIN","GABAPENTIN 300MG"`))
}

func TestDocumentUnknownView(t *testing.T) {
	svc := NewExportService(NewDashboardService(&mockClaimStore{}), &mockClaimStore{})

	_, _, _, err := svc.Document(context.Background(), "sidebar", claims.DefaultFilters(), FormatCSV, exportNow)
	assert.Error(t, err)
}

func TestFilterSummary(t *testing.T) {
	tests := []struct {
		name string
		f    claims.FilterParams
		want string
	}{
		{"empty", claims.DefaultFilters(), ""},
		{
			"state and dates",
			claims.FilterParams{State: "KS", DateStart: "2021-08-01", DateEnd: "2021-08-31"},
			"State = KS, From 2021-08-01, To 2021-08-31",
		},
		{
			"flagged included",
			claims.FilterParams{Mony: "Y", IncludeFlagged: true},
			"MONY = Y, Flagged NDCs included",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterSummary(tt.f))
		})
	}
}
