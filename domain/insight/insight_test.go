package insight

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"claimsight/domain/claims"
)

var baseKpis = claims.KpiSummary{
	TotalClaims:  55000,
	NetClaims:    50000,
	ReversalRate: 10.8,
	UniqueDrugs:  1200,
}

func overviewFixture() claims.OverviewResponse {
	states := []claims.StateBreakdown{
		{State: "CA", NetClaims: 15000, TotalClaims: 16800, ReversalRate: 10.0, GroupCount: 40},
		{State: "IN", NetClaims: 12000, TotalClaims: 13400, ReversalRate: 10.0, GroupCount: 35},
		{State: "KS", NetClaims: 8000, TotalClaims: 8900, ReversalRate: 10.0, GroupCount: 30},
		{State: "MN", NetClaims: 9000, TotalClaims: 10000, ReversalRate: 10.0, GroupCount: 44},
		{State: "PA", NetClaims: 6000, TotalClaims: 6700, ReversalRate: 10.2, GroupCount: 40},
	}
	return claims.OverviewResponse{
		Kpis:           baseKpis,
		UnfilteredKpis: baseKpis,
		Monthly: []claims.MonthlyPoint{
			{Month: "2021-01", Incurred: 5000, Reversed: 500},
			{Month: "2021-05", Incurred: 3, Reversed: 2},
			{Month: "2021-09", Incurred: 7100, Reversed: 710},
			{Month: "2021-11", Incurred: 2300, Reversed: 230},
		},
		Formulary: []claims.FormularyBreakdown{
			{Type: "OPEN", NetClaims: 25000, ReversalRate: 10.8},
			{Type: "MANAGED", NetClaims: 18000, ReversalRate: 10.7},
			{Type: "HMF", NetClaims: 7000, ReversalRate: 10.7},
		},
		States:       states,
		AllStates:    states,
		Adjudication: claims.AdjudicationSummary{Adjudicated: 12500, NotAdjudicated: 37500, Rate: 25.0},
	}
}

func explorerFixture() claims.ClaimsResponse {
	return claims.ClaimsResponse{
		Kpis:           baseKpis,
		UnfilteredKpis: baseKpis,
		Drugs: []claims.DrugRow{
			{DrugName: "ATORVASTATIN", LabelName: "Atorvastatin 40mg", NDC: "111", NetClaims: 10000, ReversalRate: 10.5, Formulary: "OPEN", TopState: "CA"},
			{DrugName: "PANTOPRAZOLE", LabelName: "Pantoprazole 40mg", NDC: "222", NetClaims: 9000, ReversalRate: 9.8, Formulary: "MANAGED", TopState: "IN"},
			{DrugName: "TAMSULOSIN", LabelName: "Tamsulosin 0.4mg", NDC: "333", NetClaims: 8500, ReversalRate: 11.2, Formulary: "OPEN", TopState: "MN"},
		},
		DaysSupply: []claims.DaysSupplyBin{
			{Bin: "7", Count: 7300},
			{Bin: "14", Count: 10400},
			{Bin: "30", Count: 3600},
			{Bin: "60", Count: 2400},
			{Bin: "90", Count: 300},
		},
		Mony: []claims.MonyBreakdown{
			{Type: "Y", NetClaims: 42000},
			{Type: "N", NetClaims: 6800},
			{Type: "O", NetClaims: 750},
			{Type: "M", NetClaims: 450},
		},
		TopGroups: []claims.GroupVolume{
			{GroupID: "6P6002", NetClaims: 17000},
			{GroupID: "101320", NetClaims: 14000},
			{GroupID: "400127", NetClaims: 13000},
		},
		TopManufacturers: []claims.ManufacturerVolume{
			{Manufacturer: "AUROBINDO", NetClaims: 43000},
			{Manufacturer: "ASCEND", NetClaims: 35000},
			{Manufacturer: "AMNEAL", NetClaims: 34000},
		},
	}
}

func overviewCtx(f claims.FilterParams) Context {
	return Context{Filters: f, View: ViewOverview, Overview: overviewFixture()}
}

func explorerCtx(f claims.FilterParams) Context {
	return Context{Filters: f, View: ViewExplorer, Explorer: explorerFixture()}
}

func cardIDs(cards []Card) []string {
	ids := make([]string, len(cards))
	for i, c := range cards {
		ids[i] = c.ID
	}
	return ids
}

func TestUnfilteredOverview(t *testing.T) {
	cards := Generate(overviewCtx(claims.DefaultFilters()), 0)

	require.Len(t, cards, 3)
	assert.Equal(t, []string{"portfolio-summary", "distribution-channel", "ltc-pattern"}, cardIDs(cards))
}

func TestPortfolioSummaryContents(t *testing.T) {
	cards := Generate(overviewCtx(claims.DefaultFilters()), 0)

	ps := cards[0]
	assert.Equal(t, SeverityInfo, ps.Severity)
	assert.Contains(t, ps.Body, "5 states")
	assert.Contains(t, ps.Body, "3 formulary types")
	assert.Contains(t, ps.Body, "50K net claims")
}

func TestKansasWarning(t *testing.T) {
	f := claims.DefaultFilters()
	f.State = "KS"
	cards := Generate(overviewCtx(f), 0)

	require.True(t, len(cards) >= 2)
	assert.Equal(t, "ltc-pattern", cards[0].ID)
	assert.Equal(t, "state-ks-warning", cards[1].ID)
	assert.Equal(t, SeverityWarning, cards[1].Severity)
	assert.Contains(t, cards[1].Body, "18 Kansas groups")
}

func TestStateRank(t *testing.T) {
	cases := []struct {
		state   string
		title   string
		ordinal string
	}{
		{"CA", "California", "1st"},
		{"IN", "Indiana", "2nd"},
		{"MN", "Minnesota", "3rd"},
		{"KS", "Kansas", "4th"},
	}
	for _, tc := range cases {
		t.Run(tc.state, func(t *testing.T) {
			f := claims.DefaultFilters()
			f.State = tc.state
			cards := Generate(overviewCtx(f), 5)

			var rank *Card
			for i := range cards {
				if cards[i].ID == "state-rank" {
					rank = &cards[i]
				}
			}
			require.NotNil(t, rank)
			assert.Contains(t, rank.Title, tc.title)
			assert.Contains(t, rank.Title, tc.ordinal)
		})
	}
}

func TestStateRankShare(t *testing.T) {
	f := claims.DefaultFilters()
	f.State = "CA"
	cards := Generate(overviewCtx(f), 5)

	for _, c := range cards {
		if c.ID == "state-rank" {
			assert.Contains(t, c.Body, "30.0%")
			return
		}
	}
	t.Fatal("state-rank card not generated")
}

func TestMonthWarnings(t *testing.T) {
	cases := []struct {
		dateStart string
		id        string
		title     string
	}{
		{"2021-09-01", "month-sep", "September Surge"},
		{"2021-11-01", "month-nov", "November Dip"},
		{"2021-05-01", "month-may", "Synthetic Data Alert"},
	}
	for _, tc := range cases {
		t.Run(tc.id, func(t *testing.T) {
			f := claims.DefaultFilters()
			f.DateStart = tc.dateStart
			cards := Generate(overviewCtx(f), 0)

			for _, c := range cards {
				if c.ID == tc.id {
					assert.Equal(t, SeverityWarning, c.Severity)
					assert.Contains(t, c.Title, tc.title)
					return
				}
			}
			t.Fatalf("%s card not generated", tc.id)
		})
	}
}

func TestMonthWarningsFromCompactDateFilter(t *testing.T) {
	// A querystring date in the compact form must still trip the month
	// rules once it passes through the normalizer.
	f := claims.Normalize(map[string]string{"dateStart": "20210901"})
	cards := Generate(overviewCtx(f), 0)

	assert.Contains(t, cardIDs(cards), "month-sep")
}

func TestGenerateDeterministic(t *testing.T) {
	f := claims.DefaultFilters()
	f.State = "KS"

	first := Generate(overviewCtx(f), 5)
	second := Generate(overviewCtx(f), 5)
	assert.Equal(t, first, second)

	explorerFirst := Generate(explorerCtx(claims.DefaultFilters()), 0)
	explorerSecond := Generate(explorerCtx(claims.DefaultFilters()), 0)
	assert.Equal(t, explorerFirst, explorerSecond)
}

func TestFormularyActive(t *testing.T) {
	f := claims.DefaultFilters()
	f.Formulary = "OPEN"
	cards := Generate(overviewCtx(f), 0)

	for _, c := range cards {
		if c.ID == "formulary-active" {
			assert.Equal(t, SeverityInfo, c.Severity)
			assert.Contains(t, c.Body, "OPEN formulary")
			assert.Contains(t, c.Body, "25,000")
			return
		}
	}
	t.Fatal("formulary-active card not generated")
}

func TestMonyGenericPositive(t *testing.T) {
	f := claims.DefaultFilters()
	f.Mony = "Y"
	cards := Generate(overviewCtx(f), 0)

	for _, c := range cards {
		if c.ID == "mony-y" {
			assert.Equal(t, SeverityPositive, c.Severity)
			assert.Contains(t, c.Title, "Generic Single-Source")
			return
		}
	}
	t.Fatal("mony-y card not generated")
}

func TestUnfilteredExplorer(t *testing.T) {
	cards := Generate(explorerCtx(claims.DefaultFilters()), 0)

	require.Len(t, cards, 3)
	assert.Equal(t, []string{"exp-generic-mix", "exp-supply-cycles", "exp-top-drug-profile"}, cardIDs(cards))
}

func TestGenericMixPercentage(t *testing.T) {
	cards := Generate(explorerCtx(claims.DefaultFilters()), 0)

	gm := cards[0]
	assert.Equal(t, SeverityPositive, gm.Severity)
	// Y(42000) + O(750) over 50000 net.
	assert.Contains(t, gm.Body, "86%")
}

func TestSupplyCyclesPercentage(t *testing.T) {
	cards := Generate(explorerCtx(claims.DefaultFilters()), 0)

	// 7(7300) + 14(10400) over 24000 binned claims.
	assert.Contains(t, cards[1].Body, "74%")
}

func TestTopDrugProfile(t *testing.T) {
	cards := Generate(explorerCtx(claims.DefaultFilters()), 0)

	td := cards[2]
	assert.Contains(t, td.Body, "ATORVASTATIN")
	assert.Contains(t, td.Body, "10,000")
}

func TestDrugDetailSeverity(t *testing.T) {
	f := claims.DefaultFilters()
	f.Drug = "ATORVASTATIN"
	cards := Generate(explorerCtx(f), 0)

	require.NotEmpty(t, cards)
	dd := cards[0]
	require.Equal(t, "exp-drug-detail", dd.ID)
	assert.Equal(t, SeverityInfo, dd.Severity)
	assert.NotContains(t, dd.Body, "Elevated reversal rate")
}

func TestDrugDetailElevatedReversal(t *testing.T) {
	ctx := explorerCtx(claims.FilterParams{EntityID: 1, Drug: "HIGHRISK", Limit: 20})
	ctx.Explorer.Drugs = []claims.DrugRow{
		{DrugName: "HIGHRISK", LabelName: "HighRisk 50mg", NDC: "999", NetClaims: 5000, ReversalRate: 18.5, Formulary: "MANAGED", TopState: "PA"},
	}
	cards := Generate(ctx, 0)

	require.NotEmpty(t, cards)
	dd := cards[0]
	require.Equal(t, "exp-drug-detail", dd.ID)
	assert.Equal(t, SeverityWarning, dd.Severity)
	assert.Contains(t, dd.Body, "Elevated reversal rate")
}

func TestGroupDetailSeverity(t *testing.T) {
	f := claims.DefaultFilters()
	f.GroupID = "6P6002"
	cards := Generate(explorerCtx(f), 0)

	require.NotEmpty(t, cards)
	gd := cards[0]
	require.Equal(t, "exp-group-detail", gd.ID)
	assert.Equal(t, SeverityInfo, gd.Severity)
	assert.Contains(t, gd.Body, "Group 6P6002")
}

func TestGroupDetailElevatedReversal(t *testing.T) {
	ctx := explorerCtx(claims.FilterParams{EntityID: 1, GroupID: "400127", Limit: 20})
	ctx.Explorer.Kpis.ReversalRate = 17.3
	cards := Generate(ctx, 0)

	require.NotEmpty(t, cards)
	assert.Equal(t, SeverityWarning, cards[0].Severity)
}

func TestMaxCap(t *testing.T) {
	cards := Generate(overviewCtx(claims.DefaultFilters()), 1)
	require.Len(t, cards, 1)
	assert.Equal(t, "portfolio-summary", cards[0].ID)

	f := claims.DefaultFilters()
	f.State = "KS"
	cards = Generate(overviewCtx(f), 10)
	assert.Greater(t, len(cards), 3)
}

func TestPriorityOrdering(t *testing.T) {
	f := claims.DefaultFilters()
	f.State = "CA"
	f.DateStart = "2021-09-01"
	cards := Generate(overviewCtx(f), 10)

	ids := cardIDs(cards)
	sepIdx, rankIdx := -1, -1
	for i, id := range ids {
		switch id {
		case "month-sep":
			sepIdx = i
		case "state-rank":
			rankIdx = i
		}
	}
	require.NotEqual(t, -1, sepIdx)
	require.NotEqual(t, -1, rankIdx)
	assert.Less(t, sepIdx, rankIdx)
}

func TestViewIsolation(t *testing.T) {
	explorerIDs := cardIDs(Generate(explorerCtx(claims.DefaultFilters()), 10))
	assert.NotContains(t, explorerIDs, "portfolio-summary")
	assert.NotContains(t, explorerIDs, "distribution-channel")

	overviewIDs := cardIDs(Generate(overviewCtx(claims.DefaultFilters()), 10))
	assert.NotContains(t, overviewIDs, "exp-generic-mix")
	assert.NotContains(t, overviewIDs, "exp-supply-cycles")
}

func TestCardShape(t *testing.T) {
	cards := Generate(overviewCtx(claims.DefaultFilters()), 0)
	for _, c := range cards {
		assert.NotEmpty(t, c.ID)
		assert.NotEmpty(t, c.Title)
		assert.NotEmpty(t, c.Body)
		assert.Contains(t, []Severity{SeverityInfo, SeverityWarning, SeverityPositive}, c.Severity)
	}
}
