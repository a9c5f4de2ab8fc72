package anomaly

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"claimsight/domain/claims"
)

func sampleInputs() Inputs {
	return Inputs{
		FlaggedMonthly: []MonthCount{
			{Month: "2021-04", Total: 120},
			{Month: "2021-05", Total: 49300},
		},
		KpisWithFlagged: claims.KpiSummary{TotalClaims: 596090, NetClaims: 531988, ReversalRate: 10.81, UniqueDrugs: 1343},
		KpisWithout:     claims.KpiSummary{TotalClaims: 546523, NetClaims: 482421, ReversalRate: 10.79, UniqueDrugs: 1342},
		MayWithFlagged:  92000,
		MayWithout:      42400,
		MonthlyTotals:   yearOfMonths(40000, 42400, 56400, 18400),
		SeptByState: []DimCount{
			{Key: "CA", Count: 14000}, {Key: "IN", Count: 11200},
			{Key: "KS", Count: 8500}, {Key: "MN", Count: 9800}, {Key: "PA", Count: 12900},
		},
		SeptByFormulary: []DimCount{
			{Key: "HMF", Count: 18500}, {Key: "MANAGED", Count: 18700}, {Key: "OPEN", Count: 19200},
		},
		NovByState: []DimCount{
			{Key: "CA", Count: 4600}, {Key: "IN", Count: 3700},
			{Key: "KS", Count: 2800}, {Key: "MN", Count: 3200}, {Key: "PA", Count: 4100},
		},
		AvgByState: []DimCount{
			{Key: "CA", Count: 10000}, {Key: "IN", Count: 8000},
			{Key: "KS", Count: 6000}, {Key: "MN", Count: 7000}, {Key: "PA", Count: 9200},
		},
		AvgByFormulary: []DimCount{
			{Key: "HMF", Count: 13200}, {Key: "MANAGED", Count: 13300}, {Key: "OPEN", Count: 13700},
		},
		KSMonthlyReversal: []MonthRate{
			{Month: "2021-07", Rate: 10.2},
			{Month: "2021-08", Rate: 81.6},
			{Month: "2021-09", Rate: 9.8},
		},
		BatchGroups: []GroupMonthCount{
			{GroupID: "400111", Month: "2021-07", Total: 300},
			{GroupID: "400111", Month: "2021-08", Total: 310},
			{GroupID: "400111", Month: "2021-09", Total: 720},
		},
		DayOfMonth: []DayCount{
			{Day: 1, Total: 7000}, {Day: 2, Total: 800}, {Day: 26, Total: 2100}, {Day: 27, Total: 900},
		},
		FormularyByState: []StateFormularyPct{
			{State: "CA", Formulary: "OPEN", Pct: 37.4},
			{State: "CA", Formulary: "MANAGED", Pct: 33.2},
			{State: "CA", Formulary: "HMF", Pct: 29.4},
			{State: "KS", Formulary: "OPEN", Pct: 37.1},
		},
		AdjByFormulary: []DimRate{{Key: "OPEN", Rate: 25.0}, {Key: "MANAGED", Rate: 25.2}, {Key: "HMF", Rate: 25.1}},
		RevByFormulary: []DimRate{{Key: "OPEN", Rate: 10.8}, {Key: "MANAGED", Rate: 10.7}, {Key: "HMF", Rate: 10.9}},
	}
}

func TestBuildReportPanelOrder(t *testing.T) {
	rep := BuildReport(sampleInputs())

	require.Len(t, rep.Panels, 6)
	ids := make([]string, len(rep.Panels))
	for i, p := range rep.Panels {
		ids[i] = p.ID
	}
	assert.Equal(t, []string{
		"kryptonite-xr",
		"ks-aug-batch-reversal",
		"sept-spike",
		"nov-dip",
		"cycle-fill-pattern",
		"semi-synthetic-flags",
	}, ids)
}

func TestFlaggedDrugPanelBeforeAfter(t *testing.T) {
	rep := BuildReport(sampleInputs())
	p := rep.Panels[0]

	require.Len(t, p.BeforeAfter, 5)
	assert.Equal(t, "Total Claims", p.BeforeAfter[0].Metric)
	assert.Equal(t, "596,090", p.BeforeAfter[0].WithFlagged)
	assert.Equal(t, "546,523", p.BeforeAfter[0].WithoutFlagged)
	assert.Equal(t, "May Volume", p.BeforeAfter[1].Metric)
	assert.Equal(t, "92,000", p.BeforeAfter[1].WithFlagged)
	assert.Equal(t, "42,400", p.BeforeAfter[1].WithoutFlagged)
	assert.Equal(t, "10.8%", p.BeforeAfter[3].WithFlagged)

	require.Len(t, p.MiniCharts, 1)
	assert.Equal(t, "bar", p.MiniCharts[0].Type)
	assert.Len(t, p.MiniCharts[0].Data, 2)
}

func TestSeptSpikePanelDeviation(t *testing.T) {
	rep := BuildReport(sampleInputs())
	p := rep.Panels[2]

	// 56400 vs 40000 normal average.
	assert.Equal(t, "+41%", p.KeyStat)
	assert.Contains(t, p.WhatWeSee, "~56,400 claims")
	assert.Contains(t, p.WhatWeSee, "41% above")
	require.Len(t, p.MiniCharts, 3)
	assert.Equal(t, "September Claims by State", p.MiniCharts[1].Title)
	assert.Equal(t, 10000, p.MiniCharts[1].Data[0]["average"])
}

func TestNovDipPanelDeviation(t *testing.T) {
	rep := BuildReport(sampleInputs())
	p := rep.Panels[3]

	// 18400 vs 40000 normal average.
	assert.Equal(t, "-54%", p.KeyStat)
	assert.Contains(t, p.WhatWeSee, "54% below")
	assert.Contains(t, p.WhatWeSee, "~18,400 claims")
}

func TestCycleFillPanelMultiples(t *testing.T) {
	rep := BuildReport(sampleInputs())
	p := rep.Panels[4]

	// Average daily volume is (7000+800+2100+900)/4 = 2700.
	assert.Equal(t, "~2.6× Day-1 Peak", p.KeyStat)
	assert.Contains(t, p.WhatWeSee, "~0.8x average")
}

func TestCycleFillPanelDefaultsWhenEmpty(t *testing.T) {
	in := sampleInputs()
	in.DayOfMonth = nil
	rep := BuildReport(in)

	assert.Equal(t, "~7.0× Day-1 Peak", rep.Panels[4].KeyStat)
}

func TestSemiSyntheticPanelAverages(t *testing.T) {
	rep := BuildReport(sampleInputs())
	p := rep.Panels[5]

	assert.Equal(t, "~25.1% / ~10.8%", p.KeyStat)
	require.Len(t, p.MiniCharts, 1)
	// CA row carries all three formulary shares; KS row zero-fills the absent ones.
	assert.Equal(t, 37.4, p.MiniCharts[0].Data[0]["OPEN"])
	assert.Equal(t, 29.4, p.MiniCharts[0].Data[0]["HMF"])
	assert.Equal(t, 0.0, p.MiniCharts[0].Data[1]["MANAGED"])
}

func TestKSBatchPanelPattern(t *testing.T) {
	rep := BuildReport(sampleInputs())
	p := rep.Panels[1]

	assert.Equal(t, "81.6%", p.KeyStat)
	require.Len(t, p.MiniCharts, 2)
	assert.Equal(t, "400111", p.MiniCharts[1].Data[0]["group"])
	assert.Equal(t, 720, p.MiniCharts[1].Data[0]["sep"])
}
