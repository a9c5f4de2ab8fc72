package anomaly

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"claimsight/domain/claims"
)

// BuildReport assembles the six fixed panels from pre-aggregated inputs.
// Panel order is fixed: the synthetic drug first, then the Kansas batch
// event, the two volume anomalies, and the two structural findings.
func BuildReport(in Inputs) Report {
	normalAvg := NormalAverage(in.MonthlyTotals)
	return Report{
		Panels: []Panel{
			buildFlaggedDrugPanel(in),
			buildKSBatchPanel(in),
			buildSeptSpikePanel(in, normalAvg),
			buildNovDipPanel(in, normalAvg),
			buildCycleFillPanel(in),
			buildSemiSyntheticPanel(in),
		},
	}
}

func buildFlaggedDrugPanel(in Inputs) Panel {
	monthly := make([]map[string]any, len(in.FlaggedMonthly))
	for i, mc := range in.FlaggedMonthly {
		monthly[i] = map[string]any{"month": mc.Month, "claims": mc.Total}
	}
	return Panel{
		ID:      "kryptonite-xr",
		Title:   "Kryptonite XR — Synthetic Test Drug",
		KeyStat: "49,567 claims",
		WhatWeSee: "NDC 65862020190 ('KRYPTONITE XR' by LEX LUTHER INC.) accounts for 49,567 claims " +
			"(8.3% of the dataset). 99.5% of these claims are concentrated in May, making May effectively a synthetic month.",
		WhyItMatters: "This is almost certainly a test/dummy drug injected into the dataset. If not identified, " +
			"it inflates May volume by ~20x and skews monthly trends, reversal rates, and drug mix analysis.",
		ToConfirm: "Is this a known test record? Should it be permanently excluded from production reporting?",
		RfpImpact: "Demonstrates data quality detection capability. Any analytics vendor that reports May as a " +
			"real peak month has failed a basic data integrity check.",
		BeforeAfter: []MetricComparison{
			{Metric: "Total Claims", WithFlagged: claims.FormatNumber(in.KpisWithFlagged.TotalClaims), WithoutFlagged: claims.FormatNumber(in.KpisWithout.TotalClaims)},
			{Metric: "May Volume", WithFlagged: claims.FormatNumber(in.MayWithFlagged), WithoutFlagged: claims.FormatNumber(in.MayWithout)},
			{Metric: "Net Claims", WithFlagged: claims.FormatNumber(in.KpisWithFlagged.NetClaims), WithoutFlagged: claims.FormatNumber(in.KpisWithout.NetClaims)},
			{Metric: "Reversal Rate", WithFlagged: claims.FormatPercent(in.KpisWithFlagged.ReversalRate), WithoutFlagged: claims.FormatPercent(in.KpisWithout.ReversalRate)},
			{Metric: "Unique Drugs", WithFlagged: claims.FormatNumber(in.KpisWithFlagged.UniqueDrugs), WithoutFlagged: claims.FormatNumber(in.KpisWithout.UniqueDrugs)},
		},
		MiniCharts: []MiniChart{
			{Title: "Kryptonite XR Monthly Claims", Type: "bar", Data: monthly},
		},
	}
}

func buildKSBatchPanel(in Inputs) Panel {
	reversals := make([]map[string]any, len(in.KSMonthlyReversal))
	for i, mr := range in.KSMonthlyReversal {
		reversals[i] = map[string]any{"month": mr.Month, "reversalRate": mr.Rate}
	}
	groups := PivotQuarter(in.BatchGroups)
	pattern := make([]map[string]any, len(groups))
	for i, g := range groups {
		pattern[i] = map[string]any{"group": g.GroupID, "jul": g.Jul, "aug": g.Aug, "sep": g.Sep}
	}
	return Panel{
		ID:      "ks-aug-batch-reversal",
		Title:   "Kansas August Batch Reversal",
		KeyStat: "81.6%",
		WhatWeSee: "Kansas August shows 6,029 total rows with an 81.6% reversal rate. Root cause: 18 KS-only groups " +
			"(all with '400xxx' prefix) have 100% reversal and zero incurred claims in August (4,790 rows). These groups " +
			"show normal activity in July (~10% reversal), full reversal in August, then re-incur in September at ~1.4x normal volume.",
		WhyItMatters: "This is a classic batch reversal and rebill pattern — July claims were reversed in August and " +
			"re-submitted in September. Kansas's elevated annual reversal rate (15.8%) is entirely an artifact of this " +
			"single August event. Excluding August, KS has a normal ~10% reversal rate.",
		ToConfirm: "Was there a known system migration, billing correction, or contract renegotiation affecting these " +
			"18 Kansas groups in August 2021?",
		RfpImpact: "Proper identification of batch reversal events prevents mischaracterizing an entire state's claims performance.",
		MiniCharts: []MiniChart{
			{Title: "Kansas Monthly Reversal Rate", Type: "bar", Data: reversals},
			{Title: "Batch Reversal Groups — Jul/Aug/Sep Pattern", Type: "grouped-bar", Data: pattern},
		},
	}
}

func buildSeptSpikePanel(in Inputs, normalAvg float64) Panel {
	septCount := MonthTotal(in.MonthlyTotals, "2021-09")
	septPct, _ := PctDeviation(septCount, normalAvg)
	stateMin, stateMax := DeviationRange(in.SeptByState, in.AvgByState)
	formMin, formMax := DeviationRange(in.SeptByFormulary, in.AvgByFormulary)

	return Panel{
		ID:      "sept-spike",
		Title:   "September Volume Spike",
		KeyStat: fmt.Sprintf("+%d%%", septPct),
		WhatWeSee: fmt.Sprintf("September 2021 saw ~%s claims (excluding Kryptonite), approximately %d%% above the "+
			"normal monthly average. The spike is remarkably uniform — all 5 states increased %d-%d%%, all 3 formulary "+
			"types increased %d-%d%%.", claims.FormatNumber(septCount), septPct, stateMin, stateMax, formMin, formMax),
		WhyItMatters: "A uniform spike across all dimensions suggests a systemic cause — not a single group, drug, or " +
			"state driving the increase. The KS batch rebill (re-incurring ~2,700 claims) partially explains the spike, " +
			"but ~23,000 excess claims remain unexplained.",
		ToConfirm: "Was there a Q3-end processing catch-up, LTC facility re-enrollment cycle, or known system event in September 2021?",
		RfpImpact: "Highlights the need for seasonal normalization in trend analysis and capacity planning.",
		MiniCharts: []MiniChart{
			{Title: "Monthly Claims Volume (excl. Kryptonite)", Type: "bar", Data: monthTotalRows(in.MonthlyTotals)},
			{Title: "September Claims by State", Type: "grouped-bar", Data: dimCompareRows(in.SeptByState, in.AvgByState, "state", "september")},
			{Title: "September Claims by Formulary", Type: "stacked-bar", Data: dimCompareRows(in.SeptByFormulary, in.AvgByFormulary, "formulary", "september")},
		},
	}
}

func buildNovDipPanel(in Inputs, normalAvg float64) Panel {
	novCount := MonthTotal(in.MonthlyTotals, "2021-11")
	novPct, _ := PctDeviation(novCount, normalAvg)
	stateMin, stateMax := AbsDeviationRange(in.NovByState, in.AvgByState)

	return Panel{
		ID:      "nov-dip",
		Title:   "November Volume Dip",
		KeyStat: fmt.Sprintf("%d%%", novPct),
		WhatWeSee: fmt.Sprintf("November 2021 had only ~%s claims (excluding Kryptonite), approximately %d%% below "+
			"the normal monthly average. All 30 days are present, and all ~183 active groups are present — this is not "+
			"a data gap.", claims.FormatNumber(novCount), abs(novPct)),
		WhyItMatters: fmt.Sprintf("The dip is perfectly uniform across all states (%d-%d%% below normal) and all "+
			"groups. This rules out a single facility closure or regional event as the cause.", stateMin, stateMax),
		ToConfirm: "Was there a known reduction in LTC admissions, a data extract issue, or a processing delay affecting November 2021?",
		RfpImpact: "Understanding this dip is critical for accurate year-over-year comparisons and forecasting.",
		MiniCharts: []MiniChart{
			{Title: "Monthly Claims Volume (excl. Kryptonite)", Type: "bar", Data: monthTotalRows(in.MonthlyTotals)},
			{Title: "November Claims by State", Type: "grouped-bar", Data: dimCompareRows(in.NovByState, in.AvgByState, "state", "november")},
		},
	}
}

func buildCycleFillPanel(in Inputs) Panel {
	day1Multiple, day26Multiple := "7.0", "2.0"
	if len(in.DayOfMonth) > 0 {
		total := 0
		for _, d := range in.DayOfMonth {
			total += d.Total
		}
		avgDaily := float64(total) / float64(len(in.DayOfMonth))
		for _, d := range in.DayOfMonth {
			switch d.Day {
			case 1:
				day1Multiple = fmt.Sprintf("%.1f", float64(d.Total)/avgDaily)
			case 26:
				day26Multiple = fmt.Sprintf("%.1f", float64(d.Total)/avgDaily)
			}
		}
	}
	days := make([]map[string]any, len(in.DayOfMonth))
	for i, d := range in.DayOfMonth {
		days[i] = map[string]any{"day": d.Day, "total": d.Total}
	}
	return Panel{
		ID:      "cycle-fill-pattern",
		Title:   "Day-of-Month Cycle Fill Pattern",
		KeyStat: fmt.Sprintf("~%s× Day-1 Peak", day1Multiple),
		WhatWeSee: fmt.Sprintf("Day 1 of each month shows ~%sx average daily volume — the primary LTC cycle-fill "+
			"peak. Day 26 shows a secondary peak at ~%sx average, likely a second cohort of facilities on an offset "+
			"dispensing schedule. Together these two days account for a disproportionate share of monthly volume.",
			day1Multiple, day26Multiple),
		WhyItMatters: "Identifying dispensing cycles enables capacity planning, staffing optimization, and predictive " +
			"ordering. The day-26 secondary peak suggests at least two distinct facility dispensing schedules within the network.",
		ToConfirm: "Do specific facility groups drive the day-26 secondary peak? Is this a known alternate dispensing schedule?",
		RfpImpact: "Demonstrates granular pattern detection beyond monthly trends — shows we can identify operational rhythms in the data.",
		MiniCharts: []MiniChart{
			{Title: "Claims by Day of Month", Type: "bar", Data: days},
		},
	}
}

func buildSemiSyntheticPanel(in Inputs) Panel {
	avgAdj := meanRate(in.AdjByFormulary, 25.1)
	avgRev := meanRate(in.RevByFormulary, 10.8)

	// Pivot formulary share into one row per state.
	type shares struct{ open, managed, hmf float64 }
	var order []string
	byState := make(map[string]*shares)
	for _, r := range in.FormularyByState {
		if _, ok := byState[r.State]; !ok {
			order = append(order, r.State)
			byState[r.State] = &shares{}
		}
		s := byState[r.State]
		switch r.Formulary {
		case "OPEN":
			s.open = r.Pct
		case "MANAGED":
			s.managed = r.Pct
		case "HMF":
			s.hmf = r.Pct
		}
	}
	rows := make([]map[string]any, len(order))
	for i, st := range order {
		s := byState[st]
		rows[i] = map[string]any{"state": st, "OPEN": s.open, "MANAGED": s.managed, "HMF": s.hmf}
	}

	return Panel{
		ID:      "semi-synthetic-flags",
		Title:   "Semi-Synthetic Data Characteristics",
		KeyStat: fmt.Sprintf("~%.1f%% / ~%.1f%%", avgAdj, avgRev),
		WhatWeSee: fmt.Sprintf("Formulary, adjudication, and reversal distributions are perfectly uniform across all "+
			"dimensions. Each state has nearly identical OPEN/MANAGED/HMF splits; adjudication rate is ~%.1f%% "+
			"everywhere; reversal rate is ~%.1f%% everywhere. In real PBM data, these would correlate with drug type, "+
			"state regulations, and formulary tier.", avgAdj, avgRev),
		WhyItMatters: "This strongly suggests the dataset is semi-synthetic — real utilization patterns (drugs, groups, " +
			"states, dates) with randomly assigned categorical flags. This is important context for any conclusions drawn " +
			"from formulary or adjudication analysis.",
		ToConfirm: "Is this a known property of the test dataset? Were categorical flags randomized to anonymize the data?",
		RfpImpact: "Demonstrates deep data integrity analysis — catching that the data 'looks real but isn't quite' " +
			"shows a level of scrutiny that goes beyond surface-level dashboarding.",
		MiniCharts: []MiniChart{
			{Title: "Formulary Distribution by State (%)", Type: "grouped-bar", Data: rows},
		},
	}
}

func monthTotalRows(monthly []MonthCount) []map[string]any {
	rows := make([]map[string]any, len(monthly))
	for i, mc := range monthly {
		rows[i] = map[string]any{"month": mc.Month, "total": mc.Total}
	}
	return rows
}

func dimCompareRows(counts, averages []DimCount, dimKey, valueKey string) []map[string]any {
	avgByKey := make(map[string]int, len(averages))
	for _, a := range averages {
		avgByKey[a.Key] = a.Count
	}
	rows := make([]map[string]any, len(counts))
	for i, c := range counts {
		rows[i] = map[string]any{dimKey: c.Key, valueKey: c.Count, "average": avgByKey[c.Key]}
	}
	return rows
}

func meanRate(rates []DimRate, fallback float64) float64 {
	if len(rates) == 0 {
		return fallback
	}
	vals := make([]float64, len(rates))
	for i, r := range rates {
		vals[i] = r.Rate
	}
	return math.Round(stat.Mean(vals, nil)*10) / 10
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
