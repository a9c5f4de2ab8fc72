package insight

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"claimsight/domain/claims"
)

var overviewTemplates = []template{
	{
		id:       "portfolio-summary",
		priority: 10,
		view:     ViewOverview,
		match: func(c Context) bool {
			f := c.Filters
			return f.State == "" && f.Formulary == "" && f.Mony == "" && f.DateStart == "" && f.GroupID == ""
		},
		generate: func(c Context) Card {
			d := c.Overview
			return Card{
				ID:       "portfolio-summary",
				Severity: SeverityInfo,
				Title:    "Portfolio Summary",
				Body: fmt.Sprintf("%s net claims across %d states and %d formulary types. Overall reversal rate: %s.",
					claims.AbbreviateNumber(d.Kpis.NetClaims), len(d.AllStates), len(d.Formulary),
					claims.FormatPercent(d.Kpis.ReversalRate)),
			}
		},
	},
	{
		id:       "distribution-channel",
		priority: 11,
		view:     ViewOverview,
		match:    func(c Context) bool { return c.Filters.State == "" && c.Filters.Formulary == "" },
		generate: func(Context) Card {
			return Card{
				ID:       "distribution-channel",
				Severity: SeverityInfo,
				Title:    "100% Retail Distribution",
				Body: "All claims are retail (no mail-order), consistent with long-term care pharmacy dispensing " +
					"patterns where facilities receive frequent, short-cycle fills.",
			}
		},
	},
	{
		id:       "ltc-pattern",
		priority: 12,
		view:     ViewOverview,
		match:    func(c Context) bool { return c.Filters.DateStart == "" },
		generate: func(Context) Card {
			return Card{
				ID:       "ltc-pattern",
				Severity: SeverityInfo,
				Title:    "LTC Cycle-Fill Pattern",
				Body: "Day-1-of-month volume is 7–8× the daily average — a strong indicator of long-term care " +
					"batch dispensing. Days supply clusters at 7 and 14 days.",
			}
		},
	},
	{
		id:       "month-may",
		priority: 14,
		view:     ViewOverview,
		match:    monthMatch("2021-05"),
		generate: func(Context) Card {
			return Card{
				ID:       "month-may",
				Severity: SeverityWarning,
				Title:    "May — Synthetic Data Alert",
				Body: "May is 99.99% \"Kryptonite XR\" test drug claims. With flagged NDCs excluded, May has " +
					"only 5 real claims. This month should be treated as synthetic.",
			}
		},
	},
	{
		id:       "month-sep",
		priority: 15,
		view:     ViewOverview,
		match:    monthMatch("2021-09"),
		generate: func(c Context) Card {
			net := netForMonth(c.Overview.Monthly, "2021-09")
			return Card{
				ID:       "month-sep",
				Severity: SeverityWarning,
				Title:    "September Surge (+41%)",
				Body: fmt.Sprintf("September shows %s net claims — 41%% above the normal monthly average. "+
					"Partially explained by Kansas rebill groups re-incurring, but the spike is uniform across "+
					"all states and formularies.", claims.FormatNumber(net)),
			}
		},
	},
	{
		id:       "month-nov",
		priority: 16,
		view:     ViewOverview,
		match:    monthMatch("2021-11"),
		generate: func(c Context) Card {
			net := netForMonth(c.Overview.Monthly, "2021-11")
			return Card{
				ID:       "month-nov",
				Severity: SeverityWarning,
				Title:    "November Dip (−54%)",
				Body: fmt.Sprintf("November has only %s net claims — 54%% below the normal monthly average. "+
					"The drop is uniform across all states and groups; no missing days or groups explain it.",
					claims.FormatNumber(net)),
			}
		},
	},
	{
		id:       "state-ks-warning",
		priority: 19,
		view:     ViewOverview,
		match:    func(c Context) bool { return c.Filters.State == "KS" },
		generate: func(Context) Card {
			return Card{
				ID:       "state-ks-warning",
				Severity: SeverityWarning,
				Title:    "August Batch Reversal",
				Body: "18 Kansas groups (400xxx prefix) had 100% reversal in August — a batch reversal event. " +
					"Claims were re-submitted in September at ~1.4× normal volume. Excluding August, KS reversal " +
					"rate is ~10%, matching other states.",
			}
		},
	},
	{
		id:       "state-rank",
		priority: 20,
		view:     ViewOverview,
		match:    func(c Context) bool { return c.Filters.State != "" },
		generate: func(c Context) Card {
			d := c.Overview
			sorted := make([]claims.StateBreakdown, len(d.AllStates))
			copy(sorted, d.AllStates)
			sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].NetClaims > sorted[j].NetClaims })

			rank, total := 0, 0
			var selected *claims.StateBreakdown
			for i := range sorted {
				total += sorted[i].NetClaims
				if sorted[i].State == c.Filters.State {
					rank = i + 1
					selected = &sorted[i]
				}
			}
			share := 0.0
			if total > 0 && selected != nil {
				share = float64(selected.NetClaims) / float64(total) * 100
			}
			name, ok := stateNames[c.Filters.State]
			if !ok {
				name = c.Filters.State
			}
			return Card{
				ID:       "state-rank",
				Severity: SeverityInfo,
				Title:    fmt.Sprintf("%s — %s of %d", name, claims.Ordinal(rank), len(sorted)),
				Body: fmt.Sprintf("%s accounts for %.1f%% of total claims volume across all states.",
					c.Filters.State, share),
			}
		},
	},
	{
		id:       "state-groups",
		priority: 21,
		view:     ViewOverview,
		match: func(c Context) bool {
			if c.Filters.State == "" {
				return false
			}
			for _, s := range c.Overview.AllStates {
				if s.State == c.Filters.State && s.GroupCount > 0 {
					return true
				}
			}
			return false
		},
		generate: func(c Context) Card {
			d := c.Overview
			groups, net, totalGroups := 0, 0, 0
			for _, s := range d.AllStates {
				totalGroups += s.GroupCount
				if s.State == c.Filters.State {
					groups = s.GroupCount
					net = s.NetClaims
				}
			}
			avg := 0
			if groups > 0 {
				avg = int(math.Round(float64(net) / float64(groups)))
			}
			return Card{
				ID:       "state-groups",
				Severity: SeverityInfo,
				Title:    fmt.Sprintf("%d Groups", groups),
				Body: fmt.Sprintf("%s has %d of %d total groups, averaging %s claims per group. All groups "+
					"are state-specific — no group spans multiple states.",
					c.Filters.State, groups, totalGroups, claims.FormatNumber(avg)),
			}
		},
	},
	{
		id:       "mony-y",
		priority: 24,
		view:     ViewOverview,
		match:    func(c Context) bool { return c.Filters.Mony == "Y" },
		generate: func(c Context) Card {
			return Card{
				ID:       "mony-y",
				Severity: SeverityPositive,
				Title:    "Generic Single-Source (Y)",
				Body: fmt.Sprintf("Single-source generics represent the bulk of this portfolio at %s net claims "+
					"in this view. This heavy generic mix indicates effective cost management typical of LTC "+
					"formulary control.", claims.FormatNumber(c.Overview.Kpis.NetClaims)),
			}
		},
	},
	{
		id:       "mony-n",
		priority: 24,
		view:     ViewOverview,
		match:    func(c Context) bool { return c.Filters.Mony == "N" },
		generate: func(c Context) Card {
			return Card{
				ID:       "mony-n",
				Severity: SeverityInfo,
				Title:    "Brand Single-Source (N)",
				Body: fmt.Sprintf("Single-source brands account for %s net claims in this view. These are "+
					"typically specialty or patented drugs without generic alternatives — important for cost "+
					"containment strategy.", claims.FormatNumber(c.Overview.Kpis.NetClaims)),
			}
		},
	},
	{
		id:       "formulary-active",
		priority: 25,
		view:     ViewOverview,
		match:    func(c Context) bool { return c.Filters.Formulary != "" },
		generate: func(c Context) Card {
			body := fmt.Sprintf("Viewing %s formulary claims.", c.Filters.Formulary)
			for _, fb := range c.Overview.Formulary {
				if fb.Type == c.Filters.Formulary {
					body = fmt.Sprintf("%s formulary: %s net claims, %s reversal rate. Formulary-level "+
						"reversal rates are remarkably uniform (~10.7–10.8%%).",
						c.Filters.Formulary, claims.FormatNumber(fb.NetClaims), claims.FormatPercent(fb.ReversalRate))
					break
				}
			}
			return Card{
				ID:       "formulary-active",
				Severity: SeverityInfo,
				Title:    fmt.Sprintf("%s Formulary", c.Filters.Formulary),
				Body:     body,
			}
		},
	},
	{
		id:       "group-filter",
		priority: 28,
		view:     ViewOverview,
		match:    func(c Context) bool { return c.Filters.GroupID != "" },
		generate: func(c Context) Card {
			return Card{
				ID:       "group-filter",
				Severity: SeverityInfo,
				Title:    fmt.Sprintf("Group %s", c.Filters.GroupID),
				Body: fmt.Sprintf("Group %s: %s net claims, %s reversal rate. All groups are state-specific — "+
					"no group spans multiple states.", c.Filters.GroupID,
					claims.FormatNumber(c.Overview.Kpis.NetClaims), claims.FormatPercent(c.Overview.Kpis.ReversalRate)),
			}
		},
	},
}

func monthMatch(month string) func(Context) bool {
	return func(c Context) bool {
		return strings.HasPrefix(c.Filters.DateStart, month)
	}
}

func netForMonth(monthly []claims.MonthlyPoint, month string) int {
	for _, m := range monthly {
		if m.Month == month {
			return m.Incurred - m.Reversed
		}
	}
	return 0
}
