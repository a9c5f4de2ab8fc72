package insight

import (
	"fmt"
	"math"

	"claimsight/domain/claims"
)

var explorerTemplates = []template{
	{
		id:       "exp-drug-detail",
		priority: 30,
		view:     ViewExplorer,
		match:    func(c Context) bool { return c.Filters.Drug != "" && len(c.Explorer.Drugs) > 0 },
		generate: func(c Context) Card {
			row := c.Explorer.Drugs[0]
			for _, d := range c.Explorer.Drugs {
				if d.DrugName == c.Filters.Drug {
					row = d
					break
				}
			}
			severity := SeverityInfo
			body := fmt.Sprintf("%s: %s net claims, %s reversal rate, %s formulary, strongest in %s.",
				row.DrugName, claims.FormatNumber(row.NetClaims), claims.FormatPercent(row.ReversalRate),
				row.Formulary, row.TopState)
			if row.ReversalRate > reversalWarnThreshold {
				severity = SeverityWarning
				body += fmt.Sprintf(" Elevated reversal rate — %s is well above the ~10.8%% portfolio norm.",
					claims.FormatPercent(row.ReversalRate))
			}
			return Card{
				ID:       "exp-drug-detail",
				Severity: severity,
				Title:    row.DrugName,
				Body:     body,
			}
		},
	},
	{
		id:       "exp-group-detail",
		priority: 31,
		view:     ViewExplorer,
		match:    func(c Context) bool { return c.Filters.GroupID != "" },
		generate: func(c Context) Card {
			k := c.Explorer.Kpis
			severity := SeverityInfo
			if k.ReversalRate > reversalWarnThreshold {
				severity = SeverityWarning
			}
			return Card{
				ID:       "exp-group-detail",
				Severity: severity,
				Title:    fmt.Sprintf("Group %s", c.Filters.GroupID),
				Body: fmt.Sprintf("Group %s: %s net claims at a %s reversal rate. All groups are "+
					"state-specific, so this group's volume sits entirely within one state.",
					c.Filters.GroupID, claims.FormatNumber(k.NetClaims), claims.FormatPercent(k.ReversalRate)),
			}
		},
	},
	{
		id:       "exp-generic-mix",
		priority: 35,
		view:     ViewExplorer,
		match:    unfilteredExplorer,
		generate: func(c Context) Card {
			generic := 0
			for _, m := range c.Explorer.Mony {
				if m.Type == "Y" || m.Type == "O" {
					generic += m.NetClaims
				}
			}
			pct := 0
			if c.Explorer.Kpis.NetClaims > 0 {
				pct = int(math.Round(float64(generic) / float64(c.Explorer.Kpis.NetClaims) * 100))
			}
			return Card{
				ID:       "exp-generic-mix",
				Severity: SeverityPositive,
				Title:    "Generic-Dominant Mix",
				Body: fmt.Sprintf("Generics (MONY Y + O) account for %d%% of net claims. A generic mix this "+
					"heavy reflects tight LTC formulary control and favorable drug-cost exposure.", pct),
			}
		},
	},
	{
		id:       "exp-supply-cycles",
		priority: 36,
		view:     ViewExplorer,
		match:    unfilteredExplorer,
		generate: func(c Context) Card {
			short, total := 0, 0
			for _, b := range c.Explorer.DaysSupply {
				total += b.Count
				if b.Bin == "7" || b.Bin == "14" {
					short += b.Count
				}
			}
			pct := 0
			if total > 0 {
				pct = int(math.Round(float64(short) / float64(total) * 100))
			}
			return Card{
				ID:       "exp-supply-cycles",
				Severity: SeverityInfo,
				Title:    "Short-Cycle Dispensing",
				Body: fmt.Sprintf("%d%% of claims are 7- or 14-day supplies — the short-cycle fills typical "+
					"of LTC facilities dispensing against monthly census changes.", pct),
			}
		},
	},
	{
		id:       "exp-top-drug-profile",
		priority: 37,
		view:     ViewExplorer,
		match: func(c Context) bool {
			return unfilteredExplorer(c) && len(c.Explorer.Drugs) > 0
		},
		generate: func(c Context) Card {
			top := c.Explorer.Drugs[0]
			return Card{
				ID:       "exp-top-drug-profile",
				Severity: SeverityInfo,
				Title:    fmt.Sprintf("Top Drug: %s", top.DrugName),
				Body: fmt.Sprintf("%s leads the portfolio with %s net claims (%s reversal rate), dispensed "+
					"most heavily in %s under the %s formulary.", top.DrugName, claims.FormatNumber(top.NetClaims),
					claims.FormatPercent(top.ReversalRate), top.TopState, top.Formulary),
			}
		},
	},
}

// The headline explorer trio describes the whole drill-down view; they step
// aside once a drug or group is singled out.
func unfilteredExplorer(c Context) bool {
	return c.Filters.Drug == "" && c.Filters.GroupID == ""
}
