package anomaly

import (
	"math"

	"github.com/montanaflynn/stats"

	"claimsight/domain/claims"
)

// NormalAverage is the mean monthly volume over the months not known to be
// anomalous. Months in claims.BaselineExcludedMonths are dropped before
// averaging; an empty remainder yields 0.
func NormalAverage(monthly []MonthCount) float64 {
	excluded := make(map[string]bool, len(claims.BaselineExcludedMonths))
	for _, m := range claims.BaselineExcludedMonths {
		excluded[m] = true
	}
	var vals []float64
	for _, mc := range monthly {
		if !excluded[mc.Month] {
			vals = append(vals, float64(mc.Total))
		}
	}
	if len(vals) == 0 {
		return 0
	}
	mean, err := stats.Mean(vals)
	if err != nil {
		return 0
	}
	return mean
}

// PctDeviation is the rounded percent deviation of total from avg.
// ok is false when avg is 0 — the deviation is then not computable and the
// caller must not render a number for it.
func PctDeviation(total int, avg float64) (pct int, ok bool) {
	if avg == 0 {
		return 0, false
	}
	return int(math.Round((float64(total) - avg) / avg * 100)), true
}

// MonthTotal finds the count for one YYYY-MM key, 0 when absent.
func MonthTotal(monthly []MonthCount, month string) int {
	for _, mc := range monthly {
		if mc.Month == month {
			return mc.Total
		}
	}
	return 0
}

// DeviationRange computes each dimension value's percent deviation from its
// own yearly average and returns the min and max across the dimension.
// Dimension values with no recorded average fall back to an average of 1 so
// the division stays defined.
func DeviationRange(counts []DimCount, averages []DimCount) (min, max int) {
	avgByKey := make(map[string]int, len(averages))
	for _, a := range averages {
		avgByKey[a.Key] = a.Count
	}
	var devs []float64
	for _, c := range counts {
		avg := avgByKey[c.Key]
		if avg == 0 {
			avg = 1
		}
		devs = append(devs, math.Round(float64(c.Count-avg)/float64(avg)*100))
	}
	if len(devs) == 0 {
		return 0, 0
	}
	lo, _ := stats.Min(devs)
	hi, _ := stats.Max(devs)
	return int(lo), int(hi)
}

// AbsDeviationRange is DeviationRange over absolute deviations, for dips.
func AbsDeviationRange(counts []DimCount, averages []DimCount) (min, max int) {
	avgByKey := make(map[string]int, len(averages))
	for _, a := range averages {
		avgByKey[a.Key] = a.Count
	}
	var devs []float64
	for _, c := range counts {
		avg := avgByKey[c.Key]
		if avg == 0 {
			avg = 1
		}
		devs = append(devs, math.Abs(math.Round(float64(c.Count-avg)/float64(avg)*100)))
	}
	if len(devs) == 0 {
		return 0, 0
	}
	lo, _ := stats.Min(devs)
	hi, _ := stats.Max(devs)
	return int(lo), int(hi)
}

// JulAugSep is one batch-reversal group's quarter pattern.
type JulAugSep struct {
	GroupID string
	Jul     int
	Aug     int
	Sep     int
}

// PivotQuarter folds group×month rows into per-group Jul/Aug/Sep columns,
// defaulting absent months to 0. Group order follows first appearance.
func PivotQuarter(rows []GroupMonthCount) []JulAugSep {
	idx := make(map[string]int)
	var out []JulAugSep
	for _, r := range rows {
		i, ok := idx[r.GroupID]
		if !ok {
			i = len(out)
			idx[r.GroupID] = i
			out = append(out, JulAugSep{GroupID: r.GroupID})
		}
		switch r.Month {
		case "2021-07":
			out[i].Jul = r.Total
		case "2021-08":
			out[i].Aug = r.Total
		case "2021-09":
			out[i].Sep = r.Total
		}
	}
	return out
}
