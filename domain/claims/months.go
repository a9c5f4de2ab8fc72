package claims

import "fmt"

// DatasetYear is the single calendar year the claims dataset covers.
const DatasetYear = 2021

// BaselineExcludedMonths are the known-anomalous months left out when
// computing a normal-month baseline: the synthetic-drug month, the
// September spike, and the November dip.
var BaselineExcludedMonths = []string{"2021-05", "2021-09", "2021-11"}

var monthLabels = []string{
	"Jan", "Feb", "Mar", "Apr", "May", "Jun",
	"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
}

// AllMonths returns the twelve YYYY-MM keys of the dataset year in order.
func AllMonths() []string {
	out := make([]string, 12)
	for i := range out {
		out[i] = fmt.Sprintf("%d-%02d", DatasetYear, i+1)
	}
	return out
}

// MonthLabel maps "2021-05" to "May". Unparseable keys pass through.
func MonthLabel(month string) string {
	if len(month) != 7 {
		return month
	}
	var y, m int
	if _, err := fmt.Sscanf(month, "%d-%d", &y, &m); err != nil || m < 1 || m > 12 {
		return month
	}
	return monthLabels[m-1]
}

// FillAllMonths densifies a sparse monthly series: every month of the
// dataset year appears exactly once, zero-filled where the source had no
// row, in calendar order.
func FillAllMonths(sparse []MonthlyPoint) []MonthlyPoint {
	byMonth := make(map[string]MonthlyPoint, len(sparse))
	for _, p := range sparse {
		byMonth[p.Month] = p
	}
	out := make([]MonthlyPoint, 0, 12)
	for _, m := range AllMonths() {
		if p, ok := byMonth[m]; ok {
			out = append(out, p)
		} else {
			out = append(out, MonthlyPoint{Month: m})
		}
	}
	return out
}

// LastDayOfMonth returns the final calendar day for a "YYYY-MM" key,
// honoring leap years.
func LastDayOfMonth(month string) int {
	var y, m int
	if _, err := fmt.Sscanf(month, "%d-%d", &y, &m); err != nil || m < 1 || m > 12 {
		return 31
	}
	days := []int{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}
	if m == 2 && (y%4 == 0 && (y%100 != 0 || y%400 == 0)) {
		return 29
	}
	return days[m-1]
}
