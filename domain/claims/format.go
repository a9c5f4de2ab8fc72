package claims

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatNumber renders an integer with thousands separators: 596090 → "596,090".
func FormatNumber(n int) string {
	s := strconv.Itoa(n)
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

// FormatPercent renders a rate to one decimal place: 10.81 → "10.8%".
func FormatPercent(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

// AbbreviateNumber shortens large counts for chart labels: 596090 → "596.1K".
func AbbreviateNumber(n int) string {
	switch {
	case n >= 1_000_000:
		return trimTrailingZero(float64(n)/1_000_000) + "M"
	case n >= 1_000:
		return trimTrailingZero(float64(n)/1_000) + "K"
	default:
		return strconv.Itoa(n)
	}
}

func trimTrailingZero(v float64) string {
	s := fmt.Sprintf("%.1f", v)
	return strings.TrimSuffix(s, ".0")
}

// Ordinal appends the positional suffix: 1 → "1st", 2 → "2nd", 3 → "3rd",
// anything else → "Nth". The rank domain here never exceeds single digits.
func Ordinal(n int) string {
	switch n {
	case 1:
		return "1st"
	case 2:
		return "2nd"
	case 3:
		return "3rd"
	default:
		return fmt.Sprintf("%dth", n)
	}
}

// ReversalRate is reversed-over-total as a percentage, 0 when total is 0.
func ReversalRate(reversed, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(reversed) / float64(total) * 100
}
