package claims

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "0", FormatNumber(0))
	assert.Equal(t, "999", FormatNumber(999))
	assert.Equal(t, "1,000", FormatNumber(1000))
	assert.Equal(t, "596,090", FormatNumber(596090))
	assert.Equal(t, "-12,345", FormatNumber(-12345))
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "10.8%", FormatPercent(10.81))
	assert.Equal(t, "0.0%", FormatPercent(0))
	assert.Equal(t, "30.0%", FormatPercent(30))
}

func TestAbbreviateNumber(t *testing.T) {
	assert.Equal(t, "532", AbbreviateNumber(532))
	assert.Equal(t, "7.3K", AbbreviateNumber(7300))
	assert.Equal(t, "50K", AbbreviateNumber(50000))
	assert.Equal(t, "1.2M", AbbreviateNumber(1200000))
}

func TestOrdinal(t *testing.T) {
	assert.Equal(t, "1st", Ordinal(1))
	assert.Equal(t, "2nd", Ordinal(2))
	assert.Equal(t, "3rd", Ordinal(3))
	assert.Equal(t, "4th", Ordinal(4))
	assert.Equal(t, "11th", Ordinal(11))
}

func TestReversalRate(t *testing.T) {
	assert.Equal(t, 0.0, ReversalRate(5, 0))
	assert.InDelta(t, 10.0, ReversalRate(10, 100), 0.001)
}

func TestFillAllMonths(t *testing.T) {
	sparse := []MonthlyPoint{
		{Month: "2021-03", Incurred: 100, Reversed: 10},
		{Month: "2021-09", Incurred: 400, Reversed: 2},
	}
	full := FillAllMonths(sparse)

	assert.Len(t, full, 12)
	assert.Equal(t, "2021-01", full[0].Month)
	assert.Equal(t, 0, full[0].Incurred)
	assert.Equal(t, 100, full[2].Incurred)
	assert.Equal(t, 400, full[8].Incurred)
	assert.Equal(t, "2021-12", full[11].Month)
}

func TestMonthLabel(t *testing.T) {
	assert.Equal(t, "May", MonthLabel("2021-05"))
	assert.Equal(t, "Dec", MonthLabel("2021-12"))
	assert.Equal(t, "garbage", MonthLabel("garbage"))
}

func TestLastDayOfMonth(t *testing.T) {
	assert.Equal(t, 28, LastDayOfMonth("2021-02"))
	assert.Equal(t, 29, LastDayOfMonth("2020-02"))
	assert.Equal(t, 30, LastDayOfMonth("2021-11"))
	assert.Equal(t, 31, LastDayOfMonth("2021-05"))
}
