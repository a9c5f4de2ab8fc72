// Package anomaly derives the known-anomaly panels for the 2021 claims
// dataset from pre-aggregated query results. Everything here is pure
// computation; the app layer owns the queries.
package anomaly

import "claimsight/domain/claims"

// Panel is one investigator-facing anomaly writeup.
type Panel struct {
	ID           string             `json:"id"`
	Title        string             `json:"title"`
	KeyStat      string             `json:"keyStat"`
	WhatWeSee    string             `json:"whatWeSee"`
	WhyItMatters string             `json:"whyItMatters"`
	ToConfirm    string             `json:"toConfirm"`
	RfpImpact    string             `json:"rfpImpact"`
	MiniCharts   []MiniChart        `json:"miniCharts"`
	BeforeAfter  []MetricComparison `json:"beforeAfter,omitempty"`
}

// MiniChart is a small embedded chart series. Data rows are heterogeneous
// across chart kinds, so they stay as ordered key/value maps.
type MiniChart struct {
	Title string           `json:"title"`
	Type  string           `json:"type"`
	Data  []map[string]any `json:"data"`
}

// MetricComparison is one row of a with/without-flagged metric table.
type MetricComparison struct {
	Metric         string `json:"metric"`
	WithFlagged    string `json:"withFlagged"`
	WithoutFlagged string `json:"withoutFlagged"`
}

// Report is the full anomaly payload, panels in fixed presentation order.
type Report struct {
	Panels []Panel `json:"panels"`
}

// MonthCount is a claim count for one YYYY-MM key.
type MonthCount struct {
	Month string `json:"month" db:"month"`
	Total int    `json:"total" db:"total"`
}

// MonthRate is a reversal rate for one YYYY-MM key.
type MonthRate struct {
	Month string  `json:"month" db:"month"`
	Rate  float64 `json:"rate" db:"rate"`
}

// DimCount is a claim count for one dimension value (state, formulary).
type DimCount struct {
	Key   string `json:"key" db:"key"`
	Count int    `json:"count" db:"count"`
}

// DimRate is a percentage rate for one dimension value.
type DimRate struct {
	Key  string  `json:"key" db:"key"`
	Rate float64 `json:"rate" db:"rate"`
}

// GroupMonthCount is a group's claim count in one month.
type GroupMonthCount struct {
	GroupID string `json:"groupId" db:"group_id"`
	Month   string `json:"month" db:"month"`
	Total   int    `json:"total" db:"total"`
}

// DayCount is a claim count for one day-of-month (1..31).
type DayCount struct {
	Day   int `json:"day" db:"day_of_month"`
	Total int `json:"total" db:"total"`
}

// StateFormularyPct is one cell of the formulary-share-by-state matrix.
type StateFormularyPct struct {
	State     string  `json:"state" db:"state"`
	Formulary string  `json:"formulary" db:"formulary"`
	Pct       float64 `json:"pct" db:"pct"`
}

// Inputs bundles every pre-aggregated series the panel builders need.
// The app layer fills it with one fan-out of store queries.
type Inputs struct {
	FlaggedMonthly    []MonthCount
	KpisWithFlagged   claims.KpiSummary
	KpisWithout       claims.KpiSummary
	MayWithFlagged    int
	MayWithout        int
	MonthlyTotals     []MonthCount
	SeptByState       []DimCount
	SeptByFormulary   []DimCount
	NovByState        []DimCount
	AvgByState        []DimCount
	AvgByFormulary    []DimCount
	KSMonthlyReversal []MonthRate
	BatchGroups       []GroupMonthCount
	DayOfMonth        []DayCount
	FormularyByState  []StateFormularyPct
	AdjByFormulary    []DimRate
	RevByFormulary    []DimRate
}
