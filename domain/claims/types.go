package claims

// FilterParams is the normalized, fully-defaulted filter set for one request.
// Absent dimension fields are empty strings and mean "no constraint on that
// dimension" — never "constrain to empty". The struct is built once by
// Normalize and threaded read-only through every downstream component.
type FilterParams struct {
	EntityID       int    `json:"entityId"`
	Formulary      string `json:"formulary,omitempty"`
	State          string `json:"state,omitempty"`
	Mony           string `json:"mony,omitempty"`
	Manufacturer   string `json:"manufacturer,omitempty"`
	Drug           string `json:"drug,omitempty"`
	NDC            string `json:"ndc,omitempty"`
	DateStart      string `json:"dateStart,omitempty"`
	DateEnd        string `json:"dateEnd,omitempty"`
	GroupID        string `json:"groupId,omitempty"`
	IncludeFlagged bool   `json:"includeFlaggedNdcs"`
	Limit          int    `json:"limit"`
}

// HasDimension reports whether at least one dimensional constraint is set —
// the flagged-record toggle alone does not count.
func (f FilterParams) HasDimension() bool {
	return f.Formulary != "" || f.State != "" || f.Mony != "" ||
		f.Manufacturer != "" || f.Drug != "" || f.NDC != "" ||
		f.DateStart != "" || f.DateEnd != "" || f.GroupID != ""
}

// FlaggedNDC identifies a drug code asserted to be a synthetic test artifact.
type FlaggedNDC struct {
	NDC    string
	Label  string
	Reason string
}

// FlaggedNDCs is the static exclusion list. One record dominates a single
// calendar month; exclusion is the default for every aggregate query.
var FlaggedNDCs = []FlaggedNDC{
	{
		NDC:    "65862020190",
		Label:  "KRYPTONITE XR (LEX LUTHER INC.)",
		Reason: "Synthetic test drug — 49,567 claims, 99.5% in May",
	},
}

// Fixed dimension domains for the 2021 dataset.
var (
	ValidStates      = []string{"CA", "IN", "PA", "KS", "MN"}
	ValidFormularies = []string{"OPEN", "MANAGED", "HMF"}
	ValidMonyCodes   = []string{"M", "O", "N", "Y"}
)

// KpiSummary is the headline aggregate for a filter set.
type KpiSummary struct {
	TotalClaims  int     `json:"totalClaims" db:"total_claims"`
	NetClaims    int     `json:"netClaims" db:"net_claims"`
	ReversalRate float64 `json:"reversalRate" db:"reversal_rate"`
	UniqueDrugs  int     `json:"uniqueDrugs" db:"unique_drugs"`
}

// MonthlyPoint carries incurred and reversed counts for one calendar month.
// Net volume is incurred minus reversed; the two are never pre-summed.
type MonthlyPoint struct {
	Month    string `json:"month" db:"month"`
	Incurred int    `json:"incurred" db:"incurred"`
	Reversed int    `json:"reversed" db:"reversed"`
}

// FormularyBreakdown is the per-formulary-tier slice of the portfolio.
type FormularyBreakdown struct {
	Type         string  `json:"type" db:"type"`
	NetClaims    int     `json:"netClaims" db:"net_claims"`
	ReversalRate float64 `json:"reversalRate" db:"reversal_rate"`
}

// StateBreakdown is the per-state slice of the portfolio.
type StateBreakdown struct {
	State        string  `json:"state" db:"state"`
	NetClaims    int     `json:"netClaims" db:"net_claims"`
	TotalClaims  int     `json:"totalClaims" db:"total_claims"`
	ReversalRate float64 `json:"reversalRate" db:"reversal_rate"`
	GroupCount   int     `json:"groupCount" db:"group_count"`
}

// AdjudicationSummary splits claims by point-of-sale adjudication flag.
type AdjudicationSummary struct {
	Adjudicated    int     `json:"adjudicated" db:"adjudicated"`
	NotAdjudicated int     `json:"notAdjudicated" db:"not_adjudicated"`
	Rate           float64 `json:"rate" db:"rate"`
}

// DrugRow is one entry in the ranked drug table.
type DrugRow struct {
	DrugName     string  `json:"drugName" db:"drug_name"`
	LabelName    string  `json:"labelName" db:"label_name"`
	NDC          string  `json:"ndc" db:"ndc"`
	NetClaims    int     `json:"netClaims" db:"net_claims"`
	ReversalRate float64 `json:"reversalRate" db:"reversal_rate"`
	Formulary    string  `json:"formulary" db:"formulary"`
	TopState     string  `json:"topState" db:"top_state"`
}

// DaysSupplyBin is one bucket of the fixed days-supply distribution.
type DaysSupplyBin struct {
	Bin   string `json:"bin" db:"bin"`
	Count int    `json:"count" db:"count"`
}

// MonyBreakdown is net claims per MONY classification code.
type MonyBreakdown struct {
	Type      string `json:"type" db:"type"`
	NetClaims int    `json:"netClaims" db:"net_claims"`
}

// GroupVolume is net claims for one group identifier.
type GroupVolume struct {
	GroupID   string `json:"groupId" db:"group_id"`
	NetClaims int    `json:"netClaims" db:"net_claims"`
}

// ManufacturerVolume is net claims for one manufacturer.
type ManufacturerVolume struct {
	Manufacturer string `json:"manufacturer" db:"manufacturer_name"`
	NetClaims    int    `json:"netClaims" db:"net_claims"`
}

// OverviewResponse is the overview dashboard payload.
type OverviewResponse struct {
	Kpis           KpiSummary           `json:"kpis"`
	UnfilteredKpis KpiSummary           `json:"unfilteredKpis"`
	Monthly        []MonthlyPoint       `json:"monthly"`
	Formulary      []FormularyBreakdown `json:"formulary"`
	States         []StateBreakdown     `json:"states"`
	AllStates      []StateBreakdown     `json:"allStates"`
	Adjudication   AdjudicationSummary  `json:"adjudication"`
}

// ClaimsResponse is the drill-down explorer payload.
type ClaimsResponse struct {
	Kpis             KpiSummary           `json:"kpis"`
	UnfilteredKpis   KpiSummary           `json:"unfilteredKpis"`
	Monthly          []MonthlyPoint       `json:"monthly"`
	Drugs            []DrugRow            `json:"drugs"`
	DaysSupply       []DaysSupplyBin      `json:"daysSupply"`
	Mony             []MonyBreakdown      `json:"mony"`
	TopGroups        []GroupVolume        `json:"topGroups"`
	TopManufacturers []ManufacturerVolume `json:"topManufacturers"`
}

// FilterOptions lists the distinct dimension values that actually co-occur
// with at least one claim row under the current flag-exclusion policy.
type FilterOptions struct {
	Drugs         []string `json:"drugs"`
	Manufacturers []string `json:"manufacturers"`
	Groups        []string `json:"groups"`
}

// Entity is one onboarded claims entity (pharmacy client).
type Entity struct {
	ID          int    `json:"id" db:"id"`
	Name        string `json:"name" db:"name"`
	Description string `json:"description" db:"description"`
}
