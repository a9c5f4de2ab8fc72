package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"claimsight/domain/claims"
	"claimsight/domain/insight"
	"claimsight/internal/export"
	"claimsight/ports"
)

// Export formats.
const (
	FormatCSV   = "csv"
	FormatExcel = "xlsx"
)

// ExportService renders the dashboard payloads into downloadable documents.
type ExportService struct {
	dashboards *DashboardService
	store      ports.ClaimStore
}

// NewExportService creates an export service.
func NewExportService(dashboards *DashboardService, store ports.ClaimStore) *ExportService {
	return &ExportService{dashboards: dashboards, store: store}
}

// Document builds the export for one view in the requested format and
// returns the payload plus a download filename and content type.
func (s *ExportService) Document(ctx context.Context, view string, f claims.FilterParams, format string, now time.Time) ([]byte, string, string, error) {
	var opts export.Options
	var err error

	switch view {
	case insight.ViewOverview:
		opts, err = s.overviewOptions(ctx, f)
	case insight.ViewExplorer:
		opts, err = s.explorerOptions(ctx, f)
	default:
		return nil, "", "", fmt.Errorf("unknown export view %q", view)
	}
	if err != nil {
		return nil, "", "", err
	}
	opts.Filters = FilterSummary(f)
	opts.Entity, err = s.entityName(ctx, f.EntityID)
	if err != nil {
		return nil, "", "", err
	}

	stamp := now.Format("2006-01-02")
	switch format {
	case FormatCSV:
		data := []byte(export.FormatCSV(opts, now))
		return data, fmt.Sprintf("%s-export-%s.csv", view, stamp), "text/csv", nil
	case FormatExcel:
		data, err := export.FormatExcel(opts, now)
		if err != nil {
			return nil, "", "", fmt.Errorf("failed to render workbook: %w", err)
		}
		return data, fmt.Sprintf("%s-export-%s.xlsx", view, stamp),
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", nil
	default:
		return nil, "", "", fmt.Errorf("unknown export format %q", format)
	}
}

func (s *ExportService) overviewOptions(ctx context.Context, f claims.FilterParams) (export.Options, error) {
	data, err := s.dashboards.Overview(ctx, f)
	if err != nil {
		return export.Options{}, err
	}

	sections := []export.Section{
		kpiSection(data.Kpis),
		monthlySection(data.Monthly),
	}

	formulary := export.Section{
		Heading: "Formulary Breakdown",
		Headers: []string{"Formulary", "Net Claims", "Reversal Rate"},
	}
	for _, row := range data.Formulary {
		formulary.Rows = append(formulary.Rows, []string{
			row.Type, claims.FormatNumber(row.NetClaims), claims.FormatPercent(row.ReversalRate),
		})
	}
	sections = append(sections, formulary)

	states := export.Section{
		Heading: "State Breakdown",
		Headers: []string{"State", "Net Claims", "Total Claims", "Reversal Rate", "Groups"},
	}
	for _, row := range data.States {
		states.Rows = append(states.Rows, []string{
			row.State, claims.FormatNumber(row.NetClaims), claims.FormatNumber(row.TotalClaims),
			claims.FormatPercent(row.ReversalRate), claims.FormatNumber(row.GroupCount),
		})
	}
	sections = append(sections, states)

	sections = append(sections, export.Section{
		Heading: "Adjudication",
		Headers: []string{"Adjudicated", "Not Adjudicated", "Rate"},
		Rows: [][]string{{
			claims.FormatNumber(data.Adjudication.Adjudicated),
			claims.FormatNumber(data.Adjudication.NotAdjudicated),
			claims.FormatPercent(data.Adjudication.Rate),
		}},
	})

	return export.Options{Title: "Overview", Sections: sections}, nil
}

func (s *ExportService) explorerOptions(ctx context.Context, f claims.FilterParams) (export.Options, error) {
	data, err := s.dashboards.Explorer(ctx, f)
	if err != nil {
		return export.Options{}, err
	}

	sections := []export.Section{
		kpiSection(data.Kpis),
		monthlySection(data.Monthly),
	}

	drugs := export.Section{
		Heading: "Top Drugs",
		Headers: []string{"Drug", "Label", "NDC", "Net Claims", "Reversal Rate", "Formulary", "Top State"},
	}
	for _, row := range data.Drugs {
		drugs.Rows = append(drugs.Rows, []string{
			row.DrugName, row.LabelName, row.NDC,
			claims.FormatNumber(row.NetClaims), claims.FormatPercent(row.ReversalRate),
			row.Formulary, row.TopState,
		})
	}
	sections = append(sections, drugs)

	supply := export.Section{
		Heading: "Days Supply Distribution",
		Headers: []string{"Bin", "Claims"},
	}
	for _, row := range data.DaysSupply {
		supply.Rows = append(supply.Rows, []string{row.Bin, claims.FormatNumber(row.Count)})
	}
	sections = append(sections, supply)

	mony := export.Section{
		Heading: "MONY Breakdown",
		Headers: []string{"MONY", "Net Claims"},
	}
	for _, row := range data.Mony {
		mony.Rows = append(mony.Rows, []string{row.Type, claims.FormatNumber(row.NetClaims)})
	}
	sections = append(sections, mony)

	groups := export.Section{
		Heading: "Top Groups",
		Headers: []string{"Group", "Net Claims"},
	}
	for _, row := range data.TopGroups {
		groups.Rows = append(groups.Rows, []string{row.GroupID, claims.FormatNumber(row.NetClaims)})
	}
	sections = append(sections, groups)

	manufacturers := export.Section{
		Heading: "Top Manufacturers",
		Headers: []string{"Manufacturer", "Net Claims"},
	}
	for _, row := range data.TopManufacturers {
		manufacturers.Rows = append(manufacturers.Rows, []string{row.Manufacturer, claims.FormatNumber(row.NetClaims)})
	}
	sections = append(sections, manufacturers)

	return export.Options{Title: "Claims Explorer", Sections: sections}, nil
}

func kpiSection(k claims.KpiSummary) export.Section {
	return export.Section{
		Heading: "KPI Summary",
		Headers: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Total Claims", claims.FormatNumber(k.TotalClaims)},
			{"Net Claims", claims.FormatNumber(k.NetClaims)},
			{"Reversal Rate", claims.FormatPercent(k.ReversalRate)},
			{"Unique Drugs", claims.FormatNumber(k.UniqueDrugs)},
		},
	}
}

// monthlySection densifies the series so every month of the year appears,
// zero-filled where the filter left no claims.
func monthlySection(monthly []claims.MonthlyPoint) export.Section {
	section := export.Section{
		Heading: "Monthly Volume",
		Headers: []string{"Month", "Incurred", "Reversed", "Net"},
	}
	for _, p := range claims.FillAllMonths(monthly) {
		section.Rows = append(section.Rows, []string{
			p.Month,
			claims.FormatNumber(p.Incurred),
			claims.FormatNumber(p.Reversed),
			claims.FormatNumber(p.Incurred - p.Reversed),
		})
	}
	return section
}

func (s *ExportService) entityName(ctx context.Context, entityID int) (string, error) {
	entities, err := s.store.Entities(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to resolve entity: %w", err)
	}
	for _, e := range entities {
		if e.ID == entityID {
			return e.Name, nil
		}
	}
	return fmt.Sprintf("Entity #%d", entityID), nil
}

// FilterSummary renders the active constraints as a single display line,
// "" when the view is unfiltered.
func FilterSummary(f claims.FilterParams) string {
	var parts []string
	if f.State != "" {
		parts = append(parts, "State = "+f.State)
	}
	if f.Formulary != "" {
		parts = append(parts, "Formulary = "+f.Formulary)
	}
	if f.Mony != "" {
		parts = append(parts, "MONY = "+f.Mony)
	}
	if f.Manufacturer != "" {
		parts = append(parts, "Manufacturer = "+f.Manufacturer)
	}
	if f.Drug != "" {
		parts = append(parts, "Drug = "+f.Drug)
	}
	if f.NDC != "" {
		parts = append(parts, "NDC = "+f.NDC)
	}
	if f.GroupID != "" {
		parts = append(parts, "Group = "+f.GroupID)
	}
	if f.DateStart != "" {
		parts = append(parts, "From "+f.DateStart)
	}
	if f.DateEnd != "" {
		parts = append(parts, "To "+f.DateEnd)
	}
	if f.IncludeFlagged {
		parts = append(parts, "Flagged NDCs included")
	}
	return strings.Join(parts, ", ")
}
