package export

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
)

// FormatExcel renders the document as a single-sheet .xlsx: the same
// commented header block and stacked sections as the CSV export, so the
// two formats stay interchangeable.
func FormatExcel(opts Options, now time.Time) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Sheet1"
	row := 1

	filters := opts.Filters
	if filters == "" {
		filters = "None"
	}
	header := []string{
		"# SPS Health — " + opts.Title + " Export",
		"# Date: " + now.Format("2006-01-02"),
		"# Filters: " + filters,
		"# Entity: " + opts.Entity,
	}
	for _, line := range header {
		if err := setRow(f, sheet, row, []string{line}); err != nil {
			return nil, err
		}
		row++
	}
	row++ // blank line after the header block

	for i, section := range opts.Sections {
		if i > 0 {
			row++
		}
		if err := setRow(f, sheet, row, []string{section.Heading}); err != nil {
			return nil, err
		}
		row++
		if err := setRow(f, sheet, row, section.Headers); err != nil {
			return nil, err
		}
		row++
		for _, cells := range section.Rows {
			if err := setRow(f, sheet, row, cells); err != nil {
				return nil, err
			}
			row++
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func setRow(f *excelize.File, sheet string, row int, cells []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("failed to resolve cell for row %d: %w", row, err)
	}
	values := make([]any, len(cells))
	for i, c := range cells {
		values[i] = c
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to set row %d: %w", row, err)
	}
	return nil
}
