// Package export renders dashboard aggregates into downloadable documents.
package export

import (
	"strings"
	"time"
)

// Section is one titled table inside an export document.
type Section struct {
	Heading string
	Headers []string
	Rows    [][]string
}

// Options describes a complete export document.
type Options struct {
	Title    string
	Filters  string
	Entity   string
	Sections []Section
}

// escapeCell always quotes — safe for commas, quotes, and newlines.
func escapeCell(value string) string {
	return `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
}

// FormatCSV renders the document as CSV with a commented header block and
// blank lines between sections.
func FormatCSV(opts Options, now time.Time) string {
	filters := opts.Filters
	if filters == "" {
		filters = "None"
	}
	lines := []string{
		"# SPS Health — " + opts.Title + " Export",
		"# Date: " + now.Format("2006-01-02"),
		"# Filters: " + filters,
		"# Entity: " + opts.Entity,
		"",
	}

	for i, section := range opts.Sections {
		if i > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, section.Heading)
		lines = append(lines, strings.Join(section.Headers, ","))
		for _, row := range section.Rows {
			cells := make([]string, len(row))
			for j, cell := range row {
				cells[j] = escapeCell(cell)
			}
			lines = append(lines, strings.Join(cells, ","))
		}
	}

	return strings.Join(lines, "\n")
}
