package ui

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"claimsight/domain/anomaly"
	"claimsight/internal/errors"
)

// handleAnomalyReport renders the anomaly panels as a standalone HTML page
// for sharing outside the dashboard.
func (a *App) handleAnomalyReport(w http.ResponseWriter, r *http.Request) {
	f := filtersFromRequest(r)
	report, err := a.anomalies.Report(r.Context(), f.EntityID)
	if err != nil {
		a.writeError(w, r, errors.Wrap(err, "failed to build anomaly report"))
		return
	}

	md := anomalyMarkdown(report, time.Now())
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	body := markdown.ToHTML([]byte(md), p, renderer)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, reportShell, body)
}

// anomalyMarkdown lays the panels out as a markdown document: headline,
// key stat, the four narrative blocks, and the before/after table when the
// panel carries one.
func anomalyMarkdown(report anomaly.Report, now time.Time) string {
	var b strings.Builder
	b.WriteString("# SPS Health — Anomaly Report\n\n")
	fmt.Fprintf(&b, "Generated %s.\n\n", now.Format("2006-01-02"))

	for _, panel := range report.Panels {
		fmt.Fprintf(&b, "## %s\n\n", panel.Title)
		fmt.Fprintf(&b, "**Key stat:** %s\n\n", panel.KeyStat)
		fmt.Fprintf(&b, "**What we see:** %s\n\n", panel.WhatWeSee)
		fmt.Fprintf(&b, "**Why it matters:** %s\n\n", panel.WhyItMatters)
		fmt.Fprintf(&b, "**To confirm:** %s\n\n", panel.ToConfirm)
		fmt.Fprintf(&b, "**RFP impact:** %s\n\n", panel.RfpImpact)

		if len(panel.BeforeAfter) > 0 {
			b.WriteString("| Metric | With flagged | Without flagged |\n")
			b.WriteString("| --- | --- | --- |\n")
			for _, row := range panel.BeforeAfter {
				fmt.Fprintf(&b, "| %s | %s | %s |\n", row.Metric, row.WithFlagged, row.WithoutFlagged)
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

const reportShell = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Anomaly Report</title>
<style>
body { font-family: -apple-system, "Segoe UI", sans-serif; max-width: 52rem; margin: 2rem auto; padding: 0 1rem; color: #1a202c; }
h1 { border-bottom: 2px solid #2b6cb0; padding-bottom: .4rem; }
h2 { margin-top: 2rem; color: #2b6cb0; }
table { border-collapse: collapse; margin: 1rem 0; }
th, td { border: 1px solid #cbd5e0; padding: .35rem .75rem; text-align: left; }
th { background: #edf2f7; }
</style>
</head>
<body>
%s
</body>
</html>
`
