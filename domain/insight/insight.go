// Package insight turns a filter state plus dashboard aggregates into a
// short list of narrative cards. Templates are static; matching is
// deterministic, priority-ordered, and capped.
package insight

import (
	"sort"

	"claimsight/domain/claims"
)

type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityPositive Severity = "positive"
)

// Card is one rendered insight.
type Card struct {
	ID       string   `json:"id"`
	Severity Severity `json:"severity"`
	Title    string   `json:"title"`
	Body     string   `json:"body"`
}

// Views. Overview cards draw on OverviewResponse data, explorer cards on
// ClaimsResponse data; a template belongs to exactly one view and the two
// sets never mix in output.
const (
	ViewOverview = "overview"
	ViewExplorer = "explorer"
)

// DefaultMax caps the card list unless the caller raises it.
const DefaultMax = 3

// Context is everything a template may look at. Only the field matching
// the view is populated.
type Context struct {
	Filters  claims.FilterParams
	View     string
	Overview claims.OverviewResponse
	Explorer claims.ClaimsResponse
}

type template struct {
	id       string
	priority int // lower sorts first
	view     string
	match    func(Context) bool
	generate func(Context) Card
}

// Generate evaluates all templates against ctx, lowest priority number
// first, and returns the first max matches. max <= 0 falls back to
// DefaultMax.
func Generate(ctx Context, max int) []Card {
	if max <= 0 {
		max = DefaultMax
	}
	all := make([]template, 0, len(overviewTemplates)+len(explorerTemplates))
	all = append(all, overviewTemplates...)
	all = append(all, explorerTemplates...)
	sort.SliceStable(all, func(i, j int) bool { return all[i].priority < all[j].priority })

	cards := make([]Card, 0, max)
	for _, t := range all {
		if len(cards) >= max {
			break
		}
		if t.view != ctx.View {
			continue
		}
		if t.match(ctx) {
			cards = append(cards, t.generate(ctx))
		}
	}
	return cards
}

var stateNames = map[string]string{
	"CA": "California",
	"IN": "Indiana",
	"KS": "Kansas",
	"MN": "Minnesota",
	"PA": "Pennsylvania",
}

// reversalWarnThreshold is the rate above which an insight escalates from
// info to warning.
const reversalWarnThreshold = 15.0
