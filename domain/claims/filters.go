package claims

import (
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"
)

const (
	DefaultEntityID = 1
	DefaultLimit    = 20
	MinLimit        = 1
	MaxLimit        = 100

	maxNameLen  = 200
	maxNDCLen   = 20
	maxGroupLen = 50
)

// Dates arrive either ISO (2021-05-01) or compact (20210501).
var dateRe = regexp.MustCompile(`^\d{4}-?\d{2}-?\d{2}$`)

// DefaultFilters returns the filter set used when a request carries no
// recognizable filters at all.
func DefaultFilters() FilterParams {
	return FilterParams{
		EntityID: DefaultEntityID,
		Limit:    DefaultLimit,
	}
}

// Normalize converts raw query parameters into a validated FilterParams.
// It fails open: any value outside its domain is rejected and the request
// proceeds with defaults rather than an error. A dashboard that refuses to
// render over a bad querystring is worse than one that renders unfiltered.
func Normalize(raw map[string]string) FilterParams {
	f := DefaultFilters()
	if raw == nil {
		return f
	}

	if v, ok := raw["entityId"]; ok && v != "" {
		id, err := strconv.Atoi(v)
		if err != nil || id < 1 {
			log.Printf("[Filters] invalid entityId %q, using defaults", v)
			return DefaultFilters()
		}
		f.EntityID = id
	}

	var err error
	if f.Formulary, err = oneOf(raw["formulary"], ValidFormularies); err != nil {
		log.Printf("[Filters] %v, using defaults", err)
		return DefaultFilters()
	}
	if f.State, err = oneOf(raw["state"], ValidStates); err != nil {
		log.Printf("[Filters] %v, using defaults", err)
		return DefaultFilters()
	}
	if f.Mony, err = oneOf(raw["mony"], ValidMonyCodes); err != nil {
		log.Printf("[Filters] %v, using defaults", err)
		return DefaultFilters()
	}

	if f.Manufacturer, err = bounded(raw["manufacturer"], maxNameLen); err != nil {
		log.Printf("[Filters] manufacturer %v, using defaults", err)
		return DefaultFilters()
	}
	if f.Drug, err = bounded(raw["drug"], maxNameLen); err != nil {
		log.Printf("[Filters] drug %v, using defaults", err)
		return DefaultFilters()
	}
	if f.NDC, err = bounded(raw["ndc"], maxNDCLen); err != nil {
		log.Printf("[Filters] ndc %v, using defaults", err)
		return DefaultFilters()
	}
	if f.GroupID, err = bounded(raw["groupId"], maxGroupLen); err != nil {
		log.Printf("[Filters] groupId %v, using defaults", err)
		return DefaultFilters()
	}

	if v := raw["dateStart"]; v != "" {
		if !dateRe.MatchString(v) {
			log.Printf("[Filters] invalid dateStart %q, using defaults", v)
			return DefaultFilters()
		}
		f.DateStart = canonicalDate(v)
	}
	if v := raw["dateEnd"]; v != "" {
		if !dateRe.MatchString(v) {
			log.Printf("[Filters] invalid dateEnd %q, using defaults", v)
			return DefaultFilters()
		}
		f.DateEnd = canonicalDate(v)
	}

	f.IncludeFlagged = raw["includeFlaggedNdcs"] == "true"

	if v, ok := raw["limit"]; ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			log.Printf("[Filters] invalid limit %q, using defaults", v)
			return DefaultFilters()
		}
		if n < MinLimit {
			n = MinLimit
		}
		if n > MaxLimit {
			n = MaxLimit
		}
		f.Limit = n
	}

	return f
}

// canonicalDate rewrites a compact 20210501 date to 2021-05-01 so one
// form flows to both the SQL predicate and the month-matching rules.
func canonicalDate(v string) string {
	if len(v) == 8 {
		return v[:4] + "-" + v[4:6] + "-" + v[6:]
	}
	return v
}

func oneOf(v string, domain []string) (string, error) {
	if v == "" {
		return "", nil
	}
	u := strings.ToUpper(v)
	for _, d := range domain {
		if u == d {
			return u, nil
		}
	}
	return "", fmt.Errorf("value %q not in %v", v, domain)
}

func bounded(v string, max int) (string, error) {
	if len(v) > max {
		return "", fmt.Errorf("value exceeds %d chars", max)
	}
	return v, nil
}
