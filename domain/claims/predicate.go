package claims

import "strings"

// Predicate is a composable WHERE fragment over the claims table (aliased c)
// with positional `?` placeholders. The store rebinds placeholders for the
// active driver, so the same predicate text feeds every aggregate query.
type Predicate struct {
	Where     string
	Args      []any
	NeedsJoin bool
}

// BuildPredicate translates a normalized filter set into SQL conditions.
// Entity scoping is unconditional; the flagged-NDC exclusion applies unless
// the caller opted in. NeedsJoin is set only when a condition references
// drug_info columns (aliased d).
func BuildPredicate(f FilterParams) Predicate {
	conds := []string{"c.entity_id = ?"}
	args := []any{f.EntityID}

	if !f.IncludeFlagged {
		conds = append(conds, flaggedExclusion(&args))
	}

	needsJoin := false

	if f.Formulary != "" {
		conds = append(conds, "c.formulary = ?")
		args = append(args, f.Formulary)
	}
	if f.State != "" {
		conds = append(conds, "c.pharmacy_state = ?")
		args = append(args, f.State)
	}
	if f.Mony != "" {
		conds = append(conds, "d.mony = ?")
		args = append(args, f.Mony)
		needsJoin = true
	}
	if f.Manufacturer != "" {
		conds = append(conds, "d.manufacturer_name = ?")
		args = append(args, f.Manufacturer)
		needsJoin = true
	}
	if f.Drug != "" {
		conds = append(conds, "d.drug_name = ?")
		args = append(args, f.Drug)
		needsJoin = true
	}
	if f.NDC != "" {
		conds = append(conds, "c.ndc = ?")
		args = append(args, f.NDC)
	}
	if f.DateStart != "" {
		conds = append(conds, "c.date_filled >= ?")
		args = append(args, f.DateStart)
	}
	if f.DateEnd != "" {
		conds = append(conds, "c.date_filled <= ?")
		args = append(args, f.DateEnd)
	}
	if f.GroupID != "" {
		conds = append(conds, "c.group_id = ?")
		args = append(args, f.GroupID)
	}

	return Predicate{
		Where:     strings.Join(conds, " AND "),
		Args:      args,
		NeedsJoin: needsJoin,
	}
}

// BuildBaselinePredicate keeps only the entity scope and the flag policy.
// Baseline KPIs compare the filtered view against the whole book of business.
func BuildBaselinePredicate(f FilterParams) Predicate {
	return BuildPredicate(FilterParams{
		EntityID:       f.EntityID,
		IncludeFlagged: f.IncludeFlagged,
	})
}

// BuildNoStatePredicate drops the state condition so per-state bars can show
// every state's volume alongside the selected one.
func BuildNoStatePredicate(f FilterParams) Predicate {
	g := f
	g.State = ""
	return BuildPredicate(g)
}

func flaggedExclusion(args *[]any) string {
	ph := make([]string, len(FlaggedNDCs))
	for i, fn := range FlaggedNDCs {
		ph[i] = "?"
		*args = append(*args, fn.NDC)
	}
	return "c.ndc NOT IN (" + strings.Join(ph, ", ") + ")"
}
