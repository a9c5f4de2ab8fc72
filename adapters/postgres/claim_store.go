// Package postgres implements the claim store over PostgreSQL via sqlx.
package postgres

import (
	"context"
	"fmt"
	"reflect"

	"github.com/jmoiron/sqlx"

	"claimsight/domain/claims"
	"claimsight/internal/retry"
	"claimsight/ports"
)

const kpiColumns = `
	COUNT(*)::int AS total_claims,
	COALESCE(SUM(c.net_claim_count), 0)::int AS net_claims,
	COALESCE(ROUND(COUNT(*) FILTER (WHERE c.net_claim_count = -1)::numeric / NULLIF(COUNT(*), 0) * 100, 2), 0) AS reversal_rate,
	COUNT(DISTINCT c.ndc)::int AS unique_drugs`

type claimStore struct {
	db      *sqlx.DB
	retries int
}

// NewClaimStore creates a claim store backed by the given connection pool.
func NewClaimStore(db *sqlx.DB) ports.ClaimStore {
	return &claimStore{db: db, retries: retry.DefaultRetries}
}

// NewClaimStoreWithRetries overrides the per-query retry budget.
func NewClaimStoreWithRetries(db *sqlx.DB, retries int) ports.ClaimStore {
	if retries < 0 {
		retries = retry.DefaultRetries
	}
	return &claimStore{db: db, retries: retries}
}

// fromClause picks the claims table alone or joined to drug_info, depending
// on whether the predicate references drug columns.
func fromClause(p claims.Predicate) string {
	if p.NeedsJoin {
		return "claims c LEFT JOIN drug_info d ON c.ndc = d.ndc"
	}
	return "claims c"
}

func (s *claimStore) getOne(ctx context.Context, name string, dest any, query string, args []any) error {
	_, err := retry.Do(ctx, name, s.retries, retry.DefaultBaseDelay, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.db.GetContext(ctx, dest, s.db.Rebind(query), args...)
	})
	if err != nil {
		return fmt.Errorf("failed to run %s: %w", name, err)
	}
	return nil
}

func (s *claimStore) selectMany(ctx context.Context, name string, dest any, query string, args []any) error {
	_, err := retry.Do(ctx, name, s.retries, retry.DefaultBaseDelay, func(ctx context.Context) (struct{}, error) {
		// SelectContext appends; a retry after a mid-scan failure would
		// stack the full result behind the partial one.
		resetSlice(dest)
		return struct{}{}, s.db.SelectContext(ctx, dest, s.db.Rebind(query), args...)
	})
	if err != nil {
		return fmt.Errorf("failed to run %s: %w", name, err)
	}
	return nil
}

// resetSlice truncates the *[]T that dest points at to length zero.
func resetSlice(dest any) {
	v := reflect.ValueOf(dest)
	if v.Kind() != reflect.Ptr {
		return
	}
	elem := v.Elem()
	if elem.Kind() != reflect.Slice || elem.IsNil() {
		return
	}
	elem.SetLen(0)
}

func (s *claimStore) KpiSummary(ctx context.Context, f claims.FilterParams) (claims.KpiSummary, error) {
	p := claims.BuildPredicate(f)
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s", kpiColumns, fromClause(p), p.Where)

	var out claims.KpiSummary
	if err := s.getOne(ctx, "kpi summary", &out, query, p.Args); err != nil {
		return claims.KpiSummary{}, err
	}
	return out, nil
}

func (s *claimStore) MonthlySeries(ctx context.Context, f claims.FilterParams) ([]claims.MonthlyPoint, error) {
	p := claims.BuildPredicate(f)
	query := fmt.Sprintf(`
		SELECT
			TO_CHAR(c.date_filled, 'YYYY-MM') AS month,
			COUNT(*) FILTER (WHERE c.net_claim_count = 1)::int AS incurred,
			COUNT(*) FILTER (WHERE c.net_claim_count = -1)::int AS reversed
		FROM %s
		WHERE %s
		GROUP BY TO_CHAR(c.date_filled, 'YYYY-MM')
		ORDER BY month`, fromClause(p), p.Where)

	var out []claims.MonthlyPoint
	if err := s.selectMany(ctx, "monthly series", &out, query, p.Args); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *claimStore) StateBreakdown(ctx context.Context, f claims.FilterParams) ([]claims.StateBreakdown, error) {
	return s.stateBreakdown(ctx, "state breakdown", claims.BuildPredicate(f))
}

// AllStateBreakdown ignores the state filter so charts can keep every
// state's bar visible next to the selected one.
func (s *claimStore) AllStateBreakdown(ctx context.Context, f claims.FilterParams) ([]claims.StateBreakdown, error) {
	return s.stateBreakdown(ctx, "all-state breakdown", claims.BuildNoStatePredicate(f))
}

func (s *claimStore) stateBreakdown(ctx context.Context, name string, p claims.Predicate) ([]claims.StateBreakdown, error) {
	query := fmt.Sprintf(`
		SELECT
			c.pharmacy_state AS state,
			COALESCE(SUM(c.net_claim_count), 0)::int AS net_claims,
			COUNT(*)::int AS total_claims,
			COALESCE(ROUND(COUNT(*) FILTER (WHERE c.net_claim_count = -1)::numeric / NULLIF(COUNT(*), 0) * 100, 2), 0) AS reversal_rate,
			COUNT(DISTINCT c.group_id)::int AS group_count
		FROM %s
		WHERE %s
		GROUP BY c.pharmacy_state
		ORDER BY net_claims DESC`, fromClause(p), p.Where)

	var out []claims.StateBreakdown
	if err := s.selectMany(ctx, name, &out, query, p.Args); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *claimStore) FormularyBreakdown(ctx context.Context, f claims.FilterParams) ([]claims.FormularyBreakdown, error) {
	p := claims.BuildPredicate(f)
	query := fmt.Sprintf(`
		SELECT
			c.formulary AS type,
			COALESCE(SUM(c.net_claim_count), 0)::int AS net_claims,
			COALESCE(ROUND(COUNT(*) FILTER (WHERE c.net_claim_count = -1)::numeric / NULLIF(COUNT(*), 0) * 100, 2), 0) AS reversal_rate
		FROM %s
		WHERE %s
		GROUP BY c.formulary
		ORDER BY net_claims DESC`, fromClause(p), p.Where)

	var out []claims.FormularyBreakdown
	if err := s.selectMany(ctx, "formulary breakdown", &out, query, p.Args); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *claimStore) AdjudicationSummary(ctx context.Context, f claims.FilterParams) (claims.AdjudicationSummary, error) {
	p := claims.BuildPredicate(f)
	query := fmt.Sprintf(`
		SELECT
			COUNT(*) FILTER (WHERE c.adjudicated = true)::int AS adjudicated,
			COUNT(*) FILTER (WHERE c.adjudicated = false)::int AS not_adjudicated,
			COALESCE(ROUND(COUNT(*) FILTER (WHERE c.adjudicated = true)::numeric / NULLIF(COUNT(*), 0) * 100, 2), 0) AS rate
		FROM %s
		WHERE %s`, fromClause(p), p.Where)

	var out claims.AdjudicationSummary
	if err := s.getOne(ctx, "adjudication summary", &out, query, p.Args); err != nil {
		return claims.AdjudicationSummary{}, err
	}
	return out, nil
}

func (s *claimStore) TopDrugs(ctx context.Context, f claims.FilterParams) ([]claims.DrugRow, error) {
	p := claims.BuildPredicate(f)
	// Always joined: the row itself is drug-shaped.
	query := fmt.Sprintf(`
		SELECT
			COALESCE(d.drug_name, 'Unknown') AS drug_name,
			COALESCE(d.label_name, '') AS label_name,
			c.ndc AS ndc,
			COALESCE(SUM(c.net_claim_count), 0)::int AS net_claims,
			COALESCE(ROUND(COUNT(*) FILTER (WHERE c.net_claim_count = -1)::numeric / NULLIF(COUNT(*), 0) * 100, 2), 0) AS reversal_rate,
			COALESCE(MODE() WITHIN GROUP (ORDER BY c.formulary), 'Unknown') AS formulary,
			COALESCE(MODE() WITHIN GROUP (ORDER BY c.pharmacy_state), 'Unknown') AS top_state
		FROM claims c
		LEFT JOIN drug_info d ON c.ndc = d.ndc
		WHERE %s
		GROUP BY d.drug_name, d.label_name, c.ndc
		ORDER BY SUM(c.net_claim_count) DESC
		LIMIT %d`, p.Where, f.Limit)

	var out []claims.DrugRow
	if err := s.selectMany(ctx, "top drugs", &out, query, p.Args); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *claimStore) DaysSupplyBins(ctx context.Context, f claims.FilterParams) ([]claims.DaysSupplyBin, error) {
	p := claims.BuildPredicate(f)
	query := fmt.Sprintf(`
		SELECT
			CASE
				WHEN c.days_supply <= 7 THEN '7'
				WHEN c.days_supply <= 14 THEN '14'
				WHEN c.days_supply <= 30 THEN '30'
				WHEN c.days_supply <= 60 THEN '60'
				WHEN c.days_supply <= 90 THEN '90'
				ELSE 'Other'
			END AS bin,
			COALESCE(SUM(c.net_claim_count), 0)::int AS count
		FROM %s
		WHERE %s
		GROUP BY 1
		ORDER BY MIN(c.days_supply)`, fromClause(p), p.Where)

	var out []claims.DaysSupplyBin
	if err := s.selectMany(ctx, "days-supply bins", &out, query, p.Args); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *claimStore) MonyBreakdown(ctx context.Context, f claims.FilterParams) ([]claims.MonyBreakdown, error) {
	p := claims.BuildPredicate(f)
	query := fmt.Sprintf(`
		SELECT
			COALESCE(d.mony::text, 'Unknown') AS type,
			COALESCE(SUM(c.net_claim_count), 0)::int AS net_claims
		FROM claims c
		LEFT JOIN drug_info d ON c.ndc = d.ndc
		WHERE %s
		GROUP BY d.mony
		ORDER BY SUM(c.net_claim_count) DESC`, p.Where)

	var out []claims.MonyBreakdown
	if err := s.selectMany(ctx, "mony breakdown", &out, query, p.Args); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *claimStore) TopGroups(ctx context.Context, f claims.FilterParams) ([]claims.GroupVolume, error) {
	p := claims.BuildPredicate(f)
	query := fmt.Sprintf(`
		SELECT
			c.group_id AS group_id,
			COALESCE(SUM(c.net_claim_count), 0)::int AS net_claims
		FROM %s
		WHERE %s
		GROUP BY c.group_id
		ORDER BY SUM(c.net_claim_count) DESC
		LIMIT 10`, fromClause(p), p.Where)

	var out []claims.GroupVolume
	if err := s.selectMany(ctx, "top groups", &out, query, p.Args); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *claimStore) TopManufacturers(ctx context.Context, f claims.FilterParams) ([]claims.ManufacturerVolume, error) {
	p := claims.BuildPredicate(f)
	query := fmt.Sprintf(`
		SELECT
			COALESCE(d.manufacturer_name, 'Unknown') AS manufacturer_name,
			COALESCE(SUM(c.net_claim_count), 0)::int AS net_claims
		FROM claims c
		LEFT JOIN drug_info d ON c.ndc = d.ndc
		WHERE %s
		GROUP BY d.manufacturer_name
		ORDER BY SUM(c.net_claim_count) DESC
		LIMIT 10`, p.Where)

	var out []claims.ManufacturerVolume
	if err := s.selectMany(ctx, "top manufacturers", &out, query, p.Args); err != nil {
		return nil, err
	}
	return out, nil
}

// FilterOptions lists the drug, manufacturer, and group values that appear
// on at least one claim row under the entity + flag policy. The drug_info
// table alone would list drugs no claim ever references.
func (s *claimStore) FilterOptions(ctx context.Context, f claims.FilterParams) (claims.FilterOptions, error) {
	p := claims.BuildBaselinePredicate(f)

	var out claims.FilterOptions
	drugQuery := fmt.Sprintf(`
		SELECT DISTINCT d.drug_name
		FROM drug_info d
		WHERE d.ndc IN (SELECT DISTINCT c.ndc FROM claims c WHERE %s)
			AND d.drug_name IS NOT NULL
		ORDER BY d.drug_name`, p.Where)
	if err := s.selectMany(ctx, "drug options", &out.Drugs, drugQuery, p.Args); err != nil {
		return claims.FilterOptions{}, err
	}

	manufacturerQuery := fmt.Sprintf(`
		SELECT DISTINCT d.manufacturer_name
		FROM drug_info d
		WHERE d.ndc IN (SELECT DISTINCT c.ndc FROM claims c WHERE %s)
			AND d.manufacturer_name IS NOT NULL
		ORDER BY d.manufacturer_name`, p.Where)
	if err := s.selectMany(ctx, "manufacturer options", &out.Manufacturers, manufacturerQuery, p.Args); err != nil {
		return claims.FilterOptions{}, err
	}

	groupQuery := fmt.Sprintf(`
		SELECT DISTINCT c.group_id
		FROM claims c
		WHERE %s AND c.group_id IS NOT NULL
		ORDER BY c.group_id`, p.Where)
	if err := s.selectMany(ctx, "group options", &out.Groups, groupQuery, p.Args); err != nil {
		return claims.FilterOptions{}, err
	}

	return out, nil
}

func (s *claimStore) Entities(ctx context.Context) ([]claims.Entity, error) {
	var out []claims.Entity
	query := `SELECT id, name, COALESCE(description, '') AS description FROM entities ORDER BY id`
	if err := s.selectMany(ctx, "entities", &out, query, nil); err != nil {
		return nil, err
	}
	return out, nil
}
