package postgres

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"claimsight/domain/anomaly"
	"claimsight/domain/claims"
)

// AnomalyInputs gathers every pre-aggregated series the anomaly panels
// need in one fan-out. The flagged NDC is excluded explicitly in each
// query: anomaly analysis always contrasts with/without the synthetic
// drug regardless of the request's flag toggle.
func (s *claimStore) AnomalyInputs(ctx context.Context, entityID int) (anomaly.Inputs, error) {
	flagged := claims.FlaggedNDCs[0].NDC
	var in anomaly.Inputs

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		query := `
			SELECT TO_CHAR(c.date_filled, 'YYYY-MM') AS month, COUNT(*)::int AS total
			FROM claims c
			WHERE c.entity_id = ? AND c.ndc = ?
			GROUP BY TO_CHAR(c.date_filled, 'YYYY-MM')
			ORDER BY month`
		return s.selectMany(gctx, "flagged monthly", &in.FlaggedMonthly, query, []any{entityID, flagged})
	})

	g.Go(func() error {
		query := fmt.Sprintf(`SELECT %s FROM claims c WHERE c.entity_id = ?`, kpiColumns)
		return s.getOne(gctx, "kpis with flagged", &in.KpisWithFlagged, query, []any{entityID})
	})

	g.Go(func() error {
		query := fmt.Sprintf(`SELECT %s FROM claims c WHERE c.entity_id = ? AND c.ndc != ?`, kpiColumns)
		return s.getOne(gctx, "kpis without flagged", &in.KpisWithout, query, []any{entityID, flagged})
	})

	g.Go(func() error {
		query := `
			SELECT COUNT(*)::int
			FROM claims c
			WHERE c.entity_id = ?
				AND c.date_filled >= '2021-05-01' AND c.date_filled < '2021-06-01'`
		return s.getOne(gctx, "may volume with flagged", &in.MayWithFlagged, query, []any{entityID})
	})

	g.Go(func() error {
		query := `
			SELECT COUNT(*)::int
			FROM claims c
			WHERE c.entity_id = ? AND c.ndc != ?
				AND c.date_filled >= '2021-05-01' AND c.date_filled < '2021-06-01'`
		return s.getOne(gctx, "may volume without flagged", &in.MayWithout, query, []any{entityID, flagged})
	})

	g.Go(func() error {
		query := `
			SELECT TO_CHAR(c.date_filled, 'YYYY-MM') AS month, COUNT(*)::int AS total
			FROM claims c
			WHERE c.entity_id = ? AND c.ndc != ?
			GROUP BY TO_CHAR(c.date_filled, 'YYYY-MM')
			ORDER BY month`
		return s.selectMany(gctx, "monthly totals", &in.MonthlyTotals, query, []any{entityID, flagged})
	})

	g.Go(func() error {
		return s.monthByDimension(gctx, "september by state", &in.SeptByState,
			"c.pharmacy_state", entityID, flagged, "2021-09-01", "2021-10-01")
	})

	g.Go(func() error {
		return s.monthByDimension(gctx, "september by formulary", &in.SeptByFormulary,
			"c.formulary", entityID, flagged, "2021-09-01", "2021-10-01")
	})

	g.Go(func() error {
		return s.monthByDimension(gctx, "november by state", &in.NovByState,
			"c.pharmacy_state", entityID, flagged, "2021-11-01", "2021-12-01")
	})

	g.Go(func() error {
		return s.yearlyAverageByDimension(gctx, "state averages", &in.AvgByState,
			"c.pharmacy_state", entityID, flagged)
	})

	g.Go(func() error {
		return s.yearlyAverageByDimension(gctx, "formulary averages", &in.AvgByFormulary,
			"c.formulary", entityID, flagged)
	})

	g.Go(func() error {
		query := `
			SELECT
				TO_CHAR(c.date_filled, 'YYYY-MM') AS month,
				COALESCE(ROUND(COUNT(*) FILTER (WHERE c.net_claim_count = -1)::numeric / NULLIF(COUNT(*), 0) * 100, 2), 0) AS rate
			FROM claims c
			WHERE c.entity_id = ? AND c.ndc != ? AND c.pharmacy_state = 'KS'
			GROUP BY TO_CHAR(c.date_filled, 'YYYY-MM')
			ORDER BY month`
		return s.selectMany(gctx, "ks monthly reversal", &in.KSMonthlyReversal, query, []any{entityID, flagged})
	})

	g.Go(func() error {
		// Top 5 KS groups fully reversed in August, with their Jul-Sep volumes.
		query := `
			WITH aug_groups AS (
				SELECT c.group_id
				FROM claims c
				WHERE c.entity_id = ?
					AND c.pharmacy_state = 'KS'
					AND c.date_filled >= '2021-08-01' AND c.date_filled < '2021-09-01'
				GROUP BY c.group_id
				HAVING COUNT(*) FILTER (WHERE c.net_claim_count = 1) = 0
				ORDER BY COUNT(*) DESC
				LIMIT 5
			)
			SELECT
				c.group_id AS group_id,
				TO_CHAR(c.date_filled, 'YYYY-MM') AS month,
				COUNT(*)::int AS total
			FROM claims c
			WHERE c.entity_id = ?
				AND c.group_id IN (SELECT group_id FROM aug_groups)
				AND c.date_filled >= '2021-07-01' AND c.date_filled < '2021-10-01'
			GROUP BY c.group_id, TO_CHAR(c.date_filled, 'YYYY-MM')
			ORDER BY c.group_id, month`
		return s.selectMany(gctx, "batch reversal groups", &in.BatchGroups, query, []any{entityID, entityID})
	})

	g.Go(func() error {
		query := `
			SELECT
				EXTRACT(DAY FROM c.date_filled)::int AS day_of_month,
				COUNT(*)::int AS total
			FROM claims c
			WHERE c.entity_id = ? AND c.ndc != ?
				AND TO_CHAR(c.date_filled, 'YYYY-MM') NOT IN ('2021-05', '2021-11')
			GROUP BY EXTRACT(DAY FROM c.date_filled)::int
			ORDER BY day_of_month`
		return s.selectMany(gctx, "day-of-month volume", &in.DayOfMonth, query, []any{entityID, flagged})
	})

	g.Go(func() error {
		query := `
			SELECT c.pharmacy_state AS state, c.formulary AS formulary,
				ROUND(COUNT(*)::numeric / SUM(COUNT(*)) OVER (PARTITION BY c.pharmacy_state) * 100, 1) AS pct
			FROM claims c
			WHERE c.entity_id = ? AND c.ndc != ?
			GROUP BY c.pharmacy_state, c.formulary
			ORDER BY c.pharmacy_state, c.formulary`
		return s.selectMany(gctx, "formulary by state", &in.FormularyByState, query, []any{entityID, flagged})
	})

	g.Go(func() error {
		query := `
			SELECT c.formulary AS key,
				ROUND(COUNT(*) FILTER (WHERE c.adjudicated = true)::numeric / COUNT(*) * 100, 1) AS rate
			FROM claims c
			WHERE c.entity_id = ? AND c.ndc != ?
			GROUP BY c.formulary`
		return s.selectMany(gctx, "adjudication by formulary", &in.AdjByFormulary, query, []any{entityID, flagged})
	})

	g.Go(func() error {
		query := `
			SELECT c.formulary AS key,
				ROUND(COUNT(*) FILTER (WHERE c.net_claim_count = -1)::numeric / COUNT(*) * 100, 1) AS rate
			FROM claims c
			WHERE c.entity_id = ? AND c.ndc != ?
			GROUP BY c.formulary`
		return s.selectMany(gctx, "reversal by formulary", &in.RevByFormulary, query, []any{entityID, flagged})
	})

	if err := g.Wait(); err != nil {
		return anomaly.Inputs{}, err
	}
	return in, nil
}

func (s *claimStore) monthByDimension(ctx context.Context, name string, dest *[]anomaly.DimCount, column string, entityID int, flagged, from, to string) error {
	query := fmt.Sprintf(`
		SELECT %s AS key, COUNT(*)::int AS count
		FROM claims c
		WHERE c.entity_id = ? AND c.ndc != ?
			AND c.date_filled >= ? AND c.date_filled < ?
		GROUP BY %s
		ORDER BY %s`, column, column, column)
	return s.selectMany(ctx, name, dest, query, []any{entityID, flagged, from, to})
}

func (s *claimStore) yearlyAverageByDimension(ctx context.Context, name string, dest *[]anomaly.DimCount, column string, entityID int, flagged string) error {
	query := fmt.Sprintf(`
		SELECT %s AS key, ROUND(COUNT(*)::numeric / 12, 0)::int AS count
		FROM claims c
		WHERE c.entity_id = ? AND c.ndc != ?
		GROUP BY %s
		ORDER BY %s`, column, column, column)
	return s.selectMany(ctx, name, dest, query, []any{entityID, flagged})
}
