package migration

import (
	"context"

	"claimsight/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner handles database schema migrations
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createEntitiesTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create entities table")
	}

	if err := r.createDrugInfoTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create drug_info table")
	}

	if err := r.createClaimsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create claims table")
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create indexes")
	}

	if err := r.insertDefaultEntity(ctx, db); err != nil {
		return errors.Wrap(err, "failed to insert default entity")
	}

	return nil
}

func (r *MigrationRunner) createEntitiesTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS entities (
			id SERIAL PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			description TEXT,
			created_at TIMESTAMP DEFAULT NOW()
		)
	`)
	return err
}

func (r *MigrationRunner) createDrugInfoTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS drug_info (
			ndc VARCHAR(20) PRIMARY KEY,
			drug_name VARCHAR(255),
			label_name TEXT,
			mony CHAR(1),
			manufacturer_name VARCHAR(255)
		)
	`)
	return err
}

// No FK from claims.ndc to drug_info: a small set of claim NDCs (OTC and
// non-drug items) has no drug_info row.
func (r *MigrationRunner) createClaimsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS claims (
			id SERIAL PRIMARY KEY,
			entity_id INTEGER NOT NULL REFERENCES entities(id),
			adjudicated BOOLEAN,
			formulary VARCHAR(20),
			date_filled DATE,
			ndc VARCHAR(20),
			days_supply INTEGER,
			group_id VARCHAR(50),
			pharmacy_state CHAR(2),
			mail_retail CHAR(1),
			net_claim_count SMALLINT
		)
	`)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_drug_mony ON drug_info(mony)`,
		`CREATE INDEX IF NOT EXISTS idx_drug_manufacturer ON drug_info(manufacturer_name)`,
		`CREATE INDEX IF NOT EXISTS idx_drug_name ON drug_info(drug_name)`,
		`CREATE INDEX IF NOT EXISTS idx_claims_entity ON claims(entity_id)`,
		`CREATE INDEX IF NOT EXISTS idx_claims_date ON claims(date_filled)`,
		`CREATE INDEX IF NOT EXISTS idx_claims_state ON claims(pharmacy_state)`,
		`CREATE INDEX IF NOT EXISTS idx_claims_formulary ON claims(formulary)`,
		`CREATE INDEX IF NOT EXISTS idx_claims_ndc ON claims(ndc)`,
		`CREATE INDEX IF NOT EXISTS idx_claims_group ON claims(group_id)`,
		`CREATE INDEX IF NOT EXISTS idx_claims_adjudicated ON claims(adjudicated)`,
		`CREATE INDEX IF NOT EXISTS idx_claims_entity_date ON claims(entity_id, date_filled)`,
		`CREATE INDEX IF NOT EXISTS idx_claims_entity_state ON claims(entity_id, pharmacy_state)`,
	}
	for _, stmt := range indexes {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (r *MigrationRunner) insertDefaultEntity(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO entities (id, name, description)
		VALUES (1, 'Pharmacy A', '2021 long-term care pharmacy claims')
		ON CONFLICT (id) DO NOTHING
	`)
	if err != nil {
		return err
	}
	// Keep the serial sequence ahead of manually inserted ids.
	_, err = db.ExecContext(ctx, `
		SELECT setval('entities_id_seq', GREATEST((SELECT MAX(id) FROM entities), 1))
	`)
	return err
}
