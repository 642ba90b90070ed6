package sqlstore

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"adoptdash/internal/errors"
)

// MigrationRunner creates the observations schema
type MigrationRunner struct {
	version string
	table   string
}

// NewRunner creates a runner for table.
func NewRunner(table string) *MigrationRunner {
	return &MigrationRunner{version: "1.0.0", table: table}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all migrations in order. Every step is idempotent.
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := checkTable(r.table); err != nil {
		return err
	}
	if err := r.createObservationsTable(ctx, db); err != nil {
		return errors.Wrapf(err, "failed to create %s table", r.table)
	}
	if err := r.createIndexes(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create indexes")
	}
	return nil
}

func (r *MigrationRunner) createObservationsTable(ctx context.Context, db *sqlx.DB) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			position INTEGER PRIMARY KEY,
			period TEXT NOT NULL,
			technology TEXT NOT NULL,
			adopting_companies DOUBLE PRECISION,
			adoption_rate_percent DOUBLE PRECISION,
			investment_millions DOUBLE PRECISION,
			trained_professionals DOUBLE PRECISION,
			average_satisfaction DOUBLE PRECISION,
			implementation_months DOUBLE PRECISION
		)`, r.table)

	if _, err := db.ExecContext(ctx, query); err != nil {
		return errors.DatabaseError(err, "create table %s", r.table)
	}
	return nil
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	indexes := []string{
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_period ON %s(period)`, r.table, r.table),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_technology ON %s(technology)`, r.table, r.table),
	}
	for _, query := range indexes {
		if _, err := db.ExecContext(ctx, query); err != nil {
			return errors.DatabaseError(err, "create index on %s", r.table)
		}
	}
	return nil
}
