package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"math"

	"github.com/jmoiron/sqlx"

	"adoptdash/domain/adoption"
	"adoptdash/internal/errors"
	"adoptdash/ports"
)

// observationRow is the table shape. Missing measures are stored as NULL.
type observationRow struct {
	Position             int             `db:"position"`
	Period               string          `db:"period"`
	Technology           string          `db:"technology"`
	AdoptingCompanies    sql.NullFloat64 `db:"adopting_companies"`
	AdoptionRatePercent  sql.NullFloat64 `db:"adoption_rate_percent"`
	InvestmentMillions   sql.NullFloat64 `db:"investment_millions"`
	TrainedProfessionals sql.NullFloat64 `db:"trained_professionals"`
	AverageSatisfaction  sql.NullFloat64 `db:"average_satisfaction"`
	ImplementationMonths sql.NullFloat64 `db:"implementation_months"`
}

func toNull(v float64) sql.NullFloat64 {
	if math.IsNaN(v) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

func fromNull(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}

func toRow(position int, o adoption.Observation) observationRow {
	return observationRow{
		Position:             position,
		Period:               o.Period,
		Technology:           o.Technology,
		AdoptingCompanies:    toNull(o.AdoptingCompanies),
		AdoptionRatePercent:  toNull(o.AdoptionRatePercent),
		InvestmentMillions:   toNull(o.InvestmentMillions),
		TrainedProfessionals: toNull(o.TrainedProfessionals),
		AverageSatisfaction:  toNull(o.AverageSatisfaction),
		ImplementationMonths: toNull(o.ImplementationMonths),
	}
}

func (r observationRow) observation() adoption.Observation {
	return adoption.Observation{
		Period:               r.Period,
		Technology:           r.Technology,
		AdoptingCompanies:    fromNull(r.AdoptingCompanies),
		AdoptionRatePercent:  fromNull(r.AdoptionRatePercent),
		InvestmentMillions:   fromNull(r.InvestmentMillions),
		TrainedProfessionals: fromNull(r.TrainedProfessionals),
		AverageSatisfaction:  fromNull(r.AverageSatisfaction),
		ImplementationMonths: fromNull(r.ImplementationMonths),
	}
}

// observationRepository implements ports.ObservationRepository
type observationRepository struct {
	db    *sqlx.DB
	table string
}

// NewObservationRepository creates a repository over table.
func NewObservationRepository(db *sqlx.DB, table string) (ports.ObservationRepository, error) {
	if table == "" {
		table = DefaultTable
	}
	if err := checkTable(table); err != nil {
		return nil, err
	}
	return &observationRepository{db: db, table: table}, nil
}

// Migrate creates the table and its indexes
func (r *observationRepository) Migrate(ctx context.Context) error {
	return NewRunner(r.table).Run(ctx, r.db)
}

// Replace deletes every row and inserts rows in order, atomically. Rows
// without a period or technology are rejected before anything is written.
func (r *observationRepository) Replace(ctx context.Context, rows []adoption.Observation) error {
	for i, o := range rows {
		if o.Period == "" || o.Technology == "" {
			return errors.ValidationError(fmt.Sprintf("row %d: period and technology are required", i))
		}
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.DatabaseError(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s`, r.table)); err != nil {
		return errors.DatabaseError(err, "failed to clear %s", r.table)
	}

	query := fmt.Sprintf(`INSERT INTO %s (
		position, period, technology, adopting_companies, adoption_rate_percent,
		investment_millions, trained_professionals, average_satisfaction, implementation_months
	) VALUES (
		:position, :period, :technology, :adopting_companies, :adoption_rate_percent,
		:investment_millions, :trained_professionals, :average_satisfaction, :implementation_months
	)`, r.table)

	for i, o := range rows {
		if _, err := tx.NamedExecContext(ctx, query, toRow(i, o)); err != nil {
			return errors.DatabaseError(err, "failed to insert row %d", i)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.DatabaseError(err, "failed to commit")
	}
	return nil
}

// List returns every observation in insertion order
func (r *observationRepository) List(ctx context.Context) ([]adoption.Observation, error) {
	query := fmt.Sprintf(`SELECT
		position, period, technology, adopting_companies, adoption_rate_percent,
		investment_millions, trained_professionals, average_satisfaction, implementation_months
	FROM %s ORDER BY position`, r.table)

	var rows []observationRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, errors.DatabaseError(err, "failed to list %s", r.table)
	}

	out := make([]adoption.Observation, len(rows))
	for i, row := range rows {
		out[i] = row.observation()
	}
	return out, nil
}
