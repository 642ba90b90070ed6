package sqlstore

import (
	"context"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adoptdash/domain/adoption"
	"adoptdash/internal"
	"adoptdash/internal/errors"
)

func openTestDB(t *testing.T) string {
	t.Helper()
	return "sqlite://" + filepath.Join(t.TempDir(), "adoption.db")
}

func sampleRows() []adoption.Observation {
	return []adoption.Observation{
		{Period: "Q2_2023", Technology: "IoT", AdoptingCompanies: 120, AdoptionRatePercent: 35.5, InvestmentMillions: 12.25, TrainedProfessionals: 300, AverageSatisfaction: 7.8, ImplementationMonths: 6},
		{Period: "Q1_2023", Technology: "IoT", AdoptingCompanies: 100, AdoptionRatePercent: math.NaN(), InvestmentMillions: 10.5, TrainedProfessionals: 250, AverageSatisfaction: 7.5, ImplementationMonths: 6.5},
	}
}

func TestParseDSN(t *testing.T) {
	tests := []struct {
		raw    string
		driver string
		dsn    string
		ok     bool
	}{
		{"postgres://u:p@localhost:5432/adopt?sslmode=disable", DriverPostgres, "postgres://u:p@localhost:5432/adopt?sslmode=disable", true},
		{"postgresql://localhost/adopt", DriverPostgres, "postgresql://localhost/adopt", true},
		{"sqlite:///tmp/a.db", DriverSQLite, "/tmp/a.db", true},
		{"sqlite://", "", "", false},
		{"mysql://localhost/adopt", "", "", false},
	}
	for _, tt := range tests {
		driver, dsn, err := ParseDSN(tt.raw)
		if !tt.ok {
			assert.Error(t, err, tt.raw)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.driver, driver)
		assert.Equal(t, tt.dsn, dsn)
	}
}

func TestRepository_ReplaceAndList(t *testing.T) {
	ctx := context.Background()
	driver, dsn, err := ParseDSN(openTestDB(t))
	require.NoError(t, err)
	db, err := Open(ctx, driver, dsn)
	require.NoError(t, err)
	defer db.Close()

	repo, err := NewObservationRepository(db, "")
	require.NoError(t, err)
	require.NoError(t, repo.Migrate(ctx))
	require.NoError(t, repo.Migrate(ctx), "migrations are idempotent")

	require.NoError(t, repo.Replace(ctx, sampleRows()))
	require.NoError(t, repo.Replace(ctx, sampleRows()), "replace does not duplicate")

	rows, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Q2_2023", rows[0].Period)
	assert.Equal(t, 12.25, rows[0].InvestmentMillions)
	assert.True(t, math.IsNaN(rows[1].AdoptionRatePercent))
}

func TestNewObservationRepository_RejectsBadTable(t *testing.T) {
	_, err := NewObservationRepository(nil, "obs; DROP TABLE x")
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestSource_Load(t *testing.T) {
	ctx := context.Background()
	src, db, err := OpenSource(ctx, openTestDB(t), DefaultTable, nil, internal.NewDiscardLogger())
	require.NoError(t, err)
	defer db.Close()

	_, err = src.Load(ctx)
	require.Error(t, err)
	assert.Equal(t, errors.CodeMissingInputFile, errors.GetCode(err))

	repo, err := NewObservationRepository(db, DefaultTable)
	require.NoError(t, err)
	require.NoError(t, repo.Migrate(ctx))
	require.NoError(t, repo.Replace(ctx, sampleRows()))

	ds, err := src.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, ds.Len())
	assert.Equal(t, []string{"Q1_2023", "Q2_2023"}, ds.Periods())
	assert.Equal(t, "sqlite:observations", src.Describe())

	again, err := src.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, ds.ID(), again.ID())
}

func TestRepository_ListWithoutTable(t *testing.T) {
	ctx := context.Background()
	driver, dsn, err := ParseDSN(openTestDB(t))
	require.NoError(t, err)
	db, err := Open(ctx, driver, dsn)
	require.NoError(t, err)
	defer db.Close()

	repo, err := NewObservationRepository(db, "")
	require.NoError(t, err)

	_, err = repo.List(ctx)
	require.Error(t, err)
	assert.Equal(t, errors.CodeDatabaseError, errors.GetCode(err))
}

func TestRepository_ReplaceRejectsIncompleteRows(t *testing.T) {
	ctx := context.Background()
	driver, dsn, err := ParseDSN(openTestDB(t))
	require.NoError(t, err)
	db, err := Open(ctx, driver, dsn)
	require.NoError(t, err)
	defer db.Close()

	repo, err := NewObservationRepository(db, "")
	require.NoError(t, err)
	require.NoError(t, repo.Migrate(ctx))
	require.NoError(t, repo.Replace(ctx, sampleRows()))

	bad := append(sampleRows(), adoption.Observation{Period: "Q3_2023"})
	err = repo.Replace(ctx, bad)
	require.Error(t, err)
	assert.Equal(t, errors.CodeValidationError, errors.GetCode(err))
	assert.Contains(t, err.Error(), "row 2")

	rows, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, rows, 2, "rejected replace leaves the table as it was")
}
