package sqlstore

import (
	"context"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"

	"adoptdash/domain/adoption"
	"adoptdash/domain/core"
	"adoptdash/internal"
	"adoptdash/internal/errors"
	"adoptdash/ports"
)

// Source serves the observations table as a dataset
type Source struct {
	repo        ports.ObservationRepository
	describe    string
	periodOrder []string
	logger      *internal.Logger
}

// NewSource wraps a repository. describe names the database for logs.
func NewSource(repo ports.ObservationRepository, describe string, periodOrder []string, logger *internal.Logger) *Source {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Source{repo: repo, describe: describe, periodOrder: periodOrder, logger: logger}
}

// OpenSource connects to rawURL and serves table.
func OpenSource(ctx context.Context, rawURL, table string, periodOrder []string, logger *internal.Logger) (*Source, *sqlx.DB, error) {
	driver, dsn, err := ParseDSN(rawURL)
	if err != nil {
		return nil, nil, err
	}
	db, err := Open(ctx, driver, dsn)
	if err != nil {
		return nil, nil, err
	}
	repo, err := NewObservationRepository(db, table)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return NewSource(repo, driver+":"+table, periodOrder, logger), db, nil
}

// Load reads the whole table. A missing table is reported as missing input.
func (s *Source) Load(ctx context.Context) (*adoption.Dataset, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		if isMissingTable(err) {
			return nil, errors.MissingInputFile(s.describe, err)
		}
		return nil, err
	}
	s.logger.Debug("[SQLSource] %s: %d rows", s.describe, len(rows))
	return adoption.NewDataset(rows, adoption.Meta{
		Source:      s.describe,
		Hash:        fingerprint(rows),
		PeriodOrder: s.periodOrder,
	}), nil
}

// Describe names the driver and table.
func (s *Source) Describe() string { return s.describe }

func isMissingTable(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "no such table") || // sqlite
		(strings.Contains(msg, "relation") && strings.Contains(msg, "does not exist")) // postgres
}

// fingerprint hashes a canonical text rendering of the rows, so identical
// table contents always get the same dataset ID.
func fingerprint(rows []adoption.Observation) core.Hash {
	var b strings.Builder
	for _, o := range rows {
		b.WriteString(o.Period)
		b.WriteByte(0)
		b.WriteString(o.Technology)
		for _, attr := range adoption.NumericAttributes {
			b.WriteByte(0)
			b.WriteString(strconv.FormatFloat(o.Value(attr), 'g', -1, 64))
		}
		b.WriteByte('\n')
	}
	return core.NewHash([]byte(b.String()))
}
