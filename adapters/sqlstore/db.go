// Package sqlstore keeps adoption observations in a PostgreSQL or SQLite
// table and serves them back as a dataset source.
package sqlstore

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"adoptdash/internal/errors"
)

// Supported driver names.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// DefaultTable holds the observations.
const DefaultTable = "observations"

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func init() {
	// modernc registers as "sqlite", which sqlx does not know by name.
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

// ParseDSN maps a data source URL to a driver and its DSN:
// postgres://... and postgresql://... use lib/pq, sqlite://path uses modernc.
func ParseDSN(raw string) (driver, dsn string, err error) {
	switch {
	case strings.HasPrefix(raw, "postgres://"), strings.HasPrefix(raw, "postgresql://"):
		return DriverPostgres, raw, nil
	case strings.HasPrefix(raw, "sqlite://"):
		path := strings.TrimPrefix(raw, "sqlite://")
		if path == "" {
			return "", "", errors.InvalidInput("sqlite URL has no path: " + raw)
		}
		return DriverSQLite, path, nil
	default:
		return "", "", errors.InvalidInput("unsupported database URL: " + raw)
	}
}

// Open connects and pings the database.
func Open(ctx context.Context, driver, dsn string) (*sqlx.DB, error) {
	if driver != DriverPostgres && driver != DriverSQLite {
		return nil, errors.InvalidInput("unsupported driver: " + driver)
	}
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, errors.DatabaseError(err, "failed to open %s database", driver)
	}
	if driver == DriverSQLite {
		// One writer at a time; the pool would otherwise see SQLITE_BUSY.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(10)
		db.SetConnMaxIdleTime(5 * time.Minute)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, errors.DatabaseError(err, "failed to connect to %s database", driver)
	}
	return db, nil
}

func checkTable(table string) error {
	if !identifier.MatchString(table) {
		return errors.InvalidInput("invalid table name: " + table)
	}
	return nil
}
