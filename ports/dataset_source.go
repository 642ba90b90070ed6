package ports

import (
	"context"

	"adoptdash/domain/adoption"
)

// DatasetSource loads the adoption dataset from wherever it lives (a local
// file, an object store, a SQL table). Implementations return
// errors.CodeMissingInputFile when the backing data cannot be found and
// errors.CodeDataFormat when it cannot be parsed.
type DatasetSource interface {
	Load(ctx context.Context) (*adoption.Dataset, error)
	// Describe names the source for logs and the dashboard footer.
	Describe() string
}

// ObservationRepository stores observations in a relational table.
type ObservationRepository interface {
	Migrate(ctx context.Context) error
	// Replace swaps the table contents for rows in one transaction.
	Replace(ctx context.Context, rows []adoption.Observation) error
	List(ctx context.Context) ([]adoption.Observation, error)
}
