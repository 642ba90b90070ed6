// Package source picks the dataset source named by DATA_SOURCE.
package source

import (
	"context"
	"io"
	"strings"

	"adoptdash/adapters/s3source"
	"adoptdash/adapters/sqlstore"
	"adoptdash/adapters/tabular"
	"adoptdash/internal"
	"adoptdash/internal/config"
	"adoptdash/ports"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// TabularConfig converts the data settings for the file readers.
func TabularConfig(cfg config.DataConfig) tabular.Config {
	return tabular.Config{
		Delimiter:   cfg.Delimiter,
		Decimal:     cfg.Decimal,
		Encoding:    cfg.Encoding,
		Sheet:       cfg.Sheet,
		PeriodOrder: cfg.PeriodOrder,
	}
}

// New returns the source for cfg.Data.Source: s3:// URLs read an object,
// postgres:// and sqlite:// URLs read a table, anything else is a file path.
// The closer releases database connections and is never nil.
func New(ctx context.Context, cfg *config.Config, logger *internal.Logger) (ports.DatasetSource, io.Closer, error) {
	raw := cfg.Data.Source
	switch {
	case strings.HasPrefix(raw, "s3://"):
		src, err := s3source.New(ctx, raw, s3source.Config{
			Region:    cfg.S3.Region,
			Endpoint:  cfg.S3.Endpoint,
			PathStyle: cfg.S3.PathStyle,
		}, TabularConfig(cfg.Data), logger)
		if err != nil {
			return nil, nil, err
		}
		return src, nopCloser{}, nil

	case strings.HasPrefix(raw, "postgres://"), strings.HasPrefix(raw, "postgresql://"), strings.HasPrefix(raw, "sqlite://"):
		src, db, err := sqlstore.OpenSource(ctx, raw, cfg.Data.Table, cfg.Data.PeriodOrder, logger)
		if err != nil {
			return nil, nil, err
		}
		return src, db, nil

	default:
		return tabular.NewFileSource(raw, TabularConfig(cfg.Data), logger), nopCloser{}, nil
	}
}
