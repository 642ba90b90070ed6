package ports

import (
	"context"

	"adoptdash/domain/adoption"
	"adoptdash/domain/stats"
)

// ReaderPort provides read-only access to dashboard computations for UI/API.
// Nothing behind it writes; every call recomputes from the cached dataset.
type ReaderPort interface {
	Options(ctx context.Context) (adoption.Options, error)
	Report(ctx context.Context, q stats.Query) (*stats.Report, error)
	Charts(ctx context.Context, q stats.Query) (stats.ChartSet, error)

	Summary(ctx context.Context, f adoption.Filter) (stats.Summary, error)
	Probability(ctx context.Context, q stats.Query) (stats.ProbabilityEstimate, error)
	Ranking(ctx context.Context, q stats.Query) (stats.Ranking, error)
	Trend(ctx context.Context, q stats.Query) ([]stats.TrendSeries, error)
	Correlation(ctx context.Context, f adoption.Filter) (stats.CorrelationMatrix, error)
	Distribution(ctx context.Context, q stats.Query) (stats.Distribution, error)
}
