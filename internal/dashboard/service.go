// Package dashboard serves the dashboard computations over a cached dataset.
package dashboard

import (
	"context"
	"math"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"adoptdash/domain/adoption"
	"adoptdash/domain/core"
	"adoptdash/domain/stats"
	"adoptdash/internal"
	"adoptdash/internal/analysis"
	"adoptdash/internal/errors"
	"adoptdash/internal/metrics"
	"adoptdash/ports"
)

// Options configures a Service.
type Options struct {
	Threshold       float64
	Baseline        stats.Baseline
	ConclusionsFile string
	Logger          *internal.Logger
	Metrics         *metrics.Recorder
}

// Service implements ports.ReaderPort.
//
// The dataset is loaded once. Concurrent first calls share one load, and the
// result stays cached for the life of the process. A load that fails because
// the input is missing or malformed is cached too and returned to every later
// caller; other failures (cancellation, network) are retried on the next call.
type Service struct {
	source    ports.DatasetSource
	threshold float64
	baseline  stats.Baseline
	logger    *internal.Logger
	metrics   *metrics.Recorder

	conclusionsMD   string
	conclusionsHTML string

	group   singleflight.Group
	mu      sync.RWMutex
	cache   map[core.DatasetID]*adoption.Dataset
	current *adoption.Dataset
	loadErr error
}

var _ ports.ReaderPort = (*Service)(nil)

// NewService creates a service. It fails only when the conclusions file
// cannot be read.
func NewService(source ports.DatasetSource, opts Options) (*Service, error) {
	if opts.Logger == nil {
		opts.Logger = internal.DefaultLogger
	}
	if opts.Baseline == "" {
		opts.Baseline = stats.BaselineMean
	}
	md, rendered, err := LoadConclusions(opts.ConclusionsFile)
	if err != nil {
		return nil, err
	}
	return &Service{
		source:          source,
		threshold:       opts.Threshold,
		baseline:        opts.Baseline,
		logger:          opts.Logger,
		metrics:         opts.Metrics,
		conclusionsMD:   md,
		conclusionsHTML: rendered,
		cache:           make(map[core.DatasetID]*adoption.Dataset),
	}, nil
}

// Source describes where the dataset comes from.
func (s *Service) Source() string { return s.source.Describe() }

// Threshold returns the configured adoption threshold.
func (s *Service) Threshold() float64 { return s.threshold }

// ConclusionsMarkdown returns the conclusions text before rendering.
func (s *Service) ConclusionsMarkdown() string { return s.conclusionsMD }

// Dataset returns the cached dataset, loading it on first use.
func (s *Service) Dataset(ctx context.Context) (*adoption.Dataset, error) {
	s.mu.RLock()
	ds, loadErr := s.current, s.loadErr
	s.mu.RUnlock()
	if ds != nil {
		return ds, nil
	}
	if loadErr != nil {
		return nil, loadErr
	}

	v, err, _ := s.group.Do("dataset", func() (interface{}, error) {
		return s.load(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.(*adoption.Dataset), nil
}

func (s *Service) load(ctx context.Context) (*adoption.Dataset, error) {
	// A caller that lost the race may arrive after the winner stored the result.
	s.mu.RLock()
	ds, loadErr := s.current, s.loadErr
	s.mu.RUnlock()
	if ds != nil || loadErr != nil {
		return ds, loadErr
	}

	start := time.Now()
	ds, err := s.source.Load(ctx)
	if err == nil && ds == nil {
		err = errors.InternalError("source " + s.source.Describe() + " returned no dataset")
	}
	s.metrics.Observe("dataset_load", err == nil, time.Since(start))
	if err != nil {
		if errors.HasCode(err, errors.CodeMissingInputFile) || errors.HasCode(err, errors.CodeDataFormat) {
			s.logger.Error("[Dashboard] dataset unavailable from %s: %v", s.source.Describe(), err)
			s.mu.Lock()
			s.loadErr = err
			s.mu.Unlock()
		} else {
			s.logger.Warn("[Dashboard] dataset load from %s failed, will retry: %v", s.source.Describe(), err)
		}
		return nil, err
	}

	s.mu.Lock()
	if cached, ok := s.cache[ds.ID()]; ok {
		ds = cached
	} else {
		s.cache[ds.ID()] = ds
	}
	s.current = ds
	s.mu.Unlock()

	s.metrics.SetDatasetRows(ds.Len())
	s.logger.Info("[Dashboard] dataset %s loaded from %s (%d rows)", ds.ID().String(), s.source.Describe(), ds.Len())
	return ds, nil
}

// view loads the dataset and applies the filter.
func (s *Service) view(ctx context.Context, f adoption.Filter) (adoption.View, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return adoption.View{}, err
	}
	return ds.Filter(f), nil
}

// normalize fills query defaults: the adoption rate as metric, the first
// selected technology for the trend, and the configured probability settings.
func (s *Service) normalize(q stats.Query, view adoption.View) (stats.Query, error) {
	if q.Metric == "" {
		q.Metric = adoption.AdoptionRatePercent
	}
	if !q.Metric.IsNumeric() {
		return q, errors.InvalidInput("unknown metric: " + string(q.Metric))
	}
	if q.Technology == "" {
		if len(q.Filter.Technologies) > 0 {
			q.Technology = q.Filter.Technologies[0]
		} else if techs := view.Technologies(); len(techs) > 0 {
			q.Technology = techs[0]
		}
	}
	if q.Threshold == nil {
		t := s.threshold
		q.Threshold = &t
	} else if math.IsNaN(*q.Threshold) || math.IsInf(*q.Threshold, 0) {
		return q, errors.InvalidInput("threshold must be a finite number")
	}
	if q.Baseline == "" {
		q.Baseline = s.baseline
	}
	return q, nil
}

func (s *Service) estimateOptions(q stats.Query) analysis.EstimateOptions {
	return analysis.EstimateOptions{Threshold: *q.Threshold, Baseline: q.Baseline}
}

// Options lists the filter choices.
func (s *Service) Options(ctx context.Context) (adoption.Options, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return adoption.Options{}, err
	}
	return ds.Options(), nil
}

// Report computes every dashboard panel for q.
func (s *Service) Report(ctx context.Context, q stats.Query) (*stats.Report, error) {
	start := time.Now()
	report, err := s.report(ctx, q)
	s.metrics.Observe("report", err == nil, time.Since(start))
	return report, err
}

func (s *Service) report(ctx context.Context, q stats.Query) (*stats.Report, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return nil, err
	}
	view := ds.Filter(q.Filter)
	q, err = s.normalize(q, view)
	if err != nil {
		return nil, err
	}

	summary, err := analysis.Describe(view, nil)
	if err != nil {
		return nil, err
	}
	charts, err := s.chartSet(view, q)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("[Dashboard] report for %d/%d rows (metric %s, technology %q)", view.Len(), ds.Len(), q.Metric, q.Technology)
	return &stats.Report{
		DatasetID:   ds.ID().String(),
		Source:      ds.Source(),
		Query:       q,
		KPIs:        analysis.KPIs(view),
		Summary:     summary,
		Probability: analysis.Estimate(view, s.estimateOptions(q)),
		Charts:      charts,
		Conclusions: s.conclusionsHTML,
		GeneratedAt: time.Now().UTC(),
	}, nil
}

func (s *Service) chartSet(view adoption.View, q stats.Query) (stats.ChartSet, error) {
	hist, err := analysis.Histogram(view, adoption.AdoptionRatePercent, analysis.DefaultBins)
	if err != nil {
		return stats.ChartSet{}, err
	}
	box, err := analysis.BoxByTechnology(view, adoption.AdoptionRatePercent)
	if err != nil {
		return stats.ChartSet{}, err
	}
	ranking, err := analysis.RankByTechnology(view, q.Metric)
	if err != nil {
		return stats.ChartSet{}, err
	}
	scatter, err := analysis.Scatter(view, adoption.InvestmentMillions, adoption.AdoptionRatePercent)
	if err != nil {
		return stats.ChartSet{}, err
	}
	corr, err := analysis.Correlate(view, nil)
	if err != nil {
		return stats.ChartSet{}, err
	}

	var trend []stats.TrendSeries
	title := "Adoption rate over time"
	if q.Technology != "" {
		trend = []stats.TrendSeries{analysis.Trend(view, q.Technology)}
		title += ": " + q.Technology
	}
	return stats.ChartSet{
		TrendTitle:  title,
		Trend:       trend,
		Histogram:   hist,
		Box:         box,
		Ranking:     ranking,
		Scatter:     scatter,
		Correlation: corr,
	}, nil
}

// Charts returns the chart data for q.
func (s *Service) Charts(ctx context.Context, q stats.Query) (stats.ChartSet, error) {
	view, err := s.view(ctx, q.Filter)
	if err != nil {
		return stats.ChartSet{}, err
	}
	q, err = s.normalize(q, view)
	if err != nil {
		return stats.ChartSet{}, err
	}
	return s.chartSet(view, q)
}

// Summary describes every numeric attribute of the filtered view.
func (s *Service) Summary(ctx context.Context, f adoption.Filter) (stats.Summary, error) {
	view, err := s.view(ctx, f)
	if err != nil {
		return stats.Summary{}, err
	}
	return analysis.Describe(view, nil)
}

// Probability estimates both adoption probabilities.
func (s *Service) Probability(ctx context.Context, q stats.Query) (stats.ProbabilityEstimate, error) {
	view, err := s.view(ctx, q.Filter)
	if err != nil {
		return stats.ProbabilityEstimate{}, err
	}
	q, err = s.normalize(q, view)
	if err != nil {
		return stats.ProbabilityEstimate{}, err
	}
	return analysis.Estimate(view, s.estimateOptions(q)), nil
}

// Ranking ranks technologies by the query metric.
func (s *Service) Ranking(ctx context.Context, q stats.Query) (stats.Ranking, error) {
	view, err := s.view(ctx, q.Filter)
	if err != nil {
		return stats.Ranking{}, err
	}
	q, err = s.normalize(q, view)
	if err != nil {
		return stats.Ranking{}, err
	}
	return analysis.RankByTechnology(view, q.Metric)
}

// Trend returns the series of q.Technology, or of every technology when the
// query names none.
func (s *Service) Trend(ctx context.Context, q stats.Query) ([]stats.TrendSeries, error) {
	view, err := s.view(ctx, q.Filter)
	if err != nil {
		return nil, err
	}
	if q.Technology != "" {
		return []stats.TrendSeries{analysis.Trend(view, q.Technology)}, nil
	}
	return analysis.TrendAll(view), nil
}

// Correlation returns the correlation matrix of every numeric attribute.
func (s *Service) Correlation(ctx context.Context, f adoption.Filter) (stats.CorrelationMatrix, error) {
	view, err := s.view(ctx, f)
	if err != nil {
		return stats.CorrelationMatrix{}, err
	}
	return analysis.Correlate(view, nil)
}

// Distribution bins and boxes the query metric.
func (s *Service) Distribution(ctx context.Context, q stats.Query) (stats.Distribution, error) {
	view, err := s.view(ctx, q.Filter)
	if err != nil {
		return stats.Distribution{}, err
	}
	q, err = s.normalize(q, view)
	if err != nil {
		return stats.Distribution{}, err
	}
	hist, err := analysis.Histogram(view, q.Metric, analysis.DefaultBins)
	if err != nil {
		return stats.Distribution{}, err
	}
	box, err := analysis.BoxByTechnology(view, q.Metric)
	if err != nil {
		return stats.Distribution{}, err
	}
	return stats.Distribution{Histogram: hist, Box: box}, nil
}
