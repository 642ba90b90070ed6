// Package container wires the dashboard dependencies shared by every binary.
package container

import (
	"context"
	"io"

	"adoptdash/adapters/charts"
	"adoptdash/adapters/source"
	"adoptdash/internal"
	"adoptdash/internal/analysis"
	"adoptdash/internal/config"
	"adoptdash/internal/dashboard"
	"adoptdash/internal/errors"
	"adoptdash/internal/metrics"
	"adoptdash/ports"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Metrics is nil when METRICS_ENABLED is false.
	Metrics *metrics.Recorder

	Source    ports.DatasetSource
	Dashboard *dashboard.Service
	Renderer  *charts.Renderer

	closer io.Closer
}

// New builds the container. Connecting to a database source happens here;
// reading the dataset is deferred to the first dashboard request.
func New(ctx context.Context, cfg *config.Config, logger *internal.Logger) (*Container, error) {
	if cfg == nil {
		return nil, errors.ConfigInvalid("config cannot be nil")
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}

	c := &Container{Config: cfg, Logger: logger, Renderer: charts.NewRenderer()}
	if cfg.Metrics.Enabled {
		c.Metrics = metrics.New()
	}

	src, closer, err := source.New(ctx, cfg, logger)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create data source")
	}
	c.Source = src
	c.closer = closer

	baseline, err := analysis.ParseBaseline(cfg.Analysis.Baseline)
	if err != nil {
		c.Shutdown()
		return nil, err
	}

	c.Dashboard, err = dashboard.NewService(src, dashboard.Options{
		Threshold:       cfg.Analysis.Threshold,
		Baseline:        baseline,
		ConclusionsFile: cfg.Analysis.ConclusionsFile,
		Logger:          logger,
		Metrics:         c.Metrics,
	})
	if err != nil {
		c.Shutdown()
		return nil, err
	}

	logger.Info("[Container] data source %s (threshold %.1f, baseline %s)", src.Describe(), cfg.Analysis.Threshold, baseline)
	return c, nil
}

// Shutdown releases the data source connections.
func (c *Container) Shutdown() error {
	if c.closer == nil {
		return nil
	}
	return c.closer.Close()
}
