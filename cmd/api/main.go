package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"adoptdash/internal"
	"adoptdash/internal/config"
	"adoptdash/internal/container"
	"adoptdash/ui"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		internal.DefaultLogger.Error("Failed to load configuration: %v", err)
		os.Exit(1)
	}
	logger := internal.NewLogger(os.Stderr, internal.ParseLogLevel(cfg.Log.Level))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, err := container.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to create application container: %v", err)
		os.Exit(1)
	}
	defer c.Shutdown()

	app := ui.NewApp(c.Dashboard, ui.Config{
		Logger:         logger,
		Metrics:        c.Metrics,
		MetricsEnabled: cfg.Metrics.Enabled,
	})

	srv := &http.Server{Addr: ":" + cfg.Server.Port, Handler: app.Handler()}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Graceful shutdown failed: %v", err)
		}
	}()

	logger.Info("Starting API server on :%s", cfg.Server.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server failed: %v", err)
		os.Exit(1)
	}
}
