package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"adoptdash/internal"
	"adoptdash/internal/config"
	"adoptdash/internal/container"
	"adoptdash/ui"
)

func main() {
	logger := internal.DefaultLogger

	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		logger.Debug("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		logger.Error("Failed to load configuration: %v", err)
		os.Exit(1)
	}
	logger = internal.NewLogger(os.Stderr, internal.ParseLogLevel(appConfig.Log.Level))
	gin.SetMode(appConfig.Server.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appContainer, err := container.New(ctx, appConfig, logger)
	if err != nil {
		logger.Error("Failed to create application container: %v", err)
		os.Exit(1)
	}
	defer appContainer.Shutdown()

	server, err := ui.NewServer(appContainer.Dashboard, ui.ServerOptions{
		Logger:         logger,
		Metrics:        appContainer.Metrics,
		Renderer:       appContainer.Renderer,
		MetricsEnabled: appConfig.Metrics.Enabled,
	})
	if err != nil {
		logger.Error("Failed to initialize server: %v", err)
		os.Exit(1)
	}

	// Warm the cache so the first page view does not pay for parsing. A
	// failure is kept by the service and shown on the dashboard.
	go func() {
		if _, err := appContainer.Dashboard.Dataset(ctx); err != nil {
			logger.Warn("Dataset not available yet: %v", err)
		}
	}()

	httpServer := &http.Server{
		Addr:    ":" + appConfig.Server.Port,
		Handler: server.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting adoption dashboard on http://localhost:%s", appConfig.Server.Port)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed: %v", err)
		}
	case <-ctx.Done():
		logger.Info("Shutting down (timeout %s)", appConfig.Server.ShutdownTimeout)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), appConfig.Server.ShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("Graceful shutdown failed: %v", err)
		}
	}
}
