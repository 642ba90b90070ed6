package ui

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"adoptdash/internal"
	"adoptdash/internal/metrics"
	"adoptdash/ports"
	"adoptdash/ui/middleware"
)

// App is the read-only JSON API served by chi, without HTML pages or charts.
type App struct {
	router  *chi.Mux
	reader  ports.ReaderPort
	logger  *internal.Logger
	metrics *metrics.Recorder
}

// Config holds API application settings
type Config struct {
	Logger         *internal.Logger
	Metrics        *metrics.Recorder
	MetricsEnabled bool
}

// NewApp creates the API application
func NewApp(reader ports.ReaderPort, config Config) *App {
	if config.Logger == nil {
		config.Logger = internal.DefaultLogger
	}
	app := &App{
		router:  chi.NewRouter(),
		reader:  reader,
		logger:  config.Logger,
		metrics: config.Metrics,
	}

	app.setupMiddleware()
	app.setupRoutes(config.MetricsEnabled)
	return app
}

// Handler exposes the router for http.Server and tests.
func (a *App) Handler() http.Handler {
	return a.router
}

func (a *App) setupMiddleware() {
	a.router.Use(chimiddleware.RequestID)
	a.router.Use(chimiddleware.Recoverer)
	a.router.Use(middleware.Instrument(a.metrics, a.logger))
	a.router.Use(chimiddleware.Compress(5))
}

func (a *App) setupRoutes(withMetrics bool) {
	a.router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		a.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	for _, r := range apiRoutes(a.reader) {
		a.router.Get(r.path, a.serveJSON(r.handler))
	}
	if withMetrics {
		a.router.Handle("/metrics", a.metrics.Handler())
	}
}

func (a *App) serveJSON(h endpoint) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := h(r.Context(), r.URL.Query())
		if err != nil {
			if statusFor(err) >= http.StatusInternalServerError {
				a.logger.Error("[API] %s failed: %v", r.URL.Path, err)
			}
			a.writeJSON(w, statusFor(err), newErrorBody(err))
			return
		}
		a.writeJSON(w, http.StatusOK, body)
	}
}

func (a *App) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		a.logger.Warn("[API] failed to write response: %v", err)
	}
}
