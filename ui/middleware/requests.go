// Package middleware instruments the dashboard HTTP surfaces.
package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"adoptdash/internal"
	"adoptdash/internal/metrics"
)

// RequestMetrics records every gin request under its route template, so
// /charts/:name is one series regardless of the chart requested.
func RequestMetrics(rec *metrics.Recorder, logger *internal.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		elapsed := time.Since(start)
		status := c.Writer.Status()
		rec.ObserveRequest(c.FullPath(), c.Request.Method, status, elapsed)
		logRequest(logger, c.Request.Method, c.Request.URL.RequestURI(), status, elapsed)
	}
}

// Instrument is the net/http flavour of RequestMetrics for chi routers.
func Instrument(rec *metrics.Recorder, logger *internal.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			route := ""
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				route = rctx.RoutePattern()
			}
			elapsed := time.Since(start)
			rec.ObserveRequest(route, r.Method, status, elapsed)
			logRequest(logger, r.Method, r.URL.RequestURI(), status, elapsed)
		})
	}
}

func logRequest(logger *internal.Logger, method, uri string, status int, elapsed time.Duration) {
	switch {
	case status >= 500:
		logger.Warn("[HTTP] %s %s -> %d (%s)", method, uri, status, elapsed)
	default:
		logger.Debug("[HTTP] %s %s -> %d (%s)", method, uri, status, elapsed)
	}
}
