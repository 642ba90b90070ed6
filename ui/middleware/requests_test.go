package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adoptdash/internal"
	"adoptdash/internal/metrics"
)

func TestRequestMetrics_UsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := metrics.New()

	r := gin.New()
	r.Use(RequestMetrics(rec, internal.NewDiscardLogger()))
	r.GET("/charts/:name", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	for _, name := range []string{"trend.png", "histogram.svg"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/charts/"+name, nil))
		require.Equal(t, http.StatusNoContent, w.Code)
	}

	count, err := testutil.GatherAndCount(rec.Registry(), "adoptdash_http_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestInstrument_Chi(t *testing.T) {
	rec := metrics.New()

	r := chi.NewRouter()
	r.Use(Instrument(rec, internal.NewDiscardLogger()))
	r.Get("/api/options", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/options", nil))
	assert.Equal(t, http.StatusTeapot, w.Code)

	count, err := testutil.GatherAndCount(rec.Registry(), "adoptdash_http_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
