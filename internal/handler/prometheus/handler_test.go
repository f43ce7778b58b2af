package prometheus

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var defaultRegistryCounter = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "test",
	Subsystem: "prometheus_handler",
	Name:      "scrape_probe_total",
	Help:      "Counter registered on the default registry",
})

func setupMetricsRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := New()
	r := gin.New()
	r.Use(h.Middleware())
	r.GET("/metrics", h.Handler())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func TestMetricsEndpointServesRequestMetrics(t *testing.T) {
	r := setupMetricsRouter()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)

	assert.Contains(t, w.Body.String(), "http_requests_total")
}

func TestMetricsEndpointServesDefaultRegistry(t *testing.T) {
	defaultRegistryCounter.Inc()

	r := setupMetricsRouter()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)

	assert.Contains(t, w.Body.String(), "test_prometheus_handler_scrape_probe_total")
}
