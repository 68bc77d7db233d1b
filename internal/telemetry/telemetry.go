package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "metricsapi_requests_total",
		Help: "Total API requests by endpoint",
	}, []string{"endpoint"})
	RequestDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "metricsapi_request_duration_ms",
		Help:    "Request duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000},
	}, []string{"endpoint"})
	LookupErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "metricsapi_lookup_errors_total",
		Help: "Total failed lookups by endpoint and kind",
	}, []string{"endpoint", "kind"})
	CacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "metricsapi_cache_hits_total",
		Help: "Total redis cache hits on metric lookups",
	})
	CacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "metricsapi_cache_misses_total",
		Help: "Total redis cache misses on metric lookups",
	})
	RefreshRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "metricsapi_refresh_runs_total",
		Help: "Total locale index refresh runs by outcome",
	}, []string{"outcome"})
	IndexedLocales = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "metricsapi_indexed_locales",
		Help: "Number of locales in the currently published index",
	})
)

func init() {
	prometheus.MustRegister(RequestsTotal)
	prometheus.MustRegister(RequestDurationMs)
	prometheus.MustRegister(LookupErrorsTotal)
	prometheus.MustRegister(CacheHitsTotal)
	prometheus.MustRegister(CacheMissesTotal)
	prometheus.MustRegister(RefreshRunsTotal)
	prometheus.MustRegister(IndexedLocales)
}

// Handler exposes the registered metrics for Prometheus scrapes.
func Handler() http.Handler { return promhttp.Handler() }
