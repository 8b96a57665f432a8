package http

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	registry *prometheus.Registry

	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	mirrorFailures   *prometheus.CounterVec
	insightCacheHits *prometheus.CounterVec
}

func newMetrics() *metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())

	return &metrics{
		registry: reg,
		requestsTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "yeca_http_requests_total",
			Help: "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		requestDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "yeca_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		mirrorFailures: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "yeca_mirror_failures_total",
			Help: "Remote mirror write failures by operation.",
		}, []string{"operation"}),
		insightCacheHits: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "yeca_insight_cache_requests_total",
			Help: "Insight cache lookups by outcome.",
		}, []string{"outcome"}),
	}
}

func (m *metrics) observeRequest(method, route string, status int, elapsed time.Duration) {
	m.requestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

// MirrorFailure is handed to the state store as its OnMirrorError hook.
func (m *metrics) MirrorFailure(op string, _ error) {
	m.mirrorFailures.WithLabelValues(op).Inc()
}

func (m *metrics) insightCache(hit bool) {
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	m.insightCacheHits.WithLabelValues(outcome).Inc()
}
