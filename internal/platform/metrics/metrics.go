// Package metrics holds process-wide Prometheus metrics. Domain counters
// live next to their feature (internal/registry/metrics); this package
// only covers the HTTP surface.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the HTTP-level Prometheus metrics.
type Metrics struct {
	HTTPDuration *prometheus.HistogramVec
}

// New creates and registers the metrics on the default registerer.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith registers the metrics on a specific registerer. Tests pass a
// fresh registry so repeated construction does not collide.
func NewWith(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		HTTPDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cultiva_http_request_duration_seconds",
			Help:    "HTTP request latency by method, path and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
	}
}

// ObserveHTTPRequest records one request's latency.
func (m *Metrics) ObserveHTTPRequest(method, path string, status int, seconds float64) {
	m.HTTPDuration.WithLabelValues(method, path, strconv.Itoa(status)).Observe(seconds)
}
