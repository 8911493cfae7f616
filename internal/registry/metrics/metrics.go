package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instruments for the registry engine.
type Metrics struct {
	MutationsCommitted *prometheus.CounterVec
	MutationsRejected  *prometheus.CounterVec
	HistoryEntries     prometheus.Counter
	FarmsRegistered    prometheus.Counter
}

// New creates and registers all registry metrics on the default registerer.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith registers the metrics on a caller-supplied registerer so tests
// can isolate collectors.
func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		MutationsCommitted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cultiva_registry_mutations_committed_total",
			Help: "Committed registry mutations by operation",
		}, []string{"operation"}),
		MutationsRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cultiva_registry_mutations_rejected_total",
			Help: "Rejected registry mutations by operation and error code",
		}, []string{"operation", "code"}),
		HistoryEntries: factory.NewCounter(prometheus.CounterOpts{
			Name: "cultiva_registry_history_entries_total",
			Help: "History entries appended across all farms",
		}),
		FarmsRegistered: factory.NewCounter(prometheus.CounterOpts{
			Name: "cultiva_registry_farms_registered_total",
			Help: "Total farms registered",
		}),
	}
}

// MutationCommitted increments the committed counter for one operation.
func (m *Metrics) MutationCommitted(operation string) {
	m.MutationsCommitted.WithLabelValues(operation).Inc()
}

// MutationRejected increments the rejected counter for one operation.
func (m *Metrics) MutationRejected(operation, code string) {
	m.MutationsRejected.WithLabelValues(operation, code).Inc()
}
