package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the registry module.
type Metrics struct {
	Reconfigurations prometheus.Counter
}

// New creates a new Metrics instance with all registry module metrics registered.
func New() *Metrics {
	return &Metrics{
		Reconfigurations: promauto.NewCounter(prometheus.CounterOpts{
			Name: "dpulse_registry_reconfigurations_total",
			Help: "Total number of authority/treasury reconfigurations",
		}),
	}
}

// IncrementReconfigurations records a successful authority or treasury change.
func (m *Metrics) IncrementReconfigurations() {
	m.Reconfigurations.Inc()
}
