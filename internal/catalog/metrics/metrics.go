package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the catalog module.
type Metrics struct {
	TLDCreated prometheus.Counter
}

// New creates a new Metrics instance with all catalog module metrics registered.
func New() *Metrics {
	return &Metrics{
		TLDCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "dpulse_tlds_created_total",
			Help: "Total number of TLD namespaces created",
		}),
	}
}

// IncrementTLDCreated records a successful namespace creation.
func (m *Metrics) IncrementTLDCreated() {
	m.TLDCreated.Inc()
}
