package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the ledger module.
type Metrics struct {
	DomainsRegistered  prometheus.Counter
	DomainsRenewed     prometheus.Counter
	DomainsTransferred prometheus.Counter
	FeesCollected      prometheus.Counter
	ResolveCacheHits   prometheus.Counter
	ResolveCacheMisses prometheus.Counter
}

// New creates a new Metrics instance with all ledger module metrics registered.
func New() *Metrics {
	return &Metrics{
		DomainsRegistered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "dpulse_domains_registered_total",
			Help: "Total number of domains registered",
		}),
		DomainsRenewed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "dpulse_domains_renewed_total",
			Help: "Total number of domain renewals",
		}),
		DomainsTransferred: promauto.NewCounter(prometheus.CounterOpts{
			Name: "dpulse_domains_transferred_total",
			Help: "Total number of domain ownership transfers",
		}),
		FeesCollected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "dpulse_fees_collected_lamports_total",
			Help: "Total fee volume collected into the treasury, in base units",
		}),
		ResolveCacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "dpulse_resolve_cache_hits_total",
			Help: "Resolve lookups served from cache",
		}),
		ResolveCacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "dpulse_resolve_cache_misses_total",
			Help: "Resolve lookups that fell through to the store",
		}),
	}
}

// IncrementRegistered records a successful registration.
func (m *Metrics) IncrementRegistered() { m.DomainsRegistered.Inc() }

// IncrementRenewed records a successful renewal.
func (m *Metrics) IncrementRenewed() { m.DomainsRenewed.Inc() }

// IncrementTransferred records a successful transfer.
func (m *Metrics) IncrementTransferred() { m.DomainsTransferred.Inc() }

// AddFees records fee volume moved into the treasury.
func (m *Metrics) AddFees(amount uint64) { m.FeesCollected.Add(float64(amount)) }

// IncrementCacheHit records a resolve cache hit.
func (m *Metrics) IncrementCacheHit() { m.ResolveCacheHits.Inc() }

// IncrementCacheMiss records a resolve cache miss.
func (m *Metrics) IncrementCacheMiss() { m.ResolveCacheMisses.Inc() }
