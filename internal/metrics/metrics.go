package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus collectors for the account registry.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	AccountsOpened   *prometheus.CounterVec
	AccountsClosed   *prometheus.CounterVec
	Rejections       *prometheus.CounterVec
	LiveAccounts     prometheus.Gauge
	RegistryCapacity prometheus.Gauge
	BalanceUpdates   prometheus.Counter
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		AccountsOpened: f.NewCounterVec(prometheus.CounterOpts{
			Name: "rubank_accounts_opened_total",
			Help: "Total number of accounts opened, by category",
		}, []string{"category"}),
		AccountsClosed: f.NewCounterVec(prometheus.CounterOpts{
			Name: "rubank_accounts_closed_total",
			Help: "Total number of accounts closed, by category",
		}, []string{"category"}),
		Rejections: f.NewCounterVec(prometheus.CounterOpts{
			Name: "rubank_operation_rejections_total",
			Help: "Registry operations that returned an error, by operation and reason",
		}, []string{"operation", "reason"}),
		LiveAccounts: f.NewGauge(prometheus.GaugeOpts{
			Name: "rubank_live_accounts",
			Help: "Number of open accounts held by the registry",
		}),
		RegistryCapacity: f.NewGauge(prometheus.GaugeOpts{
			Name: "rubank_registry_capacity",
			Help: "Allocated account slots in the registry",
		}),
		BalanceUpdates: f.NewCounter(prometheus.CounterOpts{
			Name: "rubank_balance_updates_total",
			Help: "Number of monthly fee and interest runs",
		}),
	}
}

// IncrementOpened increments the opened counter for category.
func (m *Metrics) IncrementOpened(category string) {
	if m == nil {
		return
	}
	m.AccountsOpened.WithLabelValues(category).Inc()
}

// IncrementClosed increments the closed counter for category.
func (m *Metrics) IncrementClosed(category string) {
	if m == nil {
		return
	}
	m.AccountsClosed.WithLabelValues(category).Inc()
}

// IncrementRejected records a failed operation.
func (m *Metrics) IncrementRejected(operation, reason string) {
	if m == nil {
		return
	}
	m.Rejections.WithLabelValues(operation, reason).Inc()
}

// IncrementBalanceUpdates counts one monthly update run.
func (m *Metrics) IncrementBalanceUpdates() {
	if m == nil {
		return
	}
	m.BalanceUpdates.Inc()
}

// SetSize publishes the live count and capacity.
func (m *Metrics) SetSize(live, capacity int) {
	if m == nil {
		return
	}
	m.LiveAccounts.Set(float64(live))
	m.RegistryCapacity.Set(float64(capacity))
}
