package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus counters for the oracle registry.
type Metrics struct {
	Registered prometheus.Counter
	Updated    prometheus.Counter
	Reports    prometheus.Counter
}

// New creates and registers all oracle registry metrics.
func New() *Metrics {
	return &Metrics{
		Registered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "finvoice_oracles_registered_total",
			Help: "Total number of oracles registered",
		}),
		Updated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "finvoice_oracles_updated_total",
			Help: "Total number of oracle profile updates",
		}),
		Reports: promauto.NewCounter(prometheus.CounterOpts{
			Name: "finvoice_payment_reports_total",
			Help: "Total number of accepted payment reports",
		}),
	}
}

func (m *Metrics) IncrementRegistered() { m.Registered.Inc() }
func (m *Metrics) IncrementUpdated()    { m.Updated.Inc() }
func (m *Metrics) IncrementReports()    { m.Reports.Inc() }
