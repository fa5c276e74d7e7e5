package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus counters for the invoice registry.
type Metrics struct {
	Minted      prometheus.Counter
	Transferred prometheus.Counter
	Paid        prometheus.Counter
	Amended     prometheus.Counter
	Burned      prometheus.Counter
}

// New creates and registers all invoice registry metrics.
func New() *Metrics {
	return &Metrics{
		Minted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "finvoice_invoices_minted_total",
			Help: "Total number of invoices minted",
		}),
		Transferred: promauto.NewCounter(prometheus.CounterOpts{
			Name: "finvoice_invoices_transferred_total",
			Help: "Total number of invoice title transfers",
		}),
		Paid: promauto.NewCounter(prometheus.CounterOpts{
			Name: "finvoice_invoices_paid_total",
			Help: "Total number of invoices marked paid",
		}),
		Amended: promauto.NewCounter(prometheus.CounterOpts{
			Name: "finvoice_invoices_amended_total",
			Help: "Total number of invoice terms amendments",
		}),
		Burned: promauto.NewCounter(prometheus.CounterOpts{
			Name: "finvoice_invoices_burned_total",
			Help: "Total number of invoices burned",
		}),
	}
}

func (m *Metrics) IncrementMinted()      { m.Minted.Inc() }
func (m *Metrics) IncrementTransferred() { m.Transferred.Inc() }
func (m *Metrics) IncrementPaid()        { m.Paid.Inc() }
func (m *Metrics) IncrementAmended()     { m.Amended.Inc() }
func (m *Metrics) IncrementBurned()      { m.Burned.Inc() }
