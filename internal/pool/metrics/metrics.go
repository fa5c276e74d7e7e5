package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus counters for the financing pool.
type Metrics struct {
	ListingsCreated prometheus.Counter
	ListingsUpdated prometheus.Counter
	BidsPlaced      prometheus.Counter
	BidsAccepted    prometheus.Counter
	Deposits        prometheus.Counter
	Withdrawals     prometheus.Counter
}

// New creates and registers all pool metrics.
func New() *Metrics {
	return &Metrics{
		ListingsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "finvoice_listings_created_total",
			Help: "Total number of listings created",
		}),
		ListingsUpdated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "finvoice_listings_updated_total",
			Help: "Total number of listing price revisions",
		}),
		BidsPlaced: promauto.NewCounter(prometheus.CounterOpts{
			Name: "finvoice_bids_placed_total",
			Help: "Total number of bids placed or replaced",
		}),
		BidsAccepted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "finvoice_bids_accepted_total",
			Help: "Total number of bids accepted",
		}),
		Deposits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "finvoice_pool_deposits_total",
			Help: "Total number of pool deposits",
		}),
		Withdrawals: promauto.NewCounter(prometheus.CounterOpts{
			Name: "finvoice_pool_withdrawals_total",
			Help: "Total number of pool withdrawals",
		}),
	}
}

func (m *Metrics) IncrementListingsCreated() { m.ListingsCreated.Inc() }
func (m *Metrics) IncrementListingsUpdated() { m.ListingsUpdated.Inc() }
func (m *Metrics) IncrementBidsPlaced()      { m.BidsPlaced.Inc() }
func (m *Metrics) IncrementBidsAccepted()    { m.BidsAccepted.Inc() }
func (m *Metrics) IncrementDeposits()        { m.Deposits.Inc() }
func (m *Metrics) IncrementWithdrawals()     { m.Withdrawals.Inc() }
