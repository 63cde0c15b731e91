package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the ledger-level Prometheus metrics.
type Metrics struct {
	// Ledger operation metrics
	OperationsTotal   *prometheus.CounterVec // operation, outcome
	OperationDuration *prometheus.HistogramVec
	OperationAmount   *prometheus.HistogramVec

	// Customer metrics
	CustomersRegistered prometheus.Counter
	LoginAttempts       *prometheus.CounterVec // status

	// Storage metrics
	DBConnections prometheus.Gauge
}

// New creates and registers the metrics on the default registerer.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith creates and registers the metrics on reg. Tests pass a
// fresh registry to avoid duplicate registration panics.
func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		OperationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bankcore_ledger_operations_total",
				Help: "Total ledger operations by type and outcome",
			},
			[]string{"operation", "outcome"},
		),
		OperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bankcore_ledger_operation_duration_seconds",
				Help:    "Ledger operation duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		OperationAmount: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bankcore_ledger_operation_amount",
				Help:    "Ledger operation amounts",
				Buckets: []float64{1, 10, 100, 1000, 10000, 100000, 1000000},
			},
			[]string{"operation"},
		),
		CustomersRegistered: factory.NewCounter(prometheus.CounterOpts{
			Name: "bankcore_customers_registered_total",
			Help: "Total customers registered",
		}),
		LoginAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bankcore_login_attempts_total",
				Help: "Total login attempts by status",
			},
			[]string{"status"},
		),
		DBConnections: factory.NewGauge(prometheus.GaugeOpts{
			Name: "bankcore_db_connections",
			Help: "Current number of database connections",
		}),
	}
}
