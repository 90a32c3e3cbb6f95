package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the raffle module.
// Tracks per-operation outcomes and latency plus value flowing through escrow.
type Metrics struct {
	Operations          *prometheus.CounterVec
	OperationDuration   *prometheus.HistogramVec
	FeesCollected       prometheus.Counter
	FeesSwept           prometheus.Counter
	EventPublishFailure prometheus.Counter
}

// New registers the raffle metrics with reg. A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		Operations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "raffle_operations_total",
			Help: "Lifecycle operations by outcome (ok or failure reason)",
		}, []string{"operation", "outcome"}),
		OperationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "raffle_operation_duration_seconds",
			Help:    "Duration of lifecycle operations including ledger transfers",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"operation"}),
		FeesCollected: factory.NewCounter(prometheus.CounterOpts{
			Name: "raffle_fees_collected_total",
			Help: "Native units transferred into raffle escrow by entries",
		}),
		FeesSwept: factory.NewCounter(prometheus.CounterOpts{
			Name: "raffle_fees_swept_total",
			Help: "Native units swept from escrow to creators on claim",
		}),
		EventPublishFailure: factory.NewCounter(prometheus.CounterOpts{
			Name: "raffle_event_publish_failures_total",
			Help: "WinnerSelected notifications that could not be published",
		}),
	}
}

// ObserveOperation records one operation's outcome and duration.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveOperation(operation, outcome string, start time.Time) {
	m.Operations.WithLabelValues(operation, outcome).Inc()
	m.OperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

func (m *Metrics) AddFeesCollected(amount uint64) {
	m.FeesCollected.Add(float64(amount))
}

func (m *Metrics) AddFeesSwept(amount uint64) {
	m.FeesSwept.Add(float64(amount))
}

func (m *Metrics) IncEventPublishFailure() {
	m.EventPublishFailure.Inc()
}
