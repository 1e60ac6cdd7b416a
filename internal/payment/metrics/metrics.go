package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the payment validation module.
type Metrics struct {
	// Verdicts by outcome
	Verdicts *prometheus.CounterVec

	// Commits lost to a concurrent submission with the same reference
	CommitConflicts prometheus.Counter

	// Full validation latency including the registry round trips
	ValidateLatency prometheus.Histogram

	// Duplicate-lookup latency against the reference registry
	RegistryLookupLatency prometheus.Histogram
}

// New creates a new Metrics instance with all payment module metrics registered.
func New() *Metrics {
	return &Metrics{
		Verdicts: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "certpay_payment_verdicts_total",
			Help: "Total payment validation verdicts by outcome",
		}, []string{"outcome"}), // outcome: "validated", "failed"

		CommitConflicts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "certpay_payment_commit_conflicts_total",
			Help: "Reference commits lost to a concurrent submission after passing all checks",
		}),

		ValidateLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "certpay_payment_validate_duration_seconds",
			Help:    "Duration of full payment validation including registry lookups",
			Buckets: []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),

		RegistryLookupLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "certpay_payment_registry_lookup_duration_seconds",
			Help:    "Duration of the duplicate-reference lookup against the registry",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		}),
	}
}

// IncrementVerdict records a validation outcome.
func (m *Metrics) IncrementVerdict(outcome string) {
	if m != nil {
		m.Verdicts.WithLabelValues(outcome).Inc()
	}
}

// IncrementCommitConflict records a reference commit lost to a racer.
func (m *Metrics) IncrementCommitConflict() {
	if m != nil {
		m.CommitConflicts.Inc()
	}
}

// ObserveValidateLatency records the total validation duration.
func (m *Metrics) ObserveValidateLatency(d time.Duration) {
	if m != nil {
		m.ValidateLatency.Observe(d.Seconds())
	}
}

// ObserveRegistryLookup records one duplicate-lookup round trip.
func (m *Metrics) ObserveRegistryLookup(d time.Duration) {
	if m != nil {
		m.RegistryLookupLatency.Observe(d.Seconds())
	}
}
