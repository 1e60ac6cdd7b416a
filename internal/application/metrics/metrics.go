package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the application module.
type Metrics struct {
	Submitted         prometheus.Counter
	StatusTransitions *prometheus.CounterVec
}

// New creates a new Metrics instance with all application module metrics registered.
func New() *Metrics {
	return &Metrics{
		Submitted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "certpay_applications_submitted_total",
			Help: "Total certificate applications submitted",
		}),
		StatusTransitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "certpay_application_status_transitions_total",
			Help: "Application status transitions by target status",
		}, []string{"status"}),
	}
}

// IncrementSubmitted records a new application.
func (m *Metrics) IncrementSubmitted() {
	if m != nil {
		m.Submitted.Inc()
	}
}

// IncrementTransition records a status transition.
func (m *Metrics) IncrementTransition(status string) {
	if m != nil {
		m.StatusTransitions.WithLabelValues(status).Inc()
	}
}
