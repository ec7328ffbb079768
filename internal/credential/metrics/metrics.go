package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the credential module.
type Metrics struct {
	// Assignment and issuance counts
	CredentialsAssigned prometheus.Counter
	CredentialsIssued   prometheus.Counter

	// Verification outcomes by query and result
	VerificationOutcome *prometheus.CounterVec

	// Ledger entries scanned per verification
	ScanDepth prometheus.Histogram

	VerifyLatency prometheus.Histogram
}

// New creates a new Metrics instance with all credential module metrics registered.
func New() *Metrics {
	return &Metrics{
		CredentialsAssigned: promauto.NewCounter(prometheus.CounterOpts{
			Name: "hunt_credentials_assigned_total",
			Help: "Total number of role assignments",
		}),
		CredentialsIssued: promauto.NewCounter(prometheus.CounterOpts{
			Name: "hunt_credentials_issued_total",
			Help: "Total number of credentials issued",
		}),
		VerificationOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "hunt_verification_outcomes_total",
			Help: "Total verification outcomes by query and result",
		}, []string{"query", "verified"}), // query: "role", "salary"
		ScanDepth: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "hunt_verification_scan_depth",
			Help:    "Number of ledger entries evaluated per verification",
			Buckets: []float64{1, 2, 5, 10, 25, 50, 100},
		}),
		VerifyLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "hunt_verification_duration_seconds",
			Help:    "Duration of verification queries including audit emission",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// IncrementAssigned records a role assignment.
func (m *Metrics) IncrementAssigned() {
	if m != nil {
		m.CredentialsAssigned.Inc()
	}
}

// IncrementIssued records a credential issuance.
func (m *Metrics) IncrementIssued() {
	if m != nil {
		m.CredentialsIssued.Inc()
	}
}

// ObserveVerification records a completed verification scan.
func (m *Metrics) ObserveVerification(query string, verified bool, depth int, start time.Time) {
	if m == nil {
		return
	}
	outcome := "false"
	if verified {
		outcome = "true"
	}
	m.VerificationOutcome.WithLabelValues(query, outcome).Inc()
	m.ScanDepth.Observe(float64(depth))
	m.VerifyLatency.Observe(time.Since(start).Seconds())
}
