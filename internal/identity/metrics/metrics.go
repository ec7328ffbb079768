package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the identity module.
type Metrics struct {
	DIDCreated        prometheus.Counter
	MetadataWrites    prometheus.Counter
	CreateDIDDuration prometheus.Histogram
}

// New creates a new Metrics instance with all identity module metrics registered.
func New() *Metrics {
	return &Metrics{
		DIDCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "hunt_dids_created_total",
			Help: "Total number of DIDs registered",
		}),
		MetadataWrites: promauto.NewCounter(prometheus.CounterOpts{
			Name: "hunt_metadata_writes_total",
			Help: "Total number of profile metadata writes",
		}),
		CreateDIDDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "hunt_create_did_duration_seconds",
			Help:    "Duration of CreateDID operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// IncrementDIDCreated records a successful DID registration.
func (m *Metrics) IncrementDIDCreated() {
	if m != nil {
		m.DIDCreated.Inc()
	}
}

// IncrementMetadataWrites records a profile metadata write.
func (m *Metrics) IncrementMetadataWrites() {
	if m != nil {
		m.MetadataWrites.Inc()
	}
}

// ObserveCreateDID records the duration of a CreateDID operation.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveCreateDID(start time.Time) {
	if m != nil {
		m.CreateDIDDuration.Observe(time.Since(start).Seconds())
	}
}
