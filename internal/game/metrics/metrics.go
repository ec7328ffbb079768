package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the game module.
type Metrics struct {
	PlayersRegistered prometheus.Counter
	TreasuresPlaced   prometheus.Counter
	TreasuresClaimed  prometheus.Counter

	// Move outcomes by result ("ok", "exhausted")
	Moves *prometheus.CounterVec

	ClaimLatency prometheus.Histogram
}

// New creates a new Metrics instance with all game module metrics registered.
func New() *Metrics {
	return &Metrics{
		PlayersRegistered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "hunt_players_registered_total",
			Help: "Total number of registered players",
		}),
		TreasuresPlaced: promauto.NewCounter(prometheus.CounterOpts{
			Name: "hunt_treasures_placed_total",
			Help: "Total number of treasures placed at board initialization",
		}),
		TreasuresClaimed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "hunt_treasures_claimed_total",
			Help: "Total number of successful treasure claims",
		}),
		Moves: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "hunt_moves_total",
			Help: "Total move attempts by result",
		}, []string{"result"}),
		ClaimLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "hunt_claim_duration_seconds",
			Help:    "Duration of claim operations including token transfer",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// IncrementPlayersRegistered records a player registration.
func (m *Metrics) IncrementPlayersRegistered() {
	if m != nil {
		m.PlayersRegistered.Inc()
	}
}

// AddTreasuresPlaced records the number of treasures placed.
func (m *Metrics) AddTreasuresPlaced(n int) {
	if m != nil {
		m.TreasuresPlaced.Add(float64(n))
	}
}

// IncrementTreasuresClaimed records a successful claim.
func (m *Metrics) IncrementTreasuresClaimed() {
	if m != nil {
		m.TreasuresClaimed.Inc()
	}
}

// IncrementMoves records a move attempt outcome.
func (m *Metrics) IncrementMoves(result string) {
	if m != nil {
		m.Moves.WithLabelValues(result).Inc()
	}
}

// ObserveClaim records the duration of a claim operation.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveClaim(start time.Time) {
	if m != nil {
		m.ClaimLatency.Observe(time.Since(start).Seconds())
	}
}
