package raft

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the prometheus collectors for one replica. Each Node owns
// its own registry-free counters; cmd/raftkv hands them to server.New,
// which registers them with the registry behind the admin surface's
// /metrics endpoint.
type Metrics struct {
	electionsStarted  prometheus.Counter
	leadershipChanges prometheus.Counter
	putsAccepted      prometheus.Counter
}

// NewMetrics builds a fresh set of collectors labeled with nothing beyond
// their name; the caller registers them once per process.
func NewMetrics() *Metrics {
	return &Metrics{
		electionsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "raftkv_elections_started_total",
			Help: "Number of elections this replica has started.",
		}),
		leadershipChanges: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "raftkv_leadership_changes_total",
			Help: "Number of times this replica has ascended to leader.",
		}),
		putsAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "raftkv_puts_accepted_total",
			Help: "Number of client puts accepted while leader.",
		}),
	}
}

// Collectors returns every collector so the caller can register them.
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{m.electionsStarted, m.leadershipChanges, m.putsAccepted}
}
