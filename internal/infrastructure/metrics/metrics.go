// Package metrics defines and registers all custom Prometheus metrics for
// trainerdesk. It is the single source of truth for metric names, labels, and
// help strings.
//
// Metrics are registered with the default Prometheus registry at package init
// (promauto) and exposed by the router on GET /metrics. Recorder feeds them
// from the core services.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/formasuite/trainerdesk/internal/core/domain"
)

const namespace = "trainerdesk"

// ── Session metrics ───────────────────────────────────────────────────────────

// SignInTotal counts sign-in attempts.
// Label:
//   - result: "success", "unauthorized", "error" (backend/network), "persist_failed"
var SignInTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sign_in_total",
		Help:      "Total number of sign-in attempts, by result.",
	},
	[]string{"result"},
)

// AuthStateChangesTotal counts published session states.
// Label:
//   - state: "signed_in" or "signed_out"
var AuthStateChangesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_state_changes_total",
		Help:      "Total number of session states published to observers.",
	},
	[]string{"state"},
)

// AuthObservers tracks the number of registered session observers.
var AuthObservers = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "auth_observers",
		Help:      "Current number of session state observers.",
	},
)

// ── Extras metrics ────────────────────────────────────────────────────────────

// ExtrasMutationsTotal counts in-memory extras mutations.
// Labels:
//   - kind: "client", "formateur", "session"
//   - op: "set" or "remove"
var ExtrasMutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "extras_mutations_total",
		Help:      "Total number of extras upserts and removals.",
	},
	[]string{"kind", "op"},
)

// ExtrasEntries tracks the number of cached entries per kind.
var ExtrasEntries = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "extras_entries",
		Help:      "Current number of extras entries held in memory, by kind.",
	},
	[]string{"kind"},
)

// ExtrasWritesTotal counts whole-document write-backs.
// Label:
//   - result: "ok" or "error"
var ExtrasWritesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "extras_writes_total",
		Help:      "Total number of extras document write-backs, by result.",
	},
	[]string{"result"},
)

// ExtrasWriteDuration measures one write-back from snapshot to durable storage.
var ExtrasWriteDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "extras_write_duration_seconds",
		Help:      "Duration of an extras document write-back.",
		Buckets:   prometheus.DefBuckets,
	},
)

// Recorder implements ports.SessionMetrics and ports.ExtrasMetrics on top of
// the collectors above.
type Recorder struct{}

func (Recorder) SignIn(result string) {
	SignInTotal.WithLabelValues(result).Inc()
}

func (Recorder) StateChanged(authenticated bool) {
	state := "signed_out"
	if authenticated {
		state = "signed_in"
	}
	AuthStateChangesTotal.WithLabelValues(state).Inc()
}

func (Recorder) Observers(n int) {
	AuthObservers.Set(float64(n))
}

func (r Recorder) Mutation(kind domain.EntityKind, op string, entries int) {
	ExtrasMutationsTotal.WithLabelValues(string(kind), op).Inc()
	r.Entries(kind, entries)
}

func (Recorder) Entries(kind domain.EntityKind, n int) {
	ExtrasEntries.WithLabelValues(string(kind)).Set(float64(n))
}

func (Recorder) Write(elapsed time.Duration, err error) {
	ExtrasWriteDuration.Observe(elapsed.Seconds())
	result := "ok"
	if err != nil {
		result = "error"
	}
	ExtrasWritesTotal.WithLabelValues(result).Inc()
}
