package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collectors for the synchronization layer. Label values are drawn from small
// fixed sets (view names, operations, outcomes) so cardinality stays bounded.
var (
	// CacheRequests counts cache reads by result (hit|miss).
	CacheRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "console_cache_requests_total",
			Help: "Cache reads served from a fresh persisted entry (hit) or requiring a fetch (miss).",
		},
		[]string{"result"},
	)

	// CacheFetches counts fetcher runs by mode (initial|silent|refetch) and outcome (ok|error).
	CacheFetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "console_cache_fetch_total",
			Help: "Cache fetcher executions.",
		},
		[]string{"mode", "outcome"},
	)

	// Mutations counts optimistic mutations by operation and outcome
	// (applied|rolled_back|suppressed).
	Mutations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "console_mutations_total",
			Help: "Optimistic mutations by outcome.",
		},
		[]string{"op", "outcome"},
	)

	// NotificationPolls counts activity feed polls by outcome (ok|error).
	NotificationPolls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "console_notification_polls_total",
			Help: "Activity feed polls.",
		},
		[]string{"outcome"},
	)

	// Toasts counts toasts shown by kind.
	Toasts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "console_toasts_total",
			Help: "Toasts pushed to operators.",
		},
		[]string{"kind"},
	)

	// SessionsActive gauges open console sessions.
	SessionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "console_sessions_active",
			Help: "Current number of open console sessions.",
		},
	)
)

func init() {
	prometheus.MustRegister(CacheRequests, CacheFetches, Mutations, NotificationPolls, Toasts, SessionsActive)
}

// Outcome maps an error to the "ok"/"error" label value.
func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
