// Package metrics defines and registers all custom Prometheus metrics for the
// sensorwatch console. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation (promauto) and exposed by the router on GET /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "console"

// ── Session metrics ───────────────────────────────────────────────────────────

// SessionTransitionsTotal counts session transitions by outcome.
// Labels:
//   - operation: "restore", "sign_in", "sign_up" or "sign_out"
//   - outcome: "authenticated", "anonymous", "failed" or "cleared"
var SessionTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_transitions_total",
		Help:      "Total number of session transitions, by operation and outcome.",
	},
	[]string{"operation", "outcome"},
)

// BootstrapDuration measures how long the bootstrap gate stays pending.
// Label:
//   - mode: "client" or "prerender"
var BootstrapDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "bootstrap_duration_seconds",
		Help:      "Time from process start until the bootstrap gate settled.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"mode"},
)

// ── Guard metrics ─────────────────────────────────────────────────────────────

// GuardDecisionsTotal counts route guard evaluations.
// Labels:
//   - guard: "authenticated" or "anonymous"
//   - decision: "proceed" or "redirect"
var GuardDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guard_decisions_total",
		Help:      "Total number of route guard evaluations, by guard and decision.",
	},
	[]string{"guard", "decision"},
)

// GuardGateWaitDuration measures how long a guard waited on the bootstrap gate.
// Label:
//   - guard: "authenticated" or "anonymous"
var GuardGateWaitDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "guard_gate_wait_seconds",
		Help:      "Time a route guard spent waiting for the bootstrap gate.",
		Buckets:   []float64{.0001, .001, .01, .05, .1, .25, .5, 1, 2.5, 5},
	},
	[]string{"guard"},
)

// ── Transport metrics ─────────────────────────────────────────────────────────

// AuthRequestsTotal counts calls to the monitoring API's auth endpoints.
// Labels:
//   - endpoint: "profile", "login", "signup" or "logout"
//   - code: the HTTP status code, or "error" when no response was received
var AuthRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_requests_total",
		Help:      "Total number of auth API requests, by endpoint and response code.",
	},
	[]string{"endpoint", "code"},
)
