// Package metrics defines and registers all custom Prometheus metrics for the
// chat session service. It is the single source of truth for metric names,
// labels, and help strings. It imports nothing from the service, so core,
// infrastructure and api packages can all record into it.
//
// Metrics register with the default Prometheus registry on package init
// (promauto); the /metrics route serves them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "chatbot"

// ── Chat metrics ──────────────────────────────────────────────────────────────

// ChatRequestsTotal counts chat requests that reached the gateway.
// Label:
//   - outcome: "ok", "throttled", "invalid_input", "upstream_throttled", "generation_failed"
var ChatRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "chat_requests_total",
		Help:      "Total number of chat requests handled by the gateway, by outcome.",
	},
	[]string{"outcome"},
)

// ThrottleRejectionsTotal counts throttled requests.
// Label:
//   - scope: "local" (global gate) or "upstream" (provider quota)
var ThrottleRejectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "throttle_rejections_total",
		Help:      "Total number of chat requests rejected by a throttle.",
	},
	[]string{"scope"},
)

// GenerationDuration measures the upstream generation call.
// Label:
//   - result: "ok" or "error"
var GenerationDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "generation_duration_seconds",
		Help:      "Duration of calls to the text-generation model.",
		Buckets:   []float64{.25, .5, 1, 2, 4, 8, 16, 32, 64},
	},
	[]string{"result"},
)

// HistoryPersistFailuresTotal counts exchanges whose reply was returned but
// could not be written to history.
var HistoryPersistFailuresTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "history_persist_failures_total",
		Help:      "Total number of generated exchanges that failed to persist.",
	},
)

// ── Account metrics ───────────────────────────────────────────────────────────

// AuthAttemptsTotal counts registration and login attempts.
// Labels:
//   - action: "register" or "login"
//   - result: "success", "failure", "duplicate"
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of account attempts, by action and result.",
	},
	[]string{"action", "result"},
)

// HistoryWriterQueueDepth tracks appends waiting in each history writer shard.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var HistoryWriterQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "history_writer_queue_depth",
		Help:      "Current number of appends pending in each history writer worker channel.",
	},
	[]string{"worker_id"},
)
