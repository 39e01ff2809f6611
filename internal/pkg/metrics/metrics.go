// Package metrics defines and registers all custom Prometheus metrics for the
// EMS API. It is the single source of truth for metric names, labels, and
// help strings.
//
// Metrics are registered with the default registry on package init through
// promauto; HTTP request metrics come from the echoprometheus middleware.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "ems"

// ── Payroll ──────────────────────────────────────────────────────────────────

// PayrollRecordsTotal counts per-employee payroll outcomes.
// Label:
//   - outcome: "processed", "skipped" or "failed"
var PayrollRecordsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "payroll_records_total",
		Help:      "Total number of per-employee payroll outcomes.",
	},
	[]string{"outcome"},
)

// PayrollRunDuration measures a whole payroll run.
// Label:
//   - result: "ok" or "error"
var PayrollRunDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "payroll_run_duration_seconds",
		Help:      "Duration of payroll runs.",
		Buckets:   []float64{.1, .5, 1, 2.5, 5, 10, 30, 60, 120},
	},
	[]string{"result"},
)

// ── Auth ─────────────────────────────────────────────────────────────────────

// AuthFailuresTotal counts rejected credentials and tokens.
// Label:
//   - reason: e.g. "bad_password", "invalid_access", "revoked_refresh"
var AuthFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_failures_total",
		Help:      "Total number of rejected authentication attempts.",
	},
	[]string{"reason"},
)

// ── Attendance ───────────────────────────────────────────────────────────────

// AttendanceEventsTotal counts successful clock events.
// Label:
//   - kind: "clock_in" or "clock_out"
var AttendanceEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "attendance_events_total",
		Help:      "Total number of clock-in and clock-out events.",
	},
	[]string{"kind"},
)

// ── Notifications ────────────────────────────────────────────────────────────

// NotificationsTotal counts delivery attempts.
// Labels:
//   - channel: "in-app", "email" or "sms"
//   - result: "sent" or "failed"
var NotificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_total",
		Help:      "Total number of notification deliveries by channel and result.",
	},
	[]string{"channel", "result"},
)

// NotificationQueueDepth tracks deliveries waiting in each dispatcher worker.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var NotificationQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "notification_queue_depth",
		Help:      "Current number of deliveries pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// ── Chatbot ──────────────────────────────────────────────────────────────────

// ChatbotAnswersTotal counts answers by source.
// Label:
//   - source: "faq", "llm" or "fallback"
var ChatbotAnswersTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "chatbot_answers_total",
		Help:      "Total number of chatbot answers by source.",
	},
	[]string{"source"},
)
