// Package metrics defines and registers all custom Prometheus metrics for the
// home-services booking API. It is the single source of truth for metric
// names, labels, and help strings.
//
// Metrics are registered with the default Prometheus registry on package init
// (promauto) and exposed by the router under /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "homeservices"

// ── Booking metrics ───────────────────────────────────────────────────────────

// BookingRequestsTotal counts booking requests by outcome.
// Label:
//   - result: "confirmed", "replayed", "slot_unavailable", "slot_busy",
//     "validation_error", "gateway_error", "unconfirmed", "persistence_error"
var BookingRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "booking_requests_total",
		Help:      "Total number of booking requests, labelled by outcome.",
	},
	[]string{"result"},
)

// SlotLockWaitDuration measures time spent acquiring the slot lock.
var SlotLockWaitDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "slot_lock_wait_seconds",
		Help:      "Time spent waiting for the booking slot lock.",
		Buckets:   []float64{.001, .005, .01, .05, .1, .25, .5, 1, 2.5, 5},
	},
)

// ── Calendar gateway metrics ──────────────────────────────────────────────────

// CalendarRequestsTotal counts calls to the external calendar.
// Labels:
//   - operation: "list_events" or "create_event"
//   - result: "ok", "unreachable", "rejected"
var CalendarRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "calendar_requests_total",
		Help:      "Total number of calendar gateway calls, by operation and result.",
	},
	[]string{"operation", "result"},
)

// CalendarRequestDuration measures calendar gateway latency.
var CalendarRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "calendar_request_duration_seconds",
		Help:      "Duration of calendar gateway calls.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"operation"},
)

// ── Notification metrics ──────────────────────────────────────────────────────

// NotificationsTotal counts notification deliveries.
// Labels:
//   - kind: notification template (e.g. "booking_client")
//   - result: "sent", "failed", "dropped"
var NotificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_total",
		Help:      "Total number of notifications, by kind and delivery result.",
	},
	[]string{"kind", "result"},
)

// NotificationQueueDepth tracks pending notifications in each dispatcher worker channel.
var NotificationQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "notification_queue_depth",
		Help:      "Current number of notifications pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// ── Website metrics ───────────────────────────────────────────────────────────

// QuotesRequestedTotal counts quote requests, by service.
var QuotesRequestedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "quotes_requested_total",
		Help:      "Total number of quote requests, by service id.",
	},
	[]string{"service_id"},
)
