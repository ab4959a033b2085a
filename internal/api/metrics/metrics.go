// Package metrics defines all custom Prometheus metrics for the FarmFed
// delivery API. It is the single source of truth for metric names, labels,
// and help strings. Metrics self-register through promauto at package init.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "delivery"

// ── Estimation metrics ────────────────────────────────────────────────────────

// QuotesTotal counts delivery quote requests by outcome.
// Label:
//   - outcome: "ok", "disabled" (rate 0), or "error"
var QuotesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "quotes_total",
		Help:      "Total number of delivery fee quotes, by outcome.",
	},
	[]string{"outcome"},
)

// QuoteDistanceMiles observes the routed distance of successful quotes.
var QuoteDistanceMiles = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "quote_distance_miles",
		Help:      "Routed distance of successful delivery quotes.",
		Buckets:   []float64{1, 2.5, 5, 10, 20, 40, 80, 160},
	},
)

// GeofenceChecksTotal counts geofence validations.
// Label:
//   - result: "valid", "invalid", or "geocoding_failed"
var GeofenceChecksTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "geofence_checks_total",
		Help:      "Total number of service-area checks, by result.",
	},
	[]string{"result"},
)

// ── Checkout metrics ──────────────────────────────────────────────────────────

// CheckoutRunsTotal counts finished checkout runs by terminal state.
// Label:
//   - state: "completed", "partially_failed", or "aborted"
var CheckoutRunsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "checkout_runs_total",
		Help:      "Total number of checkout runs, by terminal state.",
	},
	[]string{"state"},
)

// CheckoutItemsTotal counts processed cart items.
// Label:
//   - result: "success" or "failure"
var CheckoutItemsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "checkout_items_total",
		Help:      "Total number of cart items processed in checkout runs.",
	},
	[]string{"result"},
)

// ── Webhook metrics ───────────────────────────────────────────────────────────

// WebhookEventsTotal counts delivery-provider webhook events.
// Label:
//   - trigger: the numeric trigger ID as a string (e.g. "3" for taskCompleted)
var WebhookEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "webhook_events_total",
		Help:      "Total number of delivery-provider webhook events received, by trigger.",
	},
	[]string{"trigger"},
)

// DeliveryTasksTotal counts provider task creation attempts.
// Label:
//   - result: "created", "skipped", or "error"
var DeliveryTasksTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "delivery_tasks_total",
		Help:      "Total number of delivery-task creation attempts, by result.",
	},
	[]string{"result"},
)
