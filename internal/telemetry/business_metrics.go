package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// BusinessMetrics holds Prometheus metrics for business-level observability.
type BusinessMetrics struct {
	// Cart
	CartCreated  prometheus.Counter
	CartItemsAdd prometheus.Counter

	// Orders
	OrdersCreated prometheus.Counter
	OrdersPaid    prometheus.Counter
	OrderValue    prometheus.Histogram

	// Pricing: order lines by the offer kind that priced them
	// (kind: percentage, fixed_price, two_for_one, none)
	OrderLinesByOffer *prometheus.CounterVec

	// Webhooks
	WebhookReceived *prometheus.CounterVec
	WebhookFailed   *prometheus.CounterVec

	// Email delivery
	EmailSent   *prometheus.CounterVec
	EmailFailed *prometheus.CounterVec
}

// NewBusinessMetrics creates and registers all business metrics.
func NewBusinessMetrics(namespace string) *BusinessMetrics {
	if namespace == "" {
		namespace = "feriaverde"
	}

	subsystem := "business"

	return &BusinessMetrics{
		CartCreated: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "carts_created_total",
				Help:      "Total carts created",
			},
		),
		CartItemsAdd: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cart_items_added_total",
				Help:      "Total add to cart actions",
			},
		),
		OrdersCreated: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "orders_created_total",
				Help:      "Total orders materialized at checkout",
			},
		),
		OrdersPaid: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "orders_paid_total",
				Help:      "Total orders confirmed paid by the gateway",
			},
		),
		OrderValue: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "order_value",
				Help:      "Order totals in minor currency units",
				Buckets:   prometheus.ExponentialBuckets(1000, 2.5, 10),
			},
		),
		OrderLinesByOffer: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "order_lines_by_offer_total",
				Help:      "Order lines by the offer kind that priced them",
			},
			[]string{"kind"},
		),
		WebhookReceived: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "webhooks_received_total",
				Help:      "Total payment webhooks received",
			},
			[]string{"result"},
		),
		WebhookFailed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "webhooks_failed_total",
				Help:      "Total payment webhooks that failed processing",
			},
			[]string{"reason"},
		),
		EmailSent: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "emails_sent_total",
				Help:      "Total notification emails sent",
			},
			[]string{"kind"},
		),
		EmailFailed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "emails_failed_total",
				Help:      "Total notification emails that failed to send",
			},
			[]string{"kind"},
		),
	}
}
