package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "eventick"

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by method, route and status code.",
	}, []string{"method", "route", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by method and route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	PinCodeAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "pin_code_attempts_total",
		Help:      "PIN code candidates tried while saving events, by outcome.",
	}, []string{"outcome"})

	OrdersPlaced = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orders_placed_total",
		Help:      "Ticket orders committed.",
	})

	TicketsIssued = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tickets_issued_total",
		Help:      "Attendee tickets issued.",
	})

	InventoryDecremented = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "inventory_decremented_total",
		Help:      "Tickets taken out of event ticket inventory.",
	})

	TicketsRedeemed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tickets_redeemed_total",
		Help:      "Attendee tickets marked as used.",
	})

	OrdersDelivered = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orders_delivered_total",
		Help:      "Orders moved to delivered.",
	})
)
