// Package metrics holds the Prometheus collectors of the payment flow.
package metrics

import (
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	ordersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "club_payments_orders_total",
			Help: "Order creation attempts by result (created/invalid/misconfigured/upstream_error).",
		},
		[]string{"result"},
	)

	confirmationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "club_payments_confirmations_total",
			Help: "Payment confirmations by terminal state (verified/rejected).",
		},
		[]string{"state"},
	)

	notificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "club_payments_notifications_total",
			Help: "Ticket notifications by channel and result (sent/failed/dropped).",
		},
		[]string{"channel", "result"},
	)

	gatewayLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "club_payments_gateway_latency_seconds",
			Help:    "Latency of order-creation calls to the payment gateway.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 4, 8, 15},
		},
		[]string{"result"},
	)
)

// MustRegister registers collectors with the default registry (idempotent).
func MustRegister() {
	once.Do(func() {
		prometheus.MustRegister(ordersTotal, confirmationsTotal, notificationsTotal, gatewayLatency)
	})
}

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func IncOrder(result string) {
	ordersTotal.WithLabelValues(norm(result)).Inc()
}

func IncConfirmation(state string) {
	confirmationsTotal.WithLabelValues(norm(state)).Inc()
}

func IncNotification(channel, result string) {
	notificationsTotal.WithLabelValues(norm(channel), norm(result)).Inc()
}

func ObserveGateway(result string, elapsed time.Duration) {
	gatewayLatency.WithLabelValues(norm(result)).Observe(elapsed.Seconds())
}
