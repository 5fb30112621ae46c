// Package metrics declares the Prometheus collectors of the relay.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// OutcomeDelivered labels invocations the webhook accepted. Failures use their relay.Kind.
const OutcomeDelivered = "delivered"

var (
	RelaysTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_relay_invocations_total",
			Help: "Relay invocations by outcome",
		},
		[]string{"outcome"}, // delivered|bad_request|misconfigured|upstream_rejected|upstream_unreachable
	)

	DispatchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "webhook_relay_dispatch_duration_seconds",
			Help:    "Duration of the outbound webhook call",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"outcome"},
	)
)

func MustRegister(r prometheus.Registerer) {
	r.MustRegister(
		RelaysTotal,
		DispatchDuration,
	)
}
