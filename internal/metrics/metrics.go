// Package metrics exposes the hub's prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ConnectionsActive tracks currently registered connections.
	ConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "chathub",
		Name:      "connections_active",
		Help:      "Number of currently registered connections.",
	})

	// ConnectionsTotal counts admitted connections by subprotocol.
	ConnectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chathub",
		Name:      "connections_total",
		Help:      "Total admitted connections by negotiated subprotocol.",
	}, []string{"subprotocol"})

	// AdmissionRejections counts rejected upgrade requests by status code.
	AdmissionRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chathub",
		Name:      "admission_rejections_total",
		Help:      "Total rejected upgrade requests by HTTP status code.",
	}, []string{"code"})

	// BroadcastsDelivered counts envelopes delivered by fan-out.
	BroadcastsDelivered = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "chathub",
		Name:      "broadcasts_delivered_total",
		Help:      "Total envelopes delivered to broadcast recipients.",
	})

	// ProtocolErrors counts malformed or invalid inbound commands.
	ProtocolErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "chathub",
		Name:      "protocol_errors_total",
		Help:      "Total inbound frames answered with an error envelope.",
	})

	// LivenessTerminations counts connections terminated by the heartbeat.
	LivenessTerminations = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "chathub",
		Name:      "liveness_terminations_total",
		Help:      "Total connections terminated for missing a ping response.",
	})
)
