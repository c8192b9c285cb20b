// Package metrics defines the Prometheus instruments exposed at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BroadcastsTotal counts completed notify passes over the live channels.
	BroadcastsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shoptrack_broadcasts_total",
		Help: "Number of live-update broadcast passes.",
	})

	// BroadcastSendFailuresTotal counts per-connection send failures.
	// Failures are swallowed by design; this is the observable trace.
	BroadcastSendFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shoptrack_broadcast_send_failures_total",
		Help: "Number of failed live-update sends (connection dropped afterwards).",
	})

	// ConnectedClients tracks currently registered live channels.
	ConnectedClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "shoptrack_connected_clients",
		Help: "Number of currently connected live-update WebSocket clients.",
	})

	// EventsPublishFailuresTotal counts failed publishes to the events bridge.
	EventsPublishFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shoptrack_events_publish_failures_total",
		Help: "Number of failed publishes to the cross-instance events bridge.",
	})
)
