// Package metrics exposes Prometheus collectors for the chat core.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "studyhall_connections_active",
		Help: "Live WebSocket connections.",
	})
	EventsBroadcast = promauto.NewCounter(prometheus.CounterOpts{
		Name: "studyhall_events_broadcast_total",
		Help: "Per-connection event deliveries.",
	})
	EventsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "studyhall_events_dropped_total",
		Help: "Deliveries skipped because a connection's send buffer was full.",
	})
	MessagesPersisted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "studyhall_messages_persisted_total",
		Help: "Messages durably appended to the log.",
	})
)

// Handler serves the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
