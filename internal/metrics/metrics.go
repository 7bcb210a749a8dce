package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ActiveConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "signal_connections_active",
		Help: "Current number of live signal connections.",
	})
	TotalConnections = promauto.NewCounter(prometheus.CounterOpts{
		Name: "signal_connections_total",
		Help: "Total signal connections accepted.",
	})
	EventsReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "signal_events_received_total",
		Help: "Client events received, by event type.",
	}, []string{"type"})
	BroadcastDelivered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "signal_broadcast_delivered_total",
		Help: "Payloads delivered through room fan-out.",
	})
	BroadcastDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "signal_broadcast_dropped_total",
		Help: "Room fan-out deliveries dropped due to backpressure.",
	})
	RelayDelivered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "signal_relay_delivered_total",
		Help: "Directed relay payloads delivered.",
	})
	RelayMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "signal_relay_misses_total",
		Help: "Directed relay payloads dropped because the target was not registered.",
	})
	TypingExpired = promauto.NewCounter(prometheus.CounterOpts{
		Name: "signal_typing_expired_total",
		Help: "Typing entries expired by the liveness sweep.",
	})
)
