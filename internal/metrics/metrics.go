package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "duelrooms"

// Metrics - collectors of the room server, registered on their own registry.
type Metrics struct {
	registry *prometheus.Registry

	RoomsActive   prometheus.Gauge
	Connections   prometheus.Gauge
	Joins         *prometheus.CounterVec
	Moves         *prometheus.CounterVec
	GamesFinished *prometheus.CounterVec
	Notifications *prometheus.CounterVec
}

func New() *Metrics {
	that := &Metrics{
		registry: prometheus.NewRegistry(),

		RoomsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rooms_active",
			Help:      "Number of rooms with at least one member.",
		}),
		Connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connections_active",
			Help:      "Number of open websocket connections.",
		}),
		Joins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "joins_total",
			Help:      "Join attempts by result.",
		}, []string{"result"}),
		Moves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "moves_total",
			Help:      "Moves by game type and result.",
		}, []string{"game_type", "result"}),
		GamesFinished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_finished_total",
			Help:      "Finished games by game type and outcome.",
		}, []string{"game_type", "result"}),
		Notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Lifecycle notifications by delivery result.",
		}, []string{"result"}),
	}

	that.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		that.RoomsActive,
		that.Connections,
		that.Joins,
		that.Moves,
		that.GamesFinished,
		that.Notifications,
	)

	return that
}

// Handler - exposition endpoint for this registry.
func (that *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(that.registry, promhttp.HandlerOpts{Registry: that.registry})
}
