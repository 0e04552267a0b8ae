package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Reasons an inbound message was ignored.
const (
	ignoredParse       = "parse"
	ignoredUnknownRoom = "unknown_room"
	ignoredDirection   = "direction"
)

// Metrics holds the hub's Prometheus collectors on a private registry.
type Metrics struct {
	reg *prometheus.Registry

	ChannelsConnected prometheus.Gauge
	UpdatesAccepted   prometheus.Counter
	MessagesIgnored   *prometheus.CounterVec
	SendFailures      prometheus.Counter
	MirrorWrites      *prometheus.CounterVec
}

// NewMetrics registers every collector, plus Go runtime and process stats.
func NewMetrics() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		ChannelsConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "roomboard_channels_connected",
			Help: "Live WebSocket channels registered with the hub.",
		}),
		UpdatesAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "roomboard_updates_accepted_total",
			Help: "Room status updates applied and broadcast.",
		}),
		MessagesIgnored: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "roomboard_messages_ignored_total",
			Help: "Inbound messages dropped without a reply.",
		}, []string{"reason"}),
		SendFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "roomboard_send_failures_total",
			Help: "Sends that failed and dropped the channel.",
		}),
		MirrorWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "roomboard_mirror_writes_total",
			Help: "Durable mirror write outcomes.",
		}, []string{"result"}),
	}
	m.reg.MustRegister(
		m.ChannelsConnected,
		m.UpdatesAccepted,
		m.MessagesIgnored,
		m.SendFailures,
		m.MirrorWrites,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveMirror counts one mirror write outcome.
func (m *Metrics) ObserveMirror(result string) {
	m.MirrorWrites.WithLabelValues(result).Inc()
}

// Handler exposes the registry at /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}
