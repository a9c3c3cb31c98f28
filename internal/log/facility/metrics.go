package facility

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts dispatch outcomes per facility.
type Metrics struct {
	dispatched  *prometheus.CounterVec
	suppressed  *prometheus.CounterVec
	writeErrors *prometheus.CounterVec
	activeGauge prometheus.Gauge
}

// NewMetrics registers the dispatch metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		dispatched: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "log",
			Name:      "messages_dispatched_total",
			Help:      "Messages delivered to a facility's destination.",
		}, []string{"facility"}),
		suppressed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "log",
			Name:      "messages_suppressed_total",
			Help:      "Messages dropped by a facility's severity threshold.",
		}, []string{"facility"}),
		writeErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "log",
			Name:      "write_errors_total",
			Help:      "Failed writes to a facility's destination.",
		}, []string{"facility"}),
		activeGauge: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "log",
			Name:      "active_facilities",
			Help:      "Facilities currently receiving messages.",
		}),
	}
}
