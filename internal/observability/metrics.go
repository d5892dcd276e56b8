package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "meteo_relay"

// Metrics holds the Prometheus counters and gauges for the relay.
type Metrics struct {
	PayloadsReceived     prometheus.Counter
	PayloadsRejected     *prometheus.CounterVec // labels: reason={empty,unrecognized,malformed}
	ObservationsAccepted *prometheus.CounterVec // labels: category
	Publications         *prometheus.CounterVec // labels: outcome={success,error}
	RevealAttempts       *prometheus.CounterVec // labels: outcome={revealed,denied,empty}

	PipelineRunning    prometheus.Gauge
	TransportConnected prometheus.Gauge
	DisplayTemperature prometheus.Gauge
}

// NewMetrics creates and registers all relay metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.PayloadsReceived,
		m.PayloadsRejected,
		m.ObservationsAccepted,
		m.Publications,
		m.RevealAttempts,
		m.PipelineRunning,
		m.TransportConnected,
		m.DisplayTemperature,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		PayloadsReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payloads_received_total",
			Help:      "Total payloads delivered by the transport.",
		}),
		PayloadsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payloads_rejected_total",
			Help:      "Payloads dropped during classification, by reason.",
		}, []string{"reason"}),
		ObservationsAccepted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "observations_accepted_total",
			Help:      "Observations rendered, by category.",
		}, []string{"category"}),
		Publications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publications_total",
			Help:      "Downstream observation publications by outcome.",
		}, []string{"outcome"}),
		RevealAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reveal_attempts_total",
			Help:      "Passphrase reveal attempts by outcome.",
		}, []string{"outcome"}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is consuming, 0 when shut down.",
		}),
		TransportConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "transport_connected",
			Help:      "1 while the transport connection is up.",
		}),
		DisplayTemperature: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "display_temperature_celsius",
			Help:      "Temperature currently shown on the display.",
		}),
	}
}
