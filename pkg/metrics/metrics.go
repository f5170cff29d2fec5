// Package metrics holds the Prometheus collectors of every component.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups all collectors on a dedicated registry
type Metrics struct {
	registry *prometheus.Registry

	ReadingsIngested  *prometheus.CounterVec
	ReadingsRejected  *prometheus.CounterVec
	StoreLatency      *prometheus.HistogramVec
	ModeChanges       prometheus.Counter
	ModeSubscribers   prometheus.Gauge
	ModeEvictions     prometheus.Counter
	RelaySessions     prometheus.Gauge
	RelayUpstreams    prometheus.Gauge
	RelayBytes        prometheus.Counter
	RelaySessionsDrop *prometheus.CounterVec
}

// New creates the collectors and registers them on a fresh registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		ReadingsIngested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "readings_ingested_total",
			Help: "Sensor readings accepted and committed to the store.",
		}, []string{"kind"}),
		ReadingsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "readings_rejected_total",
			Help: "Sensor payloads rejected by validation or persistence.",
		}, []string{"kind", "field"}),
		StoreLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "store_latency_seconds",
			Help:    "Latency of record store operations.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		}, []string{"op"}),
		ModeChanges: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mode_changes_total",
			Help: "Mode change requests applied and broadcast.",
		}),
		ModeSubscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mode_subscribers",
			Help: "Observers currently subscribed to mode updates.",
		}),
		ModeEvictions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mode_subscribers_evicted_total",
			Help: "Observers dropped because they could not keep up with mode updates.",
		}),
		RelaySessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "relay_sessions",
			Help: "Downstream video relay sessions currently open.",
		}),
		RelayUpstreams: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "relay_upstream_connections",
			Help: "Upstream camera connections currently open.",
		}),
		RelayBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "relay_bytes_total",
			Help: "Bytes read from the upstream camera.",
		}),
		RelaySessionsDrop: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "relay_sessions_dropped_total",
			Help: "Relay sessions terminated by the relay.",
		}, []string{"reason"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.ReadingsIngested,
		m.ReadingsRejected,
		m.StoreLatency,
		m.ModeChanges,
		m.ModeSubscribers,
		m.ModeEvictions,
		m.RelaySessions,
		m.RelayUpstreams,
		m.RelayBytes,
		m.RelaySessionsDrop,
	)

	return m
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
