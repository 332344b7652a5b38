// Package metrics exposes the watch-mode revalidation results to Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the gauges published by the revalidation job.
type Metrics struct {
	registry *prometheus.Registry

	ValidationErrors   prometheus.Gauge
	ValidationWarnings prometheus.Gauge
	EventsTotal        prometheus.Gauge
	SourcesTotal       prometheus.Gauge
	AssociationsTotal  prometheus.Gauge
	LastRunTimestamp   prometheus.Gauge
	LastRunSuccess     prometheus.Gauge
}

// New builds the metric set on a private registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		ValidationErrors: factory.NewGauge(prometheus.GaugeOpts{
			Name: "incident_validation_errors",
			Help: "Blocking errors found by the last revalidation run.",
		}),
		ValidationWarnings: factory.NewGauge(prometheus.GaugeOpts{
			Name: "incident_validation_warnings",
			Help: "Non-blocking warnings found by the last revalidation run.",
		}),
		EventsTotal: factory.NewGauge(prometheus.GaugeOpts{
			Name: "incident_events_total",
			Help: "Events in the published snapshot.",
		}),
		SourcesTotal: factory.NewGauge(prometheus.GaugeOpts{
			Name: "incident_sources_total",
			Help: "Sources in the published snapshot.",
		}),
		AssociationsTotal: factory.NewGauge(prometheus.GaugeOpts{
			Name: "incident_associations_total",
			Help: "Associations in the published snapshot.",
		}),
		LastRunTimestamp: factory.NewGauge(prometheus.GaugeOpts{
			Name: "incident_revalidation_last_run_timestamp_seconds",
			Help: "Unix time of the last revalidation run.",
		}),
		LastRunSuccess: factory.NewGauge(prometheus.GaugeOpts{
			Name: "incident_revalidation_last_run_success",
			Help: "1 when the last revalidation run produced zero blocking errors.",
		}),
	}
}

// ObserveRun records the outcome of one revalidation pass.
func (m *Metrics) ObserveRun(errors, warnings, events, sources, associations int, at time.Time) {
	m.ValidationErrors.Set(float64(errors))
	m.ValidationWarnings.Set(float64(warnings))
	m.EventsTotal.Set(float64(events))
	m.SourcesTotal.Set(float64(sources))
	m.AssociationsTotal.Set(float64(associations))
	m.LastRunTimestamp.Set(float64(at.Unix()))
	if errors == 0 {
		m.LastRunSuccess.Set(1)
	} else {
		m.LastRunSuccess.Set(0)
	}
}

// Handler serves the /metrics endpoint for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
