/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package telemetry exposes Prometheus metrics and OpenTelemetry tracing for
// the diagnostics service.
package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// SimStepsTotal counts completed simulation steps.
	SimStepsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "aegir_sim_steps_total",
		Help: "Completed simulation steps.",
	})

	// SimTime reports the current simulation time in model units.
	SimTime = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "aegir_sim_time",
		Help: "Current simulation time.",
	})

	// SimTimestep reports the timestep used for the last step.
	SimTimestep = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "aegir_sim_timestep",
		Help: "Timestep of the most recent simulation step.",
	})

	// DiagnosticSamplesTotal counts samples folded into running averages.
	DiagnosticSamplesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aegir_diagnostic_samples_total",
		Help: "Samples accumulated into windowed averages.",
	}, []string{"diagnostic"})

	// DiagnosticActuationsTotal counts closed averaging windows.
	DiagnosticActuationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aegir_diagnostic_actuations_total",
		Help: "Averaging windows closed (finalized averages produced).",
	}, []string{"diagnostic"})

	// DiagnosticWarningsTotal counts advisory conditions by kind:
	// degenerate_window, premature_read.
	DiagnosticWarningsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aegir_diagnostic_warnings_total",
		Help: "Advisory diagnostic conditions, by kind.",
	}, []string{"diagnostic", "kind"})

	// StoreWritesTotal counts persisted window averages by outcome.
	StoreWritesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aegir_store_writes_total",
		Help: "Window average rows written, by outcome.",
	}, []string{"outcome"})

	// EventsPublishedTotal counts events published to the bus.
	EventsPublishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aegir_events_published_total",
		Help: "Events published, by type.",
	}, []string{"event_type"})

	// APIRequestsTotal counts status API requests.
	APIRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aegir_api_requests_total",
		Help: "Status API requests.",
	}, []string{"method", "endpoint", "status"})

	// APIRequestDuration observes status API latency.
	APIRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "aegir_api_request_duration_seconds",
		Help:    "Status API request duration.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "endpoint", "status"})

	// APIActiveConnections gauges in-flight status API requests.
	APIActiveConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "aegir_api_active_connections",
		Help: "In-flight status API requests.",
	})
)

// Handler exposes the Prometheus metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
