// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package observability provides the Prometheus metrics handle for the
// demo telemetry service.
//
// # Description
//
// This package implements the request-level metrics scraped at /metrics:
//   - Request counters by route and status
//   - Request latency histograms by route
//   - Load-burst operation counters by class and outcome
//   - In-flight request gauge and runtime resource gauges
//
// # Integration
//
// The handle is constructed against an injected prometheus.Registerer and
// passed to the middleware, handlers, and resource sampler. There is no
// package-level singleton; tests construct isolated registries.
//
// # Thread Safety
//
// All metric operations are thread-safe via Prometheus's internal locking;
// counter increments are single atomic updates.
package observability

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace for all metrics.
const metricsNamespace = "signaldemo"

// Subsystems group the metric families.
const (
	httpSubsystem    = "http"
	loadSubsystem    = "load"
	runtimeSubsystem = "runtime"
)

// RequestMetrics holds all Prometheus metrics for the demo service.
//
// # Description
//
// Provides counters, histograms, and gauges for the simulated workload.
// Construct once at startup via NewRequestMetrics() and inject wherever
// recording happens.
//
// # Fields
//
//   - RequestsTotal: Counter of requests by route and status.
//   - RequestDuration: Histogram of handler latency by route.
//   - LoadOperationsTotal: Counter of load-burst operations by class and status.
//   - InflightRequests: Gauge of requests currently being handled.
//   - Goroutines, HeapAllocBytes, HeapSysBytes, GCCycles: Runtime snapshot
//     gauges fed by the background resource sampler.
//
// # Thread Safety
//
// All operations are thread-safe.
type RequestMetrics struct {
	// RequestsTotal counts requests by route and final status code.
	// Labels: route ("/slow", "/error", ...), status ("200", "500", ...)
	RequestsTotal *prometheus.CounterVec

	// RequestDuration measures handler latency in seconds.
	// Labels: route
	RequestDuration *prometheus.HistogramVec

	// LoadOperationsTotal counts load-burst operations.
	// Labels: class (fast, medium, slow), status (success, failure)
	LoadOperationsTotal *prometheus.CounterVec

	// InflightRequests tracks requests currently in a handler.
	InflightRequests prometheus.Gauge

	// Goroutines is the goroutine count at the last snapshot.
	Goroutines prometheus.Gauge

	// HeapAllocBytes is the live heap at the last snapshot.
	HeapAllocBytes prometheus.Gauge

	// HeapSysBytes is heap memory obtained from the OS at the last snapshot.
	HeapSysBytes prometheus.Gauge

	// GCCycles is the completed GC cycle count at the last snapshot.
	GCCycles prometheus.Gauge
}

// NewRequestMetrics creates and registers the service metrics.
//
// # Description
//
// Registers every metric family with the given registerer. Call once per
// registry; a second call against the same registry panics on duplicate
// registration.
//
// # Inputs
//
//   - reg: Target registry. Production passes the server's registry;
//     tests pass prometheus.NewRegistry() for isolation.
//
// # Outputs
//
//   - *RequestMetrics: The initialized handle.
func NewRequestMetrics(reg prometheus.Registerer) *RequestMetrics {
	factory := promauto.With(reg)

	return &RequestMetrics{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: httpSubsystem,
				Name:      "requests_total",
				Help:      "Total HTTP requests by route and status",
			},
			[]string{"route", "status"},
		),

		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: httpSubsystem,
				Name:      "request_duration_seconds",
				Help:      "Handler latency in seconds by route",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0, 3.0, 5.0, 10.0},
			},
			[]string{"route"},
		),

		LoadOperationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: loadSubsystem,
				Name:      "operations_total",
				Help:      "Total load-burst operations by class and outcome",
			},
			[]string{"class", "status"},
		),

		InflightRequests: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Subsystem: httpSubsystem,
				Name:      "inflight_requests",
				Help:      "Requests currently being handled",
			},
		),

		Goroutines: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Subsystem: runtimeSubsystem,
				Name:      "goroutines",
				Help:      "Goroutine count at the last resource snapshot",
			},
		),

		HeapAllocBytes: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Subsystem: runtimeSubsystem,
				Name:      "heap_alloc_bytes",
				Help:      "Live heap bytes at the last resource snapshot",
			},
		),

		HeapSysBytes: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Subsystem: runtimeSubsystem,
				Name:      "heap_sys_bytes",
				Help:      "Heap bytes obtained from the OS at the last resource snapshot",
			},
		),

		GCCycles: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Subsystem: runtimeSubsystem,
				Name:      "gc_cycles",
				Help:      "Completed GC cycles at the last resource snapshot",
			},
		),
	}
}

// =============================================================================
// Helper Methods
// =============================================================================

// RecordRequest records a completed request outcome.
//
// # Inputs
//
//   - route: The route that handled the request.
//   - status: The final HTTP status code.
func (m *RequestMetrics) RecordRequest(route string, status int) {
	m.RequestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
}

// ObserveDuration records a handler latency observation.
func (m *RequestMetrics) ObserveDuration(route string, seconds float64) {
	m.RequestDuration.WithLabelValues(route).Observe(seconds)
}

// RecordLoadOperation records one load-burst operation outcome.
//
// Satisfies simulate.OpRecorder.
func (m *RequestMetrics) RecordLoadOperation(class string, success bool) {
	status := "success"
	if !success {
		status = "failure"
	}
	m.LoadOperationsTotal.WithLabelValues(class, status).Inc()
}

// RequestStarted increments the in-flight gauge.
func (m *RequestMetrics) RequestStarted() {
	m.InflightRequests.Inc()
}

// RequestEnded decrements the in-flight gauge.
func (m *RequestMetrics) RequestEnded() {
	m.InflightRequests.Dec()
}

// RuntimeSnapshot is one sampled view of process resource usage.
type RuntimeSnapshot struct {
	Goroutines     int
	HeapAllocBytes uint64
	HeapSysBytes   uint64
	GCCycles       uint32
}

// SetRuntimeStats publishes a resource snapshot to the runtime gauges.
//
// Called by the background sampler at a fixed interval.
func (m *RequestMetrics) SetRuntimeStats(s RuntimeSnapshot) {
	m.Goroutines.Set(float64(s.Goroutines))
	m.HeapAllocBytes.Set(float64(s.HeapAllocBytes))
	m.HeapSysBytes.Set(float64(s.HeapSysBytes))
	m.GCCycles.Set(float64(s.GCCycles))
}
