// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package telemetry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// disabledConfig turns every exporter off so tests stay hermetic.
func disabledConfig() Config {
	cfg := DefaultConfig()
	cfg.TraceExporter = "none"
	cfg.MetricExporter = "none"
	return cfg
}

// ============================================================================
// Config Tests
// ============================================================================

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "signaldemo", cfg.ServiceName)
	assert.Equal(t, "otlp", cfg.TraceExporter)
	assert.Equal(t, "prometheus", cfg.MetricExporter)
	assert.Equal(t, "localhost:4317", cfg.OTLPEndpoint)
	assert.True(t, cfg.OTLPInsecure)
}

// ============================================================================
// Init Tests
// ============================================================================

func TestInit_NilContext(t *testing.T) {
	//nolint:staticcheck // nil context is the case under test
	_, err := Init(nil, disabledConfig(), nil)
	require.ErrorIs(t, err, ErrNilContext)
}

func TestInit_AllExportersDisabled(t *testing.T) {
	tel, err := Init(context.Background(), disabledConfig(), nil)
	require.NoError(t, err)
	assert.Nil(t, tel.MetricsHandler)
	assert.NoError(t, tel.Shutdown(context.Background()))
}

func TestInit_UnknownTraceExporter(t *testing.T) {
	cfg := disabledConfig()
	cfg.TraceExporter = "jaeger"

	_, err := Init(context.Background(), cfg, nil)
	require.ErrorIs(t, err, ErrUnknownExporter)
}

func TestInit_UnknownMetricExporter(t *testing.T) {
	cfg := disabledConfig()
	cfg.MetricExporter = "statsd"

	_, err := Init(context.Background(), cfg, prometheus.NewRegistry())
	require.ErrorIs(t, err, ErrUnknownExporter)
}

func TestInit_PrometheusRequiresRegistry(t *testing.T) {
	cfg := disabledConfig()
	cfg.MetricExporter = "prometheus"

	_, err := Init(context.Background(), cfg, nil)
	require.ErrorIs(t, err, ErrNilRegistry)
}

func TestInit_PrometheusExporterServesScrapes(t *testing.T) {
	cfg := disabledConfig()
	cfg.MetricExporter = "prometheus"

	reg := prometheus.NewRegistry()
	tel, err := Init(context.Background(), cfg, reg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = tel.Shutdown(context.Background()) })

	require.NotNil(t, tel.MetricsHandler)

	w := httptest.NewRecorder()
	tel.MetricsHandler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

// TestInit_ScrapeHandlerIndependentOfExporter: the scrape endpoint must
// keep serving the native registry even when the OTel metric exporter is
// switched away from prometheus.
func TestInit_ScrapeHandlerIndependentOfExporter(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "native_requests_total",
		Help: "registered outside the OTel bridge",
	})
	require.NoError(t, reg.Register(counter))
	counter.Inc()

	tel, err := Init(context.Background(), disabledConfig(), reg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = tel.Shutdown(context.Background()) })

	require.NotNil(t, tel.MetricsHandler)

	w := httptest.NewRecorder()
	tel.MetricsHandler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "native_requests_total 1")
}

func TestShutdown_Idempotent(t *testing.T) {
	tel, err := Init(context.Background(), disabledConfig(), nil)
	require.NoError(t, err)

	assert.NoError(t, tel.Shutdown(context.Background()))
	assert.NoError(t, tel.Shutdown(context.Background()))
}
