// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/SignalDemo/services/demo/config"
	"github.com/AleutianAI/SignalDemo/services/demo/datatypes"
	"github.com/AleutianAI/SignalDemo/services/demo/observability"
	"github.com/AleutianAI/SignalDemo/services/demo/simulate"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fastSim is a simulation shape with millisecond-scale delays so handler
// tests run quickly.
func fastSim() config.Simulation {
	return config.Simulation{
		SlowMin:             time.Millisecond,
		SlowMax:             2 * time.Millisecond,
		CPUBurnIterations:   1000,
		TimeoutThreshold:    2 * time.Millisecond,
		TimeoutSlack:        time.Millisecond,
		ExternalMin:         time.Millisecond,
		ExternalMax:         2 * time.Millisecond,
		ExternalSuccessRate: 0.9,
		BurstMin:            3,
		BurstMax:            6,
		BurstCap:            20,
		LoadConcurrency:     20,
		LoadSuccessRate:     0.95,
	}
}

func testDeps(d simulate.Decider) Deps {
	return Deps{
		Metrics: observability.NewRequestMetrics(prometheus.NewRegistry()),
		Decider: d,
		Sim:     fastSim(),
	}
}

func serve(handler gin.HandlerFunc, path, target string) *httptest.ResponseRecorder {
	router := gin.New()
	router.GET(path, handler)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

// ============================================================================
// Slow Handler Tests
// ============================================================================

func TestSlow_CompletesWithDrawnDuration(t *testing.T) {
	deps := testDeps(&simulate.FixedDecider{Succeed: true})

	w := serve(Slow(deps), "/slow", "/slow")

	require.Equal(t, http.StatusOK, w.Code)
	var resp datatypes.SlowResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Slow operation completed", resp.Message)
	assert.Equal(t, 0.001, resp.DurationSeconds)
	assert.Greater(t, resp.Result, 0.0)
}

// ============================================================================
// Error Handler Tests
// ============================================================================

func TestSimulateError_ExplicitKinds(t *testing.T) {
	tests := []struct {
		query      string
		wantStatus int
		wantKind   string
	}{
		{"type=500", http.StatusInternalServerError, "500"},
		{"type=404", http.StatusNotFound, "404"},
		{"type=timeout", http.StatusGatewayTimeout, "timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			deps := testDeps(&simulate.FixedDecider{})

			w := serve(SimulateError(deps), "/error", "/error?"+tt.query)

			require.Equal(t, tt.wantStatus, w.Code)
			var rec datatypes.ErrorRecord
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rec))
			assert.Equal(t, tt.wantKind, rec.Kind)
			assert.NotEmpty(t, rec.Error)
		})
	}
}

func TestSimulateError_RandomResolvesThroughDecider(t *testing.T) {
	tests := []struct {
		choice     int
		wantStatus int
	}{
		{0, http.StatusInternalServerError},
		{1, http.StatusNotFound},
		{2, http.StatusGatewayTimeout},
		{3, http.StatusOK},
	}

	for _, tt := range tests {
		deps := testDeps(&simulate.FixedDecider{Choice: tt.choice})
		w := serve(SimulateError(deps), "/error", "/error")
		assert.Equal(t, tt.wantStatus, w.Code, "choice %d", tt.choice)
	}
}

func TestSimulateError_UnknownTypeTreatedAsRandom(t *testing.T) {
	deps := testDeps(&simulate.FixedDecider{Choice: 3})
	w := serve(SimulateError(deps), "/error", "/error?type=teapot")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "No error occurred")
}

// ============================================================================
// External Handler Tests
// ============================================================================

func TestExternal_Success(t *testing.T) {
	deps := testDeps(&simulate.FixedDecider{Succeed: true})

	w := serve(External(deps), "/external", "/external")

	require.Equal(t, http.StatusOK, w.Code)
	var resp datatypes.ExternalResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "External call successful", resp.Message)
	assert.Equal(t, 1.0, resp.LatencyMs)
}

func TestExternal_DependencyFailure(t *testing.T) {
	deps := testDeps(&simulate.FixedDecider{Succeed: false})

	w := serve(External(deps), "/external", "/external")

	require.Equal(t, http.StatusBadGateway, w.Code)
	var rec datatypes.ErrorRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rec))
	assert.Equal(t, "dependency_failure", rec.Kind)
}

// ============================================================================
// Load Handler Tests
// ============================================================================

func TestGenerateLoad_ExplicitCount(t *testing.T) {
	deps := testDeps(&simulate.FixedDecider{Succeed: true, Choice: 0})

	w := serve(GenerateLoad(deps), "/generate-load", "/generate-load?count=5")

	require.Equal(t, http.StatusOK, w.Code)
	var resp datatypes.LoadResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 5, resp.Requested)
	assert.Equal(t, 5, resp.Successes)
	assert.Equal(t, 0, resp.Failures)
	assert.Equal(t, resp.Requested, resp.Successes+resp.Failures)

	assert.Equal(t, 5.0, testutil.ToFloat64(
		deps.Metrics.LoadOperationsTotal.WithLabelValues("fast", "success")))
}

func TestGenerateLoad_CountClampedToCap(t *testing.T) {
	deps := testDeps(&simulate.FixedDecider{Succeed: true, Choice: 0})

	w := serve(GenerateLoad(deps), "/generate-load", "/generate-load?count=9999")

	require.Equal(t, http.StatusOK, w.Code)
	var resp datatypes.LoadResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 20, resp.Requested, "count clamps to the configured cap")
}

func TestGenerateLoad_CountFloorIsOne(t *testing.T) {
	deps := testDeps(&simulate.FixedDecider{Succeed: true, Choice: 0})

	w := serve(GenerateLoad(deps), "/generate-load", "/generate-load?count=0")

	var resp datatypes.LoadResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Requested)
}

func TestGenerateLoad_DefaultDrawWhenNoCount(t *testing.T) {
	deps := testDeps(&simulate.FixedDecider{Succeed: true, Choice: 0})

	w := serve(GenerateLoad(deps), "/generate-load", "/generate-load")

	var resp datatypes.LoadResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Requested, "fixed decider draws the range minimum")
}

func TestGenerateLoad_MalformedCountFallsBackToDraw(t *testing.T) {
	deps := testDeps(&simulate.FixedDecider{Succeed: true, Choice: 0})

	w := serve(GenerateLoad(deps), "/generate-load", "/generate-load?count=abc")

	var resp datatypes.LoadResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Requested)
}

// ============================================================================
// Home and Health Tests
// ============================================================================

func TestHome_ListsRoutes(t *testing.T) {
	w := serve(Home(), "/", "/")

	require.Equal(t, http.StatusOK, w.Code)
	var resp datatypes.RouteListing
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	for _, route := range []string{"/", "/slow", "/error", "/external", "/generate-load", "/metrics", "/health"} {
		assert.Contains(t, resp.Endpoints, route)
	}
}

func TestHealthCheck_AlwaysHealthy(t *testing.T) {
	for i := 0; i < 5; i++ {
		w := serve(HealthCheck(), "/health", "/health")

		require.Equal(t, http.StatusOK, w.Code)
		var resp datatypes.HealthStatus
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "healthy", resp.Status)
		assert.Equal(t, datatypes.ServiceName, resp.Service)
		assert.NotZero(t, resp.Timestamp)
	}
}
