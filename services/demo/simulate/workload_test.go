// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package simulate

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// Error Kind Tests
// ============================================================================

func TestParseErrorKind(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want ErrorKind
	}{
		{"internal", "500", KindInternal},
		{"not found", "404", KindNotFound},
		{"timeout", "timeout", KindTimeout},
		{"random", "random", KindRandom},
		{"empty defaults to random", "", KindRandom},
		{"unknown defaults to random", "teapot", KindRandom},
		{"success is not requestable", "success", KindRandom},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseErrorKind(tt.raw))
		})
	}
}

func TestResolve_PassesThroughConcreteKinds(t *testing.T) {
	d := &FixedDecider{Choice: 0}
	for _, kind := range []ErrorKind{KindInternal, KindNotFound, KindTimeout, KindSuccess} {
		assert.Equal(t, kind, Resolve(d, kind))
	}
}

func TestResolve_RandomDrawsFromClosedSet(t *testing.T) {
	for choice, want := range map[int]ErrorKind{
		0: KindInternal,
		1: KindNotFound,
		2: KindTimeout,
		3: KindSuccess,
	} {
		d := &FixedDecider{Choice: choice}
		assert.Equal(t, want, Resolve(d, KindRandom))
	}
}

func TestResolve_SeededCoversAllOutcomes(t *testing.T) {
	d := NewDecider(3)
	seen := make(map[ErrorKind]bool)
	for i := 0; i < 1000; i++ {
		seen[Resolve(d, KindRandom)] = true
	}
	for _, kind := range resolvableKinds {
		assert.True(t, seen[kind], "kind %s never drawn over 1000 resolutions", kind)
	}
}

func TestErrorKind_StatusCode(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, KindInternal.StatusCode())
	assert.Equal(t, http.StatusNotFound, KindNotFound.StatusCode())
	assert.Equal(t, http.StatusGatewayTimeout, KindTimeout.StatusCode())
	assert.Equal(t, http.StatusOK, KindSuccess.StatusCode())
	assert.Equal(t, http.StatusOK, KindRandom.StatusCode())
}

// ============================================================================
// Sleep Tests
// ============================================================================

func TestSleep_CompletesWhenNotCancelled(t *testing.T) {
	err := Sleep(context.Background(), time.Millisecond)
	assert.NoError(t, err)
}

func TestSleep_ReturnsOnCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := Sleep(ctx, 10*time.Second)
	elapsed := time.Since(start)

	require.ErrorIs(t, err, context.Canceled)
	assert.Less(t, elapsed, time.Second, "cancelled sleep must return promptly")
}

func TestSleep_ZeroDurationReturnsImmediately(t *testing.T) {
	assert.NoError(t, Sleep(context.Background(), 0))
	assert.NoError(t, Sleep(context.Background(), -time.Second))
}

// ============================================================================
// External Call Tests
// ============================================================================

func TestExternalCall_SuccessAndFailure(t *testing.T) {
	cfg := ExternalConfig{
		MinLatency:  time.Millisecond,
		MaxLatency:  time.Millisecond,
		SuccessRate: 0.9,
	}

	res, err := ExternalCall(context.Background(), &FixedDecider{Succeed: true}, cfg)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, time.Millisecond, res.Latency)

	res, err = ExternalCall(context.Background(), &FixedDecider{Succeed: false}, cfg)
	require.NoError(t, err)
	assert.False(t, res.Success)
}

func TestExternalCall_CancelledDuringLatency(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := ExternalConfig{
		MinLatency:  10 * time.Second,
		MaxLatency:  10 * time.Second,
		SuccessRate: 1.0,
	}
	res, err := ExternalCall(ctx, &FixedDecider{Succeed: true}, cfg)
	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, res.Success)
}

// ============================================================================
// CPU Burn Tests
// ============================================================================

func TestBurnCPU(t *testing.T) {
	assert.Zero(t, BurnCPU(0))
	a := BurnCPU(10000)
	b := BurnCPU(10000)
	assert.Equal(t, a, b, "burn is deterministic for a fixed iteration count")
	assert.Greater(t, a, 0.0)
}
