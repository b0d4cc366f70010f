// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package profiling owns the profile signal: the continuous-profiling
// agent and the periodic resource-usage sampler. Both run outside the
// request-handling concurrency domain, started at process init and
// stopped on graceful shutdown.
package profiling

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/AleutianAI/SignalDemo/services/demo/observability"
)

// =============================================================================
// Resource Sampler
// =============================================================================

// RuntimeRecorder receives periodic resource snapshots.
//
// Implemented by the observability metrics handle.
type RuntimeRecorder interface {
	SetRuntimeStats(observability.RuntimeSnapshot)
}

// ResourceSampler periodically records CPU/memory resource snapshots.
//
// # Description
//
// Manages the lifecycle of a background goroutine that samples the Go
// runtime at a fixed interval and publishes the snapshot through the
// recorder. Uses the ticker + done channel pattern for graceful
// shutdown.
//
// # Thread Safety
//
// All public methods are thread-safe; a mutex protects the running
// state.
type ResourceSampler struct {
	recorder RuntimeRecorder
	interval time.Duration
	done     chan struct{}
	mu       sync.Mutex
	running  bool
}

// NewResourceSampler creates a sampler publishing to the given recorder.
//
// # Inputs
//
//   - recorder: Snapshot destination, typically the metrics handle.
//   - interval: Fixed sampling interval. Must be positive.
//
// # Outputs
//
//   - *ResourceSampler: Ready to Start().
func NewResourceSampler(recorder RuntimeRecorder, interval time.Duration) *ResourceSampler {
	return &ResourceSampler{
		recorder: recorder,
		interval: interval,
		done:     make(chan struct{}),
	}
}

// Start begins the background sampling goroutine.
//
// # Description
//
// Takes an immediate snapshot, then samples at the configured interval
// until Stop() is called or the context is cancelled.
//
// # Outputs
//
//   - error: Non-nil if the sampler is already running.
func (s *ResourceSampler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("resource sampler is already running")
	}
	s.running = true
	// Fresh channel per run so a restart never observes a closed one.
	// The goroutine gets its own reference; only Stop touches s.done.
	done := make(chan struct{})
	s.done = done
	s.mu.Unlock()

	slog.Info("resource sampler starting", "interval", s.interval.String())
	go s.runLoop(ctx, done)
	return nil
}

// Stop gracefully stops the sampler. Safe to call multiple times.
func (s *ResourceSampler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	slog.Info("resource sampler stopping")
	close(s.done)
	s.running = false
}

// SampleNow takes one snapshot immediately, outside the schedule.
func (s *ResourceSampler) SampleNow() {
	s.snapshot()
}

// runLoop is the sampler goroutine. It selects on its own done channel
// so a Stop/Start cycle cannot race the field reassignment.
func (s *ResourceSampler) runLoop(ctx context.Context, done <-chan struct{}) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.snapshot()

	for {
		select {
		case <-ctx.Done():
			slog.Info("resource sampler stopped (context cancelled)")
			return
		case <-done:
			slog.Info("resource sampler stopped (stop requested)")
			return
		case <-ticker.C:
			s.snapshot()
		}
	}
}

// snapshot reads the runtime and publishes one resource snapshot.
func (s *ResourceSampler) snapshot() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	s.recorder.SetRuntimeStats(observability.RuntimeSnapshot{
		Goroutines:     runtime.NumGoroutine(),
		HeapAllocBytes: m.HeapAlloc,
		HeapSysBytes:   m.HeapSys,
		GCCycles:       m.NumGC,
	})
}
