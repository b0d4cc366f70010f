// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package simulate

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"
)

// =============================================================================
// Load Generation
// =============================================================================

// OpClass is the latency class a load operation is assigned.
type OpClass string

const (
	// OpFast sleeps 10-100ms.
	OpFast OpClass = "fast"

	// OpMedium sleeps 100-500ms.
	OpMedium OpClass = "medium"

	// OpSlow sleeps 500ms-1s.
	OpSlow OpClass = "slow"
)

// opClasses is the pool a load operation's class is drawn from.
var opClasses = []OpClass{OpFast, OpMedium, OpSlow}

// latencyRange returns the sleep bounds for a class.
func (c OpClass) latencyRange() (time.Duration, time.Duration) {
	switch c {
	case OpFast:
		return 10 * time.Millisecond, 100 * time.Millisecond
	case OpMedium:
		return 100 * time.Millisecond, 500 * time.Millisecond
	default:
		return 500 * time.Millisecond, time.Second
	}
}

// OpRecorder receives per-operation outcomes for metric recording.
//
// Implemented by the observability metrics handle. The recorder must be
// safe under concurrent calls from every operation goroutine.
type OpRecorder interface {
	RecordLoadOperation(class string, success bool)
}

// LoadConfig bounds a load-generation burst.
type LoadConfig struct {
	// Concurrency caps the number of operations in flight at once.
	Concurrency int

	// SuccessRate is the per-operation success probability, in [0, 1].
	SuccessRate float64
}

// LoadJob is one burst of synthetic internal operations.
//
// Created and fully consumed within a single request; nothing about a
// job persists past its summary.
type LoadJob struct {
	// Target is the number of operations the burst runs.
	Target int
}

// LoadSummary reports the outcome of a completed burst.
//
// Successes+Failures always equals Requested for a burst that ran to
// completion; a cancelled burst returns an error alongside the partial
// counts.
type LoadSummary struct {
	Requested int           `json:"requested"`
	Successes int           `json:"successes"`
	Failures  int           `json:"failures"`
	Duration  time.Duration `json:"-"`
}

// RunLoad executes a burst of simulated internal operations.
//
// # Description
//
// Runs job.Target operations concurrently, bounded by cfg.Concurrency.
// Each operation draws a latency class (fast/medium/slow), sleeps inside
// its own child span, then draws success or failure. Outcomes are counted
// atomically and reported per-operation through the recorder.
//
// # Inputs
//
//   - ctx: Request context; cancellation abandons unstarted operations.
//   - d: Decider for class, latency, and outcome draws.
//   - cfg: Concurrency cap and per-operation success probability.
//   - job: The burst to run.
//   - rec: Per-operation metric recorder. May be nil.
//
// # Outputs
//
//   - LoadSummary: Successes and failures, summing to job.Target on
//     normal completion.
//   - error: ctx.Err() if the burst was abandoned mid-flight.
//
// # Thread Safety
//
// Safe for concurrent calls; all shared counters are atomic.
func RunLoad(ctx context.Context, d Decider, cfg LoadConfig, job LoadJob, rec OpRecorder) (LoadSummary, error) {
	tracer := otel.Tracer("signaldemo.simulate")

	start := time.Now()
	var successes, failures atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	if cfg.Concurrency > 0 {
		g.SetLimit(cfg.Concurrency)
	}

	for i := 0; i < job.Target; i++ {
		g.Go(func() error {
			class := opClasses[d.Pick(len(opClasses))]
			min, max := class.latencyRange()

			opCtx, span := tracer.Start(gctx, fmt.Sprintf("operation_%d", i))
			span.SetAttributes(attribute.String("operation.class", string(class)))

			if err := Sleep(opCtx, d.Duration(min, max)); err != nil {
				span.SetStatus(codes.Error, "operation abandoned")
				span.End()
				return err
			}

			ok := d.Outcome(cfg.SuccessRate)
			if ok {
				successes.Add(1)
			} else {
				failures.Add(1)
				span.SetStatus(codes.Error, "simulated operation failure")
				span.SetAttributes(attribute.String("error.kind", "load_operation"))
			}
			span.End()

			if rec != nil {
				rec.RecordLoadOperation(string(class), ok)
			}
			return nil
		})
	}

	err := g.Wait()
	summary := LoadSummary{
		Requested: job.Target,
		Successes: int(successes.Load()),
		Failures:  int(failures.Load()),
		Duration:  time.Since(start),
	}
	return summary, err
}
