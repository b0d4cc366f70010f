// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package simulate implements the synthetic workload engine for the demo
// telemetry service: bounded random latencies, classified error outcomes,
// simulated dependency calls, and concurrent load bursts. Every branch is
// driven through the Decider abstraction so tests can force deterministic
// outcomes instead of asserting on random draws.
package simulate

import (
	"math/rand"
	"sync"
	"time"
)

// =============================================================================
// Decider: Seedable Random Source
// =============================================================================

// Decider is the random-source abstraction behind all simulated outcomes.
//
// # Description
//
// Handlers never call math/rand directly. They draw latencies, success
// outcomes, and branch choices through a Decider, which keeps the
// simulation seedable and lets tests substitute a fixed implementation.
//
// # Thread Safety
//
// Implementations must be safe for concurrent use; one Decider is shared
// by all request handlers.
type Decider interface {
	// Duration returns a uniformly distributed duration in [min, max].
	Duration(min, max time.Duration) time.Duration

	// Outcome returns true with the given probability in [0, 1].
	Outcome(successRate float64) bool

	// IntBetween returns a uniformly distributed int in [min, max].
	IntBetween(min, max int) int

	// Pick returns a uniformly distributed index in [0, n).
	Pick(n int) int
}

// randDecider implements Decider on top of a seeded math/rand source.
//
// A mutex guards the underlying *rand.Rand, which is not safe for
// concurrent use on its own. The critical section is a single draw.
type randDecider struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewDecider creates a Decider seeded with the given value.
//
// # Inputs
//
//   - seed: Seed for the underlying random source. Pass time.Now().UnixNano()
//     in production; a fixed value reproduces a simulation run exactly.
//
// # Outputs
//
//   - Decider: Safe for concurrent use by all handlers.
func NewDecider(seed int64) Decider {
	return &randDecider{r: rand.New(rand.NewSource(seed))}
}

// Duration returns a uniform duration in [min, max].
func (d *randDecider) Duration(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return min + time.Duration(d.r.Int63n(int64(max-min)+1))
}

// Outcome returns true with probability successRate.
func (d *randDecider) Outcome(successRate float64) bool {
	if successRate >= 1 {
		return true
	}
	if successRate <= 0 {
		return false
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.r.Float64() < successRate
}

// IntBetween returns a uniform int in [min, max].
func (d *randDecider) IntBetween(min, max int) int {
	if max <= min {
		return min
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return min + d.r.Intn(max-min+1)
}

// Pick returns a uniform index in [0, n).
func (d *randDecider) Pick(n int) int {
	if n <= 1 {
		return 0
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.r.Intn(n)
}

// =============================================================================
// Fixed Decider (for testing)
// =============================================================================

// FixedDecider is a deterministic Decider for tests.
//
// # Description
//
// Duration and IntBetween always return their lower bound, Outcome returns
// the configured Succeed value, and Pick returns the configured Choice
// (clamped to the valid range). Use it to pin a handler to one simulated
// branch without seeding real randomness.
type FixedDecider struct {
	// Succeed is the value returned by every Outcome draw.
	Succeed bool

	// Choice is the index returned by Pick, clamped to [0, n).
	Choice int
}

// Duration returns min.
func (f *FixedDecider) Duration(min, _ time.Duration) time.Duration { return min }

// Outcome returns the configured Succeed value.
func (f *FixedDecider) Outcome(_ float64) bool { return f.Succeed }

// IntBetween returns min.
func (f *FixedDecider) IntBetween(min, _ int) int { return min }

// Pick returns Choice clamped to [0, n).
func (f *FixedDecider) Pick(n int) int {
	if f.Choice < 0 || n <= 0 {
		return 0
	}
	if f.Choice >= n {
		return n - 1
	}
	return f.Choice
}
