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
	"net/http"
	"time"
)

// =============================================================================
// Error Kind Taxonomy
// =============================================================================

// ErrorKind classifies the synthetic error a request asks for.
//
// The taxonomy is closed: 500, 404, timeout, random, and success (the
// outcome "random" may resolve to). Unrecognized input normalizes to
// KindRandom rather than being rejected.
type ErrorKind string

const (
	// KindInternal simulates an internal server error (HTTP 500).
	KindInternal ErrorKind = "500"

	// KindNotFound simulates a missing resource (HTTP 404).
	KindNotFound ErrorKind = "404"

	// KindTimeout blocks past the configured threshold (HTTP 504).
	KindTimeout ErrorKind = "timeout"

	// KindRandom picks one of the other kinds, success included.
	KindRandom ErrorKind = "random"

	// KindSuccess is the no-error outcome a random draw may land on.
	KindSuccess ErrorKind = "success"
)

// resolvableKinds are the outcomes a KindRandom draw chooses between.
var resolvableKinds = []ErrorKind{KindInternal, KindNotFound, KindTimeout, KindSuccess}

// ParseErrorKind normalizes a client-supplied type parameter.
//
// # Description
//
// Maps the raw query value onto the closed taxonomy. Absent or
// unrecognized values become KindRandom; they are never rejected.
//
// # Inputs
//
//   - raw: The value of the "type" query parameter, possibly empty.
//
// # Outputs
//
//   - ErrorKind: A member of the closed taxonomy.
func ParseErrorKind(raw string) ErrorKind {
	switch ErrorKind(raw) {
	case KindInternal, KindNotFound, KindTimeout, KindRandom:
		return ErrorKind(raw)
	default:
		return KindRandom
	}
}

// Resolve collapses KindRandom into a concrete outcome.
//
// Non-random kinds pass through unchanged. KindRandom draws uniformly
// over {500, 404, timeout, success} via the Decider.
func Resolve(d Decider, kind ErrorKind) ErrorKind {
	if kind != KindRandom {
		return kind
	}
	return resolvableKinds[d.Pick(len(resolvableKinds))]
}

// StatusCode returns the HTTP status this kind produces.
func (k ErrorKind) StatusCode() int {
	switch k {
	case KindInternal:
		return http.StatusInternalServerError
	case KindNotFound:
		return http.StatusNotFound
	case KindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusOK
	}
}

// =============================================================================
// Simulated Request
// =============================================================================

// Request records the simulated lifecycle of one inbound HTTP call.
//
// # Description
//
// Ephemeral, one per request, owned exclusively by the handling
// goroutine. It exists so the handler can report one consistent outcome
// across every signal channel: the Status recorded here is the status
// the counter label, log severity, and span status are derived from.
//
// # Fields
//
//   - Route: The route name (e.g. "/slow").
//   - RequestedKind: The error kind the client asked for, if any.
//   - Latency: The latency drawn for this request.
//   - Status: The final HTTP status of the simulated outcome.
type Request struct {
	Route         string
	RequestedKind ErrorKind
	Latency       time.Duration
	Status        int
}

// =============================================================================
// Workload Primitives
// =============================================================================

// Sleep blocks for d or until the context is cancelled.
//
// # Description
//
// The only blocking primitive in the simulation. Select-based so a
// cancelled client abandons remaining simulated work immediately; the
// caller still flushes whatever telemetry the partial operation produced.
//
// # Inputs
//
//   - ctx: Cancellation context, typically the request context.
//   - d: How long to block. Callers draw d from bounded ranges, so every
//     simulated delay has a finite maximum.
//
// # Outputs
//
//   - error: ctx.Err() if cancelled before the timer fires, else nil.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// ExternalResult is the outcome of one simulated dependency call.
type ExternalResult struct {
	// Success reports whether the dependency draw succeeded.
	Success bool

	// Latency is the simulated round-trip time.
	Latency time.Duration
}

// ExternalConfig bounds the simulated dependency call.
type ExternalConfig struct {
	// MinLatency and MaxLatency bound the simulated round-trip time.
	MinLatency time.Duration
	MaxLatency time.Duration

	// SuccessRate is the probability the call succeeds, in [0, 1].
	SuccessRate float64
}

// ExternalCall simulates one outbound dependency call.
//
// # Description
//
// Draws a latency in the configured range, blocks for it (respecting
// cancellation), then draws success with the configured probability.
// There is no real dependency; the draw is the entire failure mode.
//
// # Outputs
//
//   - ExternalResult: Latency and success/failure of the draw.
//   - error: ctx.Err() if the client disconnected during the latency sleep.
func ExternalCall(ctx context.Context, d Decider, cfg ExternalConfig) (ExternalResult, error) {
	latency := d.Duration(cfg.MinLatency, cfg.MaxLatency)
	if err := Sleep(ctx, latency); err != nil {
		return ExternalResult{Latency: latency}, err
	}
	return ExternalResult{
		Success: d.Outcome(cfg.SuccessRate),
		Latency: latency,
	}, nil
}

// BurnCPU performs a bounded synthetic computation.
//
// # Description
//
// Accumulates a running sum over the given iteration count so the slow
// route produces an actual CPU profile sample, not just a sleep. The
// iteration count bounds the work; there is no I/O and no allocation in
// the loop.
func BurnCPU(iterations int) float64 {
	var result float64
	for i := 0; i < iterations; i++ {
		result += float64(i%7919) * 1.000001
	}
	return result
}
