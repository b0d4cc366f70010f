// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package handlers implements the HTTP routes of the demo telemetry
// service. Each handler executes a simulated workload, emits telemetry
// on every signal channel through the injected dependencies, and
// returns a status reflecting the simulated outcome.
package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/AleutianAI/SignalDemo/services/demo/config"
	"github.com/AleutianAI/SignalDemo/services/demo/observability"
	"github.com/AleutianAI/SignalDemo/services/demo/simulate"
	"github.com/AleutianAI/SignalDemo/services/demo/telemetry"
)

// tracerName scopes the spans created inside handlers.
const tracerName = "signaldemo.handlers"

// Deps holds everything a handler needs, injected at route setup.
//
// # Fields
//
//   - Metrics: Prometheus metrics handle (shared, atomic updates).
//   - Business: OTel business-operation counters. May be nil in tests.
//   - Decider: Random source behind all simulated outcomes.
//   - Sim: The simulation shape from configuration.
//   - Tracer: Tracer for handler child spans. Nil falls back to the
//     global provider, so tests can record spans without mutating it.
type Deps struct {
	Metrics  *observability.RequestMetrics
	Business *telemetry.BusinessMetrics
	Decider  simulate.Decider
	Sim      config.Simulation
	Tracer   trace.Tracer
}

// tracer returns the injected tracer, or the global one when unset.
func (d Deps) tracer() trace.Tracer {
	if d.Tracer != nil {
		return d.Tracer
	}
	return otel.Tracer(tracerName)
}

// spanFromContext returns the request's root span (created by otelgin).
func spanFromContext(c *gin.Context) trace.Span {
	return trace.SpanFromContext(c.Request.Context())
}

// recordBusiness increments a business counter, tolerating nil so tests
// can construct bare Deps.
func (d Deps) recordBusiness(ctx context.Context, op telemetry.OperationType) {
	if d.Business != nil {
		d.Business.Record(ctx, op)
	}
}
