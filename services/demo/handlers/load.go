// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"

	"github.com/AleutianAI/SignalDemo/services/demo/datatypes"
	"github.com/AleutianAI/SignalDemo/services/demo/middleware"
	"github.com/AleutianAI/SignalDemo/services/demo/simulate"
	"github.com/AleutianAI/SignalDemo/services/demo/telemetry"
)

// GenerateLoad fires a burst of simulated internal operations.
//
// # Description
//
// The burst size comes from ?count= when present (clamped to
// [1, BurstCap]), otherwise from a uniform draw over the configured
// default range. Operations run concurrently with a bounded limit; each
// gets its own child span and a fast/medium/slow class. The summary's
// successes and failures always sum to the requested count for a burst
// that ran to completion.
func GenerateLoad(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		log := middleware.RequestLogger(c)

		n := burstSize(c.Query("count"), deps)

		span := spanFromContext(c)
		span.SetAttributes(attribute.Int("load.operations", n))
		log.Info("generating load", "operations", n)

		summary, err := simulate.RunLoad(ctx, deps.Decider,
			simulate.LoadConfig{
				Concurrency: deps.Sim.LoadConcurrency,
				SuccessRate: deps.Sim.LoadSuccessRate,
			},
			simulate.LoadJob{Target: n},
			&loadRecorder{deps: deps, ctx: ctx},
		)
		if err != nil {
			// Client gone mid-burst: partial telemetry is already flushed.
			log.Warn("load generation abandoned",
				"completed", summary.Successes+summary.Failures,
				"requested", summary.Requested,
				"error", err,
			)
			return
		}

		log.Info("load generation completed",
			"requested", summary.Requested,
			"successes", summary.Successes,
			"failures", summary.Failures,
			"duration_ms", float64(summary.Duration.Microseconds())/1000.0,
		)

		c.JSON(http.StatusOK, datatypes.LoadResponse{
			Message:    "Load generation completed",
			Requested:  summary.Requested,
			Successes:  summary.Successes,
			Failures:   summary.Failures,
			DurationMs: float64(summary.Duration.Microseconds()) / 1000.0,
		})
	}
}

// burstSize resolves the burst count from the query or the default draw.
func burstSize(raw string, deps Deps) int {
	if raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			if n < 1 {
				return 1
			}
			if n > deps.Sim.BurstCap {
				return deps.Sim.BurstCap
			}
			return n
		}
	}
	return deps.Decider.IntBetween(deps.Sim.BurstMin, deps.Sim.BurstMax)
}

// loadRecorder fans one operation outcome out to both metric stacks:
// the Prometheus load counter and the OTel business counter.
type loadRecorder struct {
	deps Deps
	ctx  context.Context
}

// RecordLoadOperation implements simulate.OpRecorder.
func (r *loadRecorder) RecordLoadOperation(class string, success bool) {
	if r.deps.Metrics != nil {
		r.deps.Metrics.RecordLoadOperation(class, success)
	}
	r.deps.recordBusiness(r.ctx, telemetry.LoadOperation(class))
}
