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
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/AleutianAI/SignalDemo/services/demo/datatypes"
	"github.com/AleutianAI/SignalDemo/services/demo/middleware"
	"github.com/AleutianAI/SignalDemo/services/demo/simulate"
	"github.com/AleutianAI/SignalDemo/services/demo/telemetry"
)

// Slow simulates a slow operation.
//
// # Description
//
// Sleeps a uniform duration in the configured range inside a
// "slow_sleep" child span, then burns a bounded amount of CPU inside a
// "cpu_intensive_work" child span so the route shows up in CPU
// profiles. A client disconnect abandons the remaining work; telemetry
// already produced is flushed by the middleware.
func Slow(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		log := middleware.RequestLogger(c)

		sleep := deps.Decider.Duration(deps.Sim.SlowMin, deps.Sim.SlowMax)

		sleepCtx, span := deps.tracer().Start(ctx, "slow_sleep")
		span.SetAttributes(attribute.Float64("sleep.duration_seconds", sleep.Seconds()))
		err := simulate.Sleep(sleepCtx, sleep)
		span.End()
		if err != nil {
			log.Warn("slow operation abandoned", "error", err)
			return
		}

		_, burnSpan := deps.tracer().Start(ctx, "cpu_intensive_work")
		result := simulate.BurnCPU(deps.Sim.CPUBurnIterations)
		burnSpan.End()

		deps.recordBusiness(ctx, telemetry.OpSlowOperation)
		log.Info("slow operation completed", "sleep_seconds", sleep.Seconds())

		c.JSON(http.StatusOK, datatypes.SlowResponse{
			Message:         "Slow operation completed",
			DurationSeconds: sleep.Seconds(),
			Result:          result,
		})
	}
}

// SimulateError produces a classified synthetic error.
//
// # Description
//
// The type query parameter selects the kind: 500, 404, timeout, or
// random. Absent or unrecognized values default to random, which draws
// uniformly over {500, 404, timeout, success}. The timeout branch
// blocks past the configured threshold (bounded at threshold + slack)
// before answering 504. Every failure tags the span and the gin context
// with the resolved kind so the middleware emits a consistent outcome
// on all signals.
func SimulateError(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		log := middleware.RequestLogger(c)

		requested := simulate.ParseErrorKind(c.Query("type"))
		kind := simulate.Resolve(deps.Decider, requested)

		span := spanFromContext(c)
		span.SetAttributes(
			attribute.String("error.requested", string(requested)),
			attribute.String("error.resolved", string(kind)),
		)

		switch kind {
		case simulate.KindInternal:
			c.Set(middleware.ErrorKindKey, string(kind))
			log.Error("simulated internal error", "kind", kind)
			c.JSON(http.StatusInternalServerError, datatypes.ErrorRecord{
				Error:         "Internal server error",
				Kind:          string(kind),
				CorrelationID: middleware.CorrelationID(c),
			})

		case simulate.KindNotFound:
			c.Set(middleware.ErrorKindKey, string(kind))
			log.Warn("simulated not-found error", "kind", kind)
			c.JSON(http.StatusNotFound, datatypes.ErrorRecord{
				Error:         "Resource not found",
				Kind:          string(kind),
				CorrelationID: middleware.CorrelationID(c),
			})

		case simulate.KindTimeout:
			c.Set(middleware.ErrorKindKey, string(kind))
			block := deps.Sim.TimeoutThreshold + deps.Sim.TimeoutSlack
			log.Warn("simulating timeout", "block_seconds", block.Seconds())
			if err := simulate.Sleep(ctx, block); err != nil {
				log.Warn("timeout simulation abandoned", "error", err)
				return
			}
			c.JSON(http.StatusGatewayTimeout, datatypes.ErrorRecord{
				Error:         "Upstream timeout",
				Kind:          string(kind),
				CorrelationID: middleware.CorrelationID(c),
			})

		default:
			deps.recordBusiness(ctx, telemetry.OpErrorHandled)
			log.Info("error scenario resolved to success")
			c.JSON(http.StatusOK, gin.H{"message": "No error occurred"})
		}
	}
}

// External simulates an outbound dependency call.
//
// # Description
//
// Blocks for a short random latency inside an "external_call" child
// span, then a configurable-probability draw decides success (200) or
// dependency failure (502).
func External(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		log := middleware.RequestLogger(c)

		callCtx, span := deps.tracer().Start(ctx, "external_call")
		result, err := simulate.ExternalCall(callCtx, deps.Decider, simulate.ExternalConfig{
			MinLatency:  deps.Sim.ExternalMin,
			MaxLatency:  deps.Sim.ExternalMax,
			SuccessRate: deps.Sim.ExternalSuccessRate,
		})
		span.SetAttributes(attribute.Float64("external.latency_ms",
			float64(result.Latency.Microseconds())/1000.0))

		if err != nil {
			span.SetStatus(codes.Error, "call abandoned")
			span.End()
			log.Warn("external call abandoned", "error", err)
			return
		}

		if !result.Success {
			span.SetStatus(codes.Error, "simulated dependency failure")
			span.SetAttributes(attribute.String("error.kind", "dependency_failure"))
			span.End()

			c.Set(middleware.ErrorKindKey, "dependency_failure")
			deps.recordBusiness(ctx, telemetry.OpExternalFailure)
			log.Error("external call failed", "latency_ms",
				float64(result.Latency.Microseconds())/1000.0)
			c.JSON(http.StatusBadGateway, datatypes.ErrorRecord{
				Error:         "External call failed",
				Kind:          "dependency_failure",
				CorrelationID: middleware.CorrelationID(c),
			})
			return
		}

		span.End()
		deps.recordBusiness(ctx, telemetry.OpExternalSuccess)
		log.Info("external call succeeded", "latency_ms",
			float64(result.Latency.Microseconds())/1000.0)
		c.JSON(http.StatusOK, datatypes.ExternalResponse{
			Message:   "External call successful",
			LatencyMs: float64(result.Latency.Microseconds()) / 1000.0,
		})
	}
}
