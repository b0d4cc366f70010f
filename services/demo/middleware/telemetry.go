// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package middleware provides the gin middleware for the demo service:
// per-request telemetry emission and load-route rate limiting.
package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/AleutianAI/SignalDemo/pkg/logging"
	"github.com/AleutianAI/SignalDemo/services/demo/observability"
)

// =============================================================================
// Context Keys
// =============================================================================

const (
	// correlationIDKey stores the request's correlation identifier in
	// the gin context.
	correlationIDKey = "correlation_id"

	// loggerKey stores the request-scoped logger in the gin context.
	loggerKey = "request_logger"

	// ErrorKindKey is set by handlers that produce a synthetic error so
	// the middleware can tag the span with the error kind.
	ErrorKindKey = "error_kind"
)

// correlationHeader is the inbound/outbound correlation id header.
const correlationHeader = "X-Correlation-ID"

// exemptRoutes are never instrumented with synthetic telemetry. The
// health probe must stay independent of every simulated failure, and
// the scrape endpoint must not count itself.
var exemptRoutes = map[string]bool{
	"/health":  true,
	"/metrics": true,
}

// CorrelationID returns the request's correlation identifier.
//
// Empty only if called outside the Telemetry middleware.
func CorrelationID(c *gin.Context) string {
	return c.GetString(correlationIDKey)
}

// RequestLogger returns the request-scoped logger carrying the route and
// correlation id. Falls back to the default logger outside middleware.
func RequestLogger(c *gin.Context) *logging.Logger {
	if v, ok := c.Get(loggerKey); ok {
		if l, ok := v.(*logging.Logger); ok {
			return l
		}
	}
	return logging.Default()
}

// =============================================================================
// Telemetry Middleware
// =============================================================================

// Telemetry returns the middleware that emits one metric sample and one
// structured log line per request, and links them to the request span.
//
// # Description
//
// For each non-exempt request the middleware:
//  1. Assigns a correlation identifier (honoring an inbound
//     X-Correlation-ID) and echoes it on the response.
//  2. Attaches a request-scoped logger to the gin context.
//  3. Records the correlation id on the root span (created by otelgin
//     upstream of this middleware) and, after the handler runs, the
//     final status, error kind, and client-disconnect state.
//  4. Increments the request counter labeled (route, status) and
//     observes the latency histogram.
//  5. Writes one log record whose severity matches the status: the
//     same outcome appears on counter label, log line, and span.
//
// Telemetry emission itself is guarded: a panic in any sink is
// recovered and logged once, and the HTTP response proceeds regardless.
//
// # Inputs
//
//   - metrics: Injected metrics handle.
//   - logger: Base service logger.
//
// # Thread Safety
//
// Safe for concurrent requests; all shared state lives in the metrics
// handle, which is atomic per update.
func Telemetry(metrics *observability.RequestMetrics, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}

		if exemptRoutes[route] {
			logger.Debug("exempt route accessed", "route", route)
			c.Next()
			return
		}

		correlationID := c.GetHeader(correlationHeader)
		if correlationID == "" {
			correlationID = uuid.NewString()
		}
		c.Set(correlationIDKey, correlationID)
		c.Header(correlationHeader, correlationID)

		reqLog := logger.ForRequest(route, correlationID)
		c.Set(loggerKey, reqLog)

		span := trace.SpanFromContext(c.Request.Context())
		span.SetAttributes(attribute.String("correlation_id", correlationID))

		emit(reqLog, metrics.RequestStarted)
		start := time.Now()

		c.Next()

		duration := time.Since(start)
		status := c.Writer.Status()
		disconnected := c.Request.Context().Err() != nil

		emit(reqLog, func() {
			metrics.RequestEnded()
			metrics.RecordRequest(route, status)
			metrics.ObserveDuration(route, duration.Seconds())

			span.SetAttributes(attribute.Int("http.response.status_code", status))
			if kind := c.GetString(ErrorKindKey); kind != "" {
				span.SetAttributes(attribute.String("error.kind", kind))
			}
			if status >= 500 {
				span.SetStatus(codes.Error, "simulated failure")
			}
			if disconnected {
				span.SetAttributes(attribute.Bool("client.disconnected", true))
			}

			args := []any{
				"status", status,
				"duration_ms", float64(duration.Microseconds()) / 1000.0,
				"trace_id", span.SpanContext().TraceID().String(),
			}
			if disconnected {
				args = append(args, "client_disconnected", true)
			}
			reqLog.LogStatus(status, "request completed", args...)
		})
	}
}

// emit runs a telemetry emission path, recovering any panic so a failing
// sink can never abort the HTTP response.
func emit(logger *logging.Logger, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("telemetry emission failed", "panic", r)
		}
	}()
	fn()
}
