// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package routes wires the demo service's HTTP surface.
package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/SignalDemo/services/demo/handlers"
	"github.com/AleutianAI/SignalDemo/services/demo/middleware"
)

// SetupRoutes registers every route of the demo service.
//
// # Inputs
//
//   - router: The gin engine, already carrying the otelgin and telemetry
//     middleware.
//   - deps: Handler dependencies.
//   - metricsHandler: The Prometheus scrape handler. Nil only when no
//     registry exists at all (bare test routers); the route is skipped
//     then.
//   - loadRPS, loadBurst: Optional rate limit for /generate-load.
//     Non-positive loadRPS disables throttling so simultaneous bursts
//     are all admitted.
func SetupRoutes(router *gin.Engine, deps handlers.Deps, metricsHandler http.Handler, loadRPS float64, loadBurst int) {
	router.GET("/", handlers.Home())
	router.GET("/health", handlers.HealthCheck())

	if metricsHandler != nil {
		router.GET("/metrics", gin.WrapH(metricsHandler))
	}

	router.GET("/slow", handlers.Slow(deps))
	router.GET("/error", handlers.SimulateError(deps))
	router.GET("/external", handlers.External(deps))

	if loadRPS > 0 {
		router.GET("/generate-load",
			middleware.RateLimit(loadRPS, loadBurst),
			handlers.GenerateLoad(deps))
	} else {
		router.GET("/generate-load", handlers.GenerateLoad(deps))
	}
}
