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
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/SignalDemo/services/demo/datatypes"
)

// routeDescriptions is the listing served at /.
var routeDescriptions = map[string]string{
	"/":              "This endpoint",
	"/slow":          "Simulates a slow operation (1-3s)",
	"/error":         "Simulates error scenarios (?type=500|404|timeout|random)",
	"/external":      "Simulates an outbound dependency call",
	"/generate-load": "Fires a burst of simulated operations (?count=N)",
	"/metrics":       "Prometheus metrics",
	"/health":        "Health check",
}

// Home returns the static route listing.
func Home() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, datatypes.RouteListing{
			Message:   "Four-signal observability demo service",
			Endpoints: routeDescriptions,
		})
	}
}

// HealthCheck reports liveness.
//
// Always 200: no simulated work, no synthetic errors, no instrumentation
// beyond a debug log in the middleware. Liveness probing must stay
// independent of every other route's simulated failures.
func HealthCheck() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, datatypes.HealthStatus{
			Status:    "healthy",
			Service:   datatypes.ServiceName,
			Version:   datatypes.ServiceVersion,
			Timestamp: time.Now().Unix(),
		})
	}
}
