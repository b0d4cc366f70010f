// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimit returns middleware that caps a route's request rate.
//
// # Description
//
// Applied to /generate-load so stacked bursts stay bounded: the route
// multiplies every request into N simulated operations, and an
// unthrottled client could pile bursts faster than they drain. Requests
// over the limit get 429 with a Retry-After hint.
//
// One token-bucket limiter is shared by all clients; the demo has no
// per-client fairness requirement.
//
// # Inputs
//
//   - rps: Sustained requests per second.
//   - burst: Instantaneous burst allowance.
func RateLimit(rps float64, burst int) gin.HandlerFunc {
	limiter := rate.NewLimiter(rate.Limit(rps), burst)

	return func(c *gin.Context) {
		if !limiter.Allow() {
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded",
			})
			return
		}
		c.Next()
	}
}
