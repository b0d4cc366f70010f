// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRateLimit_AllowsWithinBurst(t *testing.T) {
	router := gin.New()
	router.GET("/generate-load", RateLimit(100, 3), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/generate-load", nil))
		assert.Equal(t, http.StatusOK, w.Code, "request %d inside burst", i)
	}
}

func TestRateLimit_RejectsOverBurst(t *testing.T) {
	router := gin.New()
	handled := 0
	router.GET("/generate-load", RateLimit(0.001, 1), func(c *gin.Context) {
		handled++
		c.Status(http.StatusOK)
	})

	first := httptest.NewRecorder()
	router.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/generate-load", nil))
	assert.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	router.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/generate-load", nil))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "1", second.Header().Get("Retry-After"))
	assert.Contains(t, second.Body.String(), "rate limit exceeded")
	assert.Equal(t, 1, handled, "rejected request must not reach the handler")
}
