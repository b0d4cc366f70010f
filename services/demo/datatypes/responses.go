// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package datatypes defines the response payloads of the demo service.
package datatypes

// ServiceName identifies this service in payloads and telemetry.
const ServiceName = "signaldemo"

// ServiceVersion is the reported service version.
const ServiceVersion = "1.0.0"

// RouteListing is the payload of GET /.
type RouteListing struct {
	Message   string            `json:"message"`
	Endpoints map[string]string `json:"endpoints"`
}

// ErrorRecord is the body of every simulated error response.
type ErrorRecord struct {
	Error         string `json:"error"`
	Kind          string `json:"kind"`
	CorrelationID string `json:"correlation_id,omitempty"`
}

// SlowResponse is the payload of a completed GET /slow.
type SlowResponse struct {
	Message         string  `json:"message"`
	DurationSeconds float64 `json:"duration_seconds"`
	Result          float64 `json:"result"`
}

// ExternalResponse is the payload of a successful GET /external.
type ExternalResponse struct {
	Message   string  `json:"message"`
	LatencyMs float64 `json:"latency_ms"`
}

// LoadResponse is the payload of GET /generate-load.
type LoadResponse struct {
	Message    string  `json:"message"`
	Requested  int     `json:"requested"`
	Successes  int     `json:"successes"`
	Failures   int     `json:"failures"`
	DurationMs float64 `json:"duration_ms"`
}

// HealthStatus is the payload of GET /health.
type HealthStatus struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Version   string `json:"version"`
	Timestamp int64  `json:"timestamp"`
}
