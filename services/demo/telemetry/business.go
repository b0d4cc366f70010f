// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// BusinessMetrics counts simulated business operations through the OTel
// meter.
//
// # Description
//
// The demo emits one counter family, business_operations_total, keyed by
// operation type (slow_operation, external_call_success, load_fast, ...).
// Recording goes through the meter so the Prometheus bridge carries OTel
// instruments and native client_golang instruments side by side on the
// same scrape endpoint.
//
// # Thread Safety
//
// Safe for concurrent use after creation.
type BusinessMetrics struct {
	// Operations counts business operations by type.
	Operations metric.Int64Counter
}

// OperationType labels a business operation for metrics.
type OperationType string

const (
	// OpSlowOperation is a completed slow-route computation.
	OpSlowOperation OperationType = "slow_operation"

	// OpErrorHandled is an error-route draw that landed on success.
	OpErrorHandled OperationType = "error_handled"

	// OpExternalSuccess is a simulated dependency call that succeeded.
	OpExternalSuccess OperationType = "external_call_success"

	// OpExternalFailure is a simulated dependency call that failed.
	OpExternalFailure OperationType = "external_call_failure"
)

// LoadOperation returns the operation type for a load-burst class.
func LoadOperation(class string) OperationType {
	return OperationType("load_" + class)
}

// NewBusinessMetrics creates the business counters on the given meter.
//
// # Inputs
//
//   - meter: Meter from the configured provider, e.g. otel.Meter("signaldemo").
//
// # Outputs
//
//   - *BusinessMetrics: Ready to record.
//   - error: Non-nil if instrument creation fails.
func NewBusinessMetrics(meter metric.Meter) (*BusinessMetrics, error) {
	ops, err := meter.Int64Counter(
		"business_operations_total",
		metric.WithDescription("Simulated business operations by type"),
	)
	if err != nil {
		return nil, fmt.Errorf("create business counter: %w", err)
	}
	return &BusinessMetrics{Operations: ops}, nil
}

// Record increments the counter for one business operation.
func (b *BusinessMetrics) Record(ctx context.Context, op OperationType) {
	b.Operations.Add(ctx, 1,
		metric.WithAttributes(attribute.String("operation_type", string(op))))
}
