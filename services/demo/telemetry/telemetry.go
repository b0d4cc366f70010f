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
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Config controls telemetry behavior.
//
// All fields have sensible defaults via DefaultConfig().
type Config struct {
	// ServiceName identifies this service in traces and metrics.
	ServiceName string `json:"service_name"`

	// ServiceVersion is the version string for this service.
	ServiceVersion string `json:"service_version"`

	// Environment identifies the deployment environment (development, production).
	Environment string `json:"environment"`

	// TraceExporter selects the trace exporter: "otlp", "stdout", or "none".
	TraceExporter string `json:"trace_exporter"`

	// MetricExporter selects the metric exporter: "prometheus", "stdout", or "none".
	MetricExporter string `json:"metric_exporter"`

	// OTLPEndpoint is the OTLP receiver endpoint for traces.
	OTLPEndpoint string `json:"otlp_endpoint"`

	// OTLPInsecure disables TLS verification for OTLP connections.
	OTLPInsecure bool `json:"otlp_insecure"`
}

// DefaultConfig returns opinionated defaults for development.
func DefaultConfig() Config {
	return Config{
		ServiceName:    "signaldemo",
		ServiceVersion: "1.0.0",
		Environment:    "development",
		TraceExporter:  "otlp",
		MetricExporter: "prometheus",
		OTLPEndpoint:   "localhost:4317",
		OTLPInsecure:   true,
	}
}

// Telemetry is the initialized observability stack.
//
// # Description
//
// Holds the Prometheus scrape handler and the composed shutdown
// function. After Init returns, otel.Tracer() and otel.Meter() resolve
// to the configured providers.
type Telemetry struct {
	// MetricsHandler serves the /metrics scrape endpoint over the
	// injected registry. Nil only when Init was given no registry.
	MetricsHandler http.Handler

	shutdownFuncs []func(context.Context) error
}

// Shutdown flushes and stops every configured exporter.
//
// Must be called on graceful shutdown; spans buffered in the batch
// processor are lost otherwise.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	var errs []error
	for _, fn := range t.shutdownFuncs {
		if err := fn(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("telemetry shutdown errors: %v", errs)
	}
	return nil
}

// Init initializes the telemetry stack with the given configuration.
//
// # Description
//
// Sets up the OpenTelemetry TracerProvider and MeterProvider based on
// the configuration, plus W3C trace-context propagation. The Prometheus
// metric exporter bridges OTel instruments into the supplied registry so
// a single /metrics endpoint exposes both native client_golang metrics
// and OTel-metered ones.
//
// # Inputs
//
//   - ctx: Context for exporter connections.
//   - cfg: Telemetry configuration. Use DefaultConfig() for defaults.
//   - reg: Prometheus registry backing the scrape endpoint. Required
//     when cfg.MetricExporter is "prometheus".
//
// # Outputs
//
//   - *Telemetry: Handle holding the scrape handler and shutdown.
//   - error: Non-nil if any exporter fails to initialize.
//
// # Examples
//
//	tel, err := telemetry.Init(ctx, telemetry.DefaultConfig(), reg)
//	if err != nil {
//	    return fmt.Errorf("init telemetry: %w", err)
//	}
//	defer tel.Shutdown(context.Background())
//
// # Thread Safety
//
// Call once at application startup.
func Init(ctx context.Context, cfg Config, reg *prometheus.Registry) (*Telemetry, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}

	tel := &Telemetry{}

	res := resource.NewWithAttributes(
		"",
		attribute.String("service.name", cfg.ServiceName),
		attribute.String("service.version", cfg.ServiceVersion),
		attribute.String("deployment.environment", cfg.Environment),
	)

	// --- TRACES ---
	if cfg.TraceExporter != "none" {
		tp, err := initTracer(ctx, cfg, res)
		if err != nil {
			return nil, fmt.Errorf("init tracer: %w", err)
		}
		otel.SetTracerProvider(tp)
		tel.shutdownFuncs = append(tel.shutdownFuncs, tp.Shutdown)
	}

	// --- METRICS ---
	if cfg.MetricExporter != "none" {
		mp, handler, err := initMeter(cfg, res, reg)
		if err != nil {
			return nil, fmt.Errorf("init meter: %w", err)
		}
		otel.SetMeterProvider(mp)
		tel.MetricsHandler = handler
		tel.shutdownFuncs = append(tel.shutdownFuncs, mp.Shutdown)
	}

	// The scrape endpoint serves the native registry regardless of the
	// OTel bridge; exporter selection governs only where OTel-metered
	// instruments go.
	if tel.MetricsHandler == nil && reg != nil {
		tel.MetricsHandler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{}))

	return tel, nil
}

// initTracer creates and returns a configured TracerProvider.
func initTracer(ctx context.Context, cfg Config, res *resource.Resource) (*trace.TracerProvider, error) {
	var exporter trace.SpanExporter
	var err error

	switch cfg.TraceExporter {
	case "otlp":
		var conn *grpc.ClientConn
		conn, err = grpc.NewClient(cfg.OTLPEndpoint, grpcCredentials(cfg)...)
		if err != nil {
			return nil, fmt.Errorf("dial collector: %w", err)
		}
		exporter, err = otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))

	case "stdout":
		exporter, err = stdouttrace.New(stdouttrace.WithPrettyPrint())

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownExporter, cfg.TraceExporter)
	}

	if err != nil {
		return nil, fmt.Errorf("create exporter: %w", err)
	}

	tp := trace.NewTracerProvider(
		trace.WithBatcher(exporter),
		trace.WithResource(res),
		trace.WithSampler(trace.AlwaysSample()), // demo service samples everything
	)

	return tp, nil
}

// grpcCredentials returns the dial options for the OTLP connection.
func grpcCredentials(cfg Config) []grpc.DialOption {
	if cfg.OTLPInsecure {
		return []grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}
	}
	return nil
}

// initMeter creates the MeterProvider and, for the prometheus exporter,
// the scrape handler over the injected registry.
func initMeter(cfg Config, res *resource.Resource, reg *prometheus.Registry) (*metric.MeterProvider, http.Handler, error) {
	switch cfg.MetricExporter {
	case "prometheus":
		if reg == nil {
			return nil, nil, ErrNilRegistry
		}
		exporter, err := promexporter.New(promexporter.WithRegisterer(reg))
		if err != nil {
			return nil, nil, fmt.Errorf("create prometheus exporter: %w", err)
		}

		mp := metric.NewMeterProvider(
			metric.WithResource(res),
			metric.WithReader(exporter),
		)
		handler := promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
		return mp, handler, nil

	case "stdout":
		exporter, err := stdoutmetric.New(stdoutmetric.WithPrettyPrint())
		if err != nil {
			return nil, nil, fmt.Errorf("create stdout metric exporter: %w", err)
		}

		mp := metric.NewMeterProvider(
			metric.WithResource(res),
			metric.WithReader(metric.NewPeriodicReader(exporter)),
		)
		return mp, nil, nil

	default:
		return nil, nil, fmt.Errorf("%w: %s", ErrUnknownExporter, cfg.MetricExporter)
	}
}
