// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command demo starts the four-signal observability demo service.
//
// The service exposes a fixed set of routes that simulate latency,
// classified errors, an outbound dependency call, and synthetic load
// bursts, emitting metrics, logs, traces, and profiles to external
// collectors.
//
// # Environment Variables
//
//   - DEMO_PORT: HTTP listen port (default: 8080)
//   - DEMO_ENV: deployment environment (default: development)
//   - DEMO_LOG_LEVEL: debug|info|warn|error (default: info)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: trace collector (default: localhost:4317)
//   - OTEL_TRACES_EXPORTER: otlp|stdout|none (default: otlp)
//   - OTEL_METRICS_EXPORTER: prometheus|stdout|none (default: prometheus)
//   - PYROSCOPE_SERVER_ADDRESS: profiling collector (default: disabled)
//   - DEMO_SCENARIO_FILE: optional YAML simulation overrides
//   - DEMO_LOAD_RATE_LIMIT: requests/sec cap on /generate-load (default: 0, disabled)
//
// The process exits non-zero only on configuration or bind failure at
// startup.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"

	"github.com/AleutianAI/SignalDemo/pkg/logging"
	"github.com/AleutianAI/SignalDemo/services/demo/config"
	"github.com/AleutianAI/SignalDemo/services/demo/datatypes"
	"github.com/AleutianAI/SignalDemo/services/demo/handlers"
	"github.com/AleutianAI/SignalDemo/services/demo/middleware"
	"github.com/AleutianAI/SignalDemo/services/demo/observability"
	"github.com/AleutianAI/SignalDemo/services/demo/profiling"
	"github.com/AleutianAI/SignalDemo/services/demo/routes"
	"github.com/AleutianAI/SignalDemo/services/demo/simulate"
	"github.com/AleutianAI/SignalDemo/services/demo/telemetry"
)

// shutdownTimeout bounds graceful shutdown of the HTTP server and the
// telemetry exporters.
const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := logging.New(logging.Config{
		Level:   logging.ParseLevel(cfg.LogLevel),
		Service: datatypes.ServiceName,
	})
	slog.SetDefault(logger.Slog())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Metrics registry and OTel stack ---
	registry := prometheus.NewRegistry()
	metrics := observability.NewRequestMetrics(registry)

	telCfg := telemetry.DefaultConfig()
	telCfg.ServiceVersion = datatypes.ServiceVersion
	telCfg.Environment = cfg.Environment
	telCfg.TraceExporter = cfg.TraceExporter
	telCfg.MetricExporter = cfg.MetricExporter
	telCfg.OTLPEndpoint = cfg.OTLPEndpoint

	tel, err := telemetry.Init(ctx, telCfg, registry)
	if err != nil {
		log.Fatalf("failed to initialize telemetry: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown failed", "error", err)
		}
	}()

	business, err := telemetry.NewBusinessMetrics(otel.Meter(datatypes.ServiceName))
	if err != nil {
		log.Fatalf("failed to create business metrics: %v", err)
	}

	// --- Profile signal ---
	stopProfiler, err := profiling.StartProfiler(profiling.ProfilerConfig{
		ApplicationName: datatypes.ServiceName,
		ServerAddress:   cfg.PyroscopeAddress,
		Version:         datatypes.ServiceVersion,
		Environment:     cfg.Environment,
	})
	if err != nil {
		// Profiling is best-effort.
		logger.Warn("continuous profiling unavailable", "error", err)
		stopProfiler = func() error { return nil }
	}
	defer func() {
		if err := stopProfiler(); err != nil {
			logger.Error("profiler shutdown failed", "error", err)
		}
	}()

	sampler := profiling.NewResourceSampler(metrics, cfg.SnapshotInterval)
	if err := sampler.Start(ctx); err != nil {
		log.Fatalf("failed to start resource sampler: %v", err)
	}
	defer sampler.Stop()

	// --- HTTP surface ---
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(datatypes.ServiceName))
	router.Use(middleware.Telemetry(metrics, logger))

	deps := handlers.Deps{
		Metrics:  metrics,
		Business: business,
		Decider:  simulate.NewDecider(time.Now().UnixNano()),
		Sim:      cfg.Simulation,
	}
	routes.SetupRoutes(router, deps, tel.MetricsHandler, cfg.LoadRateLimit, int(cfg.LoadRateLimit)+1)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "port", cfg.Port, "environment", cfg.Environment)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received, draining requests")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown failed", "error", err)
		}
	}
}
