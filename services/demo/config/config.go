// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads the demo service configuration from environment
// variables, with an optional YAML scenario file overriding the
// simulation shape.
//
// Every open knob of the simulation (burst size range, external-call
// success probability, timeout threshold) is configuration with a
// documented default rather than a constant buried in a handler.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config is the full service configuration.
type Config struct {
	// Port is the HTTP listen port.
	Port int `env:"DEMO_PORT" envDefault:"8080"`

	// Environment names the deployment environment, carried on the
	// telemetry resource and the profiler tags.
	Environment string `env:"DEMO_ENV" envDefault:"development"`

	// LogLevel is the minimum severity written to stdout: debug, info,
	// warn, or error.
	LogLevel string `env:"DEMO_LOG_LEVEL" envDefault:"info"`

	// OTLPEndpoint is the trace collector the service exports spans to.
	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4317"`

	// TraceExporter selects the trace exporter: otlp, stdout, or none.
	TraceExporter string `env:"OTEL_TRACES_EXPORTER" envDefault:"otlp"`

	// MetricExporter selects the metric exporter: prometheus, stdout, or none.
	MetricExporter string `env:"OTEL_METRICS_EXPORTER" envDefault:"prometheus"`

	// PyroscopeAddress is the continuous-profiling collector. Empty
	// disables profiling export.
	PyroscopeAddress string `env:"PYROSCOPE_SERVER_ADDRESS"`

	// ScenarioFile optionally points at a YAML file overriding the
	// simulation parameters below.
	ScenarioFile string `env:"DEMO_SCENARIO_FILE"`

	// SnapshotInterval is how often the background sampler records
	// resource-usage gauges.
	SnapshotInterval time.Duration `env:"DEMO_SNAPSHOT_INTERVAL" envDefault:"15s"`

	// LoadRateLimit caps /generate-load requests per second. Zero
	// disables the limiter; simultaneous bursts must all be admitted
	// unless an operator opts in to throttling.
	LoadRateLimit float64 `env:"DEMO_LOAD_RATE_LIMIT" envDefault:"0"`

	// Simulation is the synthetic workload shape.
	Simulation Simulation `envPrefix:"DEMO_"`
}

// Simulation holds every knob of the synthetic workload.
//
// Env defaults: burst size defaults to a 10-50 draw, the external call
// succeeds 90% of the time.
type Simulation struct {
	// SlowMin and SlowMax bound the /slow sleep.
	SlowMin time.Duration `env:"SLOW_MIN" envDefault:"1s" yaml:"slow_min"`
	SlowMax time.Duration `env:"SLOW_MAX" envDefault:"3s" yaml:"slow_max"`

	// CPUBurnIterations sizes the synthetic computation after the sleep.
	CPUBurnIterations int `env:"CPU_BURN_ITERATIONS" envDefault:"100000" yaml:"cpu_burn_iterations"`

	// TimeoutThreshold is the timeout the timeout error kind blocks past.
	// The simulated block is bounded at threshold + TimeoutSlack.
	TimeoutThreshold time.Duration `env:"TIMEOUT_THRESHOLD" envDefault:"5s" yaml:"timeout_threshold"`
	TimeoutSlack     time.Duration `env:"TIMEOUT_SLACK" envDefault:"1s" yaml:"timeout_slack"`

	// ExternalMin and ExternalMax bound the simulated dependency latency.
	ExternalMin time.Duration `env:"EXTERNAL_MIN" envDefault:"50ms" yaml:"external_min"`
	ExternalMax time.Duration `env:"EXTERNAL_MAX" envDefault:"300ms" yaml:"external_max"`

	// ExternalSuccessRate is the dependency success probability.
	ExternalSuccessRate float64 `env:"EXTERNAL_SUCCESS_RATE" envDefault:"0.9" yaml:"external_success_rate"`

	// BurstMin and BurstMax bound the default /generate-load burst size
	// when no count parameter is given. BurstCap bounds any requested count.
	BurstMin int `env:"BURST_MIN" envDefault:"10" yaml:"burst_min"`
	BurstMax int `env:"BURST_MAX" envDefault:"50" yaml:"burst_max"`
	BurstCap int `env:"BURST_CAP" envDefault:"500" yaml:"burst_cap"`

	// LoadConcurrency caps operations in flight within one burst.
	LoadConcurrency int `env:"LOAD_CONCURRENCY" envDefault:"16" yaml:"load_concurrency"`

	// LoadSuccessRate is the per-operation success probability.
	LoadSuccessRate float64 `env:"LOAD_SUCCESS_RATE" envDefault:"0.95" yaml:"load_success_rate"`
}

// Load parses configuration from the environment and the optional
// scenario file.
//
// # Description
//
// Environment variables are parsed first; if DEMO_SCENARIO_FILE is set,
// the YAML file overrides the simulation block. The result is validated
// before return, so a process never starts with an unusable simulation
// shape.
//
// # Outputs
//
//   - *Config: Validated configuration.
//   - error: Non-nil on parse, read, or validation failure.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if cfg.ScenarioFile != "" {
		if err := cfg.applyScenario(cfg.ScenarioFile); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyScenario overlays the simulation block from a YAML file.
func (c *Config) applyScenario(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read scenario file: %w", err)
	}
	if err := yaml.Unmarshal(data, &c.Simulation); err != nil {
		return fmt.Errorf("parse scenario file %s: %w", path, err)
	}
	return nil
}

// Validate checks that the configuration describes a runnable service.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.SnapshotInterval <= 0 {
		return fmt.Errorf("snapshot interval must be positive, got %s", c.SnapshotInterval)
	}
	if c.LoadRateLimit < 0 {
		return fmt.Errorf("load rate limit must be non-negative, got %g", c.LoadRateLimit)
	}
	return c.Simulation.Validate()
}

// Validate checks the simulation shape.
//
// Every simulated block must have a bounded maximum duration, so the
// ranges must be ordered and the probabilities must be real
// probabilities.
func (s *Simulation) Validate() error {
	if s.SlowMin <= 0 || s.SlowMax < s.SlowMin {
		return fmt.Errorf("slow range [%s, %s] invalid", s.SlowMin, s.SlowMax)
	}
	if s.ExternalMin <= 0 || s.ExternalMax < s.ExternalMin {
		return fmt.Errorf("external latency range [%s, %s] invalid", s.ExternalMin, s.ExternalMax)
	}
	if s.TimeoutThreshold <= 0 || s.TimeoutSlack < 0 {
		return fmt.Errorf("timeout threshold %s / slack %s invalid", s.TimeoutThreshold, s.TimeoutSlack)
	}
	if s.ExternalSuccessRate < 0 || s.ExternalSuccessRate > 1 {
		return fmt.Errorf("external success rate %g outside [0, 1]", s.ExternalSuccessRate)
	}
	if s.LoadSuccessRate < 0 || s.LoadSuccessRate > 1 {
		return fmt.Errorf("load success rate %g outside [0, 1]", s.LoadSuccessRate)
	}
	if s.BurstMin < 1 || s.BurstMax < s.BurstMin {
		return fmt.Errorf("burst range [%d, %d] invalid", s.BurstMin, s.BurstMax)
	}
	if s.BurstCap < s.BurstMax {
		return fmt.Errorf("burst cap %d below burst max %d", s.BurstCap, s.BurstMax)
	}
	if s.LoadConcurrency < 1 {
		return fmt.Errorf("load concurrency %d invalid", s.LoadConcurrency)
	}
	if s.CPUBurnIterations < 0 {
		return fmt.Errorf("cpu burn iterations %d invalid", s.CPUBurnIterations)
	}
	return nil
}
