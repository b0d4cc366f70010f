// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package profiling

import (
	"fmt"
	"log/slog"

	"github.com/grafana/pyroscope-go"
)

// ProfilerConfig configures the continuous-profiling agent.
type ProfilerConfig struct {
	// ApplicationName identifies this service in the profiling backend.
	ApplicationName string

	// ServerAddress is the Pyroscope collector. Empty disables the agent.
	ServerAddress string

	// Version and Environment are attached as profile tags.
	Version     string
	Environment string
}

// StartProfiler starts the continuous CPU/memory profiler.
//
// # Description
//
// Attaches the Pyroscope agent, which samples the process in the
// background and pushes profiles to the collector. Disabled profiling
// (empty server address) returns a no-op stop function so callers never
// branch on configuration.
//
// # Outputs
//
//   - stop: Call on graceful shutdown to flush and detach the agent.
//   - error: Non-nil if the agent fails to start.
func StartProfiler(cfg ProfilerConfig) (stop func() error, err error) {
	if cfg.ServerAddress == "" {
		slog.Info("continuous profiling disabled (no server address)")
		return func() error { return nil }, nil
	}

	profiler, err := pyroscope.Start(pyroscope.Config{
		ApplicationName: cfg.ApplicationName,
		ServerAddress:   cfg.ServerAddress,
		Tags: map[string]string{
			"version":     cfg.Version,
			"environment": cfg.Environment,
		},
		ProfileTypes: []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileAllocObjects,
			pyroscope.ProfileAllocSpace,
			pyroscope.ProfileInuseObjects,
			pyroscope.ProfileInuseSpace,
			pyroscope.ProfileGoroutines,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("start pyroscope agent: %w", err)
	}

	slog.Info("continuous profiling started", "server", cfg.ServerAddress)
	return profiler.Stop, nil
}
