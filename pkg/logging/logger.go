// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package logging provides structured logging for the demo telemetry
// service.
//
// The service's log signal is collected by an external shipping agent
// that tails standard output, so the default sink is stdout in JSON.
// Every record carries the service name; request-scoped loggers add the
// route and correlation identifier so one request's log line can be
// joined against its trace span and metric labels.
//
// # Basic Usage
//
//	logger := logging.New(logging.Config{Service: "signaldemo"})
//	logger.Info("server starting", "port", 8080)
//
// # Request Scoping
//
//	reqLog := logger.ForRequest(route, correlationID)
//	reqLog.Error("simulated failure", "kind", "500")
//
// # Log Levels
//
// Four levels are supported, matching slog conventions:
//
//   - Debug: Development troubleshooting, verbose output
//   - Info: Normal operations (request completion, state changes)
//   - Warn: Recoverable issues (client errors, degraded draws)
//   - Error: Operation failures (simulated 5xx outcomes)
//
// # Thread Safety
//
// Logger is safe for concurrent use; the underlying slog handler
// serializes writes.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// =============================================================================
// Log Levels
// =============================================================================

// Level represents log severity levels.
//
// Levels follow the slog convention and are ordered by severity:
// Debug < Info < Warn < Error.
type Level int

const (
	// LevelDebug is for development troubleshooting.
	LevelDebug Level = iota

	// LevelInfo is for normal operational messages.
	LevelInfo

	// LevelWarn is for potentially problematic situations.
	LevelWarn

	// LevelError is for error conditions.
	LevelError
)

// String returns the human-readable name of the level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel maps a configuration string onto a Level.
//
// Unrecognized values fall back to LevelInfo rather than failing; a bad
// log level should never keep the service from starting.
func ParseLevel(s string) Level {
	switch s {
	case "debug":
		return LevelDebug
	case "warn":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// toSlogLevel bridges our Level type to the standard library.
func (l Level) toSlogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// =============================================================================
// Configuration
// =============================================================================

// Config configures the Logger behavior.
//
// A zero-value Config writes Info+ JSON records to stdout with no
// service attribute.
type Config struct {
	// Level sets the minimum log level. Messages below it are discarded.
	// Default: LevelInfo.
	Level Level

	// Service identifies the component generating logs. Included in
	// every record as the "service" attribute.
	Service string

	// Text switches to human-readable text output. JSON is the default
	// because the log-shipping agent parses stdout.
	Text bool

	// Writer overrides the output destination. Default: os.Stdout.
	// Tests pass a buffer here.
	Writer io.Writer
}

// =============================================================================
// Logger
// =============================================================================

// Logger provides structured logging over a slog.Logger.
//
// # Thread Safety
//
// Safe for concurrent use from multiple goroutines.
type Logger struct {
	slog *slog.Logger
}

// New creates a Logger from the given configuration.
//
// # Examples
//
//	logger := logging.New(logging.Config{
//	    Level:   logging.ParseLevel(cfg.LogLevel),
//	    Service: "signaldemo",
//	})
func New(cfg Config) *Logger {
	w := cfg.Writer
	if w == nil {
		w = os.Stdout
	}

	opts := &slog.HandlerOptions{Level: cfg.Level.toSlogLevel()}

	var handler slog.Handler
	if cfg.Text {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	l := slog.New(handler)
	if cfg.Service != "" {
		l = l.With("service", cfg.Service)
	}
	return &Logger{slog: l}
}

// Default returns a Logger with zero-value configuration.
func Default() *Logger {
	return New(Config{})
}

// Slog exposes the underlying slog.Logger, e.g. for slog.SetDefault.
func (l *Logger) Slog() *slog.Logger {
	return l.slog
}

// ForRequest returns a request-scoped logger carrying the route and
// correlation identifier on every record.
func (l *Logger) ForRequest(route, correlationID string) *Logger {
	return &Logger{slog: l.slog.With("route", route, "correlation_id", correlationID)}
}

// Debug logs at debug level with key-value attributes.
func (l *Logger) Debug(msg string, args ...any) { l.slog.Debug(msg, args...) }

// Info logs at info level with key-value attributes.
func (l *Logger) Info(msg string, args ...any) { l.slog.Info(msg, args...) }

// Warn logs at warn level with key-value attributes.
func (l *Logger) Warn(msg string, args ...any) { l.slog.Warn(msg, args...) }

// Error logs at error level with key-value attributes.
func (l *Logger) Error(msg string, args ...any) { l.slog.Error(msg, args...) }

// LogStatus writes one record at the severity the status code implies:
// 5xx at error, 4xx at warn, everything else at info.
//
// This keeps the log severity consistent with the outcome recorded on
// the request counter and the span status.
func (l *Logger) LogStatus(status int, msg string, args ...any) {
	switch {
	case status >= 500:
		l.Error(msg, args...)
	case status >= 400:
		l.Warn(msg, args...)
	default:
		l.Info(msg, args...)
	}
}
