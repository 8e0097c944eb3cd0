// Package logger provides structured logging infrastructure for the application.
// This is part of the platform layer and contains no business logic.
package logger

import (
	"log/slog"
	"os"
	"strings"
)

// Logger wraps slog.Logger for structured logging
type Logger struct {
	*slog.Logger
}

// New creates a new logger based on environment
func New(env string) *Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}

	if strings.EqualFold(env, "development") {
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithCallID returns a logger with the call ID attached
func (l *Logger) WithCallID(callID string) *Logger {
	return &Logger{
		Logger: l.With(slog.String("call_id", callID)),
	}
}

// HTTPRequest logs an HTTP request
func (l *Logger) HTTPRequest(method, path string, status int, latencyMs float64, clientIP string) {
	l.Info("http_request",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", status),
		slog.Float64("latency_ms", latencyMs),
		slog.String("client_ip", clientIP),
	)
}

// CallEvent logs a lifecycle event for a simulated call
func (l *Logger) CallEvent(event, callID, stage string) {
	l.Info("call_event",
		slog.String("event", event),
		slog.String("call_id", callID),
		slog.String("stage", stage),
	)
}

// EmergencyDetected logs an emergency classification on a live call
func (l *Logger) EmergencyDetected(callID string, confidence float64, severity string, escalated bool) {
	l.Warn("emergency_detected",
		slog.String("call_id", callID),
		slog.Float64("confidence", confidence),
		slog.String("severity", severity),
		slog.Bool("escalated", escalated),
	)
}

// StorageError logs call record storage errors
func (l *Logger) StorageError(backend, operation string, err error) {
	l.Error("storage_error",
		slog.String("backend", backend),
		slog.String("operation", operation),
		slog.String("error", err.Error()),
	)
}

// RateLimitExceeded logs rate limit events
func (l *Logger) RateLimitExceeded(clientIP, path string) {
	l.Warn("rate_limit_exceeded",
		slog.String("client_ip", clientIP),
		slog.String("path", path),
	)
}
