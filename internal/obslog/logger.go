// Package obslog sets up the structured logger and tracing spans shared
// across the navigation runtime and scheduler (SPEC_FULL.md §A.1),
// grounded on the teacher's infrastructure/logger.Setup — same slog JSON
// handler, same level-string parsing.
package obslog

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Setup builds the process-wide slog.Logger and installs it as the
// default, mirroring the teacher's logger.Setup.
func Setup(level string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, opts))
	slog.SetDefault(logger)
	return logger
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// tracerName identifies this module's spans in any otel pipeline they are
// exported to.
const tracerName = "github.com/pixelpilot/autocore"

// Tracer returns the package-wide tracer, resolved lazily against
// whatever TracerProvider the host process has configured (a no-op one by
// default, per otel's own fallback).
func Tracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

// StartSpan begins a span named for one navigation step or scheduler
// dispatch, attached to ctx.
func StartSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return Tracer().Start(ctx, name)
}
