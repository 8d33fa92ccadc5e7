// Package logger provides structured logging using Go 1.21's log/slog.
// It sets up a JSON handler with service-level context and propagates the
// instrument id being processed through context.Context.
package logger

import (
	"context"
	"log/slog"
	"os"
)

type ctxKey string

const instrumentKey ctxKey = "instrument"

// Init creates and returns a structured logger for the given service.
// The logger outputs JSON to stdout with the service name embedded.
func Init(service string, level slog.Level) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})

	logger := slog.New(handler).With(
		slog.String("service", service),
	)

	// Set as default so log/slog.Info() etc. also use structured output
	slog.SetDefault(logger)

	return logger
}

// WithInstrument stores the instrument id in the context for downstream
// propagation through the load → compute → write pipeline.
func WithInstrument(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, instrumentKey, id)
}

// Instrument extracts the instrument id from context. Returns "" if not set.
func Instrument(ctx context.Context) string {
	if v, ok := ctx.Value(instrumentKey).(string); ok {
		return v
	}
	return ""
}

// LogWithInstrument returns slog attributes including the instrument id from
// context. Usage: slog.Info("msg", logger.LogWithInstrument(ctx)...)
func LogWithInstrument(ctx context.Context) []any {
	id := Instrument(ctx)
	if id == "" {
		return nil
	}
	return []any{slog.String("instrument", id)}
}
