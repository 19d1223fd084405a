package logging

import (
	"context"
	"log/slog"
	"strings"
)

type contextKey string

const (
	runIDContextKey contextKey = "run_id"
	nightContextKey contextKey = "night"
)

// WithRunID stores the orchestrator run ID for downstream log enrichment.
func WithRunID(ctx context.Context, runID string) context.Context {
	if strings.TrimSpace(runID) == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDContextKey, runID)
}

// WithNight stores the night currently being processed.
func WithNight(ctx context.Context, night string) context.Context {
	if strings.TrimSpace(night) == "" {
		return ctx
	}
	return context.WithValue(ctx, nightContextKey, night)
}

// WithContext returns a logger enriched with any run ID and night carried by
// the context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	if ctx == nil {
		return logger
	}
	if runID, ok := ctx.Value(runIDContextKey).(string); ok && runID != "" {
		logger = logger.With(String(FieldRunID, runID))
	}
	if night, ok := ctx.Value(nightContextKey).(string); ok && night != "" {
		logger = logger.With(String(FieldNight, night))
	}
	return logger
}
