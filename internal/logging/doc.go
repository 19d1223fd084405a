// Package logging assembles the structured slog loggers used across
// nightsweep.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes attr helpers plus context wiring so driver code can
// tag log lines with the run ID and the night being processed. A no-op
// logger is provided for tests and wiring code that cannot fail.
//
// Prefer these constructors over hand-rolled slog setup so every component
// emits data with the same shape.
package logging
