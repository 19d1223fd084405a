package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"nightsweep/internal/config"
)

// Options describes logger construction parameters.
type Options struct {
	Level  string
	Format string
	// ConsoleWriter receives the primary stream; defaults to stdout.
	ConsoleWriter io.Writer
	// FilePaths are appended log files that receive every record as JSON,
	// regardless of the console format.
	FilePaths []string
}

// New constructs a slog logger using the provided options. When file paths
// are given, records are duplicated to them through the fanout handler.
func New(opts Options) (*slog.Logger, error) {
	levelVar := new(slog.LevelVar)
	levelVar.Set(parseLevel(opts.Level))

	console := opts.ConsoleWriter
	if console == nil {
		console = os.Stdout
	}

	format := strings.ToLower(strings.TrimSpace(opts.Format))
	if format == "" {
		format = "console"
	}

	var handlers []slog.Handler
	switch format {
	case "json":
		handlers = append(handlers, slog.NewJSONHandler(console, &slog.HandlerOptions{Level: levelVar}))
	case "console":
		handlers = append(handlers, newConsoleHandler(console, levelVar))
	default:
		return nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}

	for _, path := range opts.FilePaths {
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file %q: %w", path, err)
		}
		handlers = append(handlers, slog.NewJSONHandler(file, &slog.HandlerOptions{Level: levelVar}))
	}

	return slog.New(NewFanoutHandler(handlers...)), nil
}

// NewFromConfig creates a logger using application config defaults, with
// optional extra file sinks (the driver adds its per-run log here).
func NewFromConfig(cfg *config.Config, filePaths ...string) (*slog.Logger, error) {
	if cfg == nil {
		return New(Options{FilePaths: filePaths})
	}
	return New(Options{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		FilePaths: filePaths,
	})
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "info", "":
		return slog.LevelInfo
	default:
		return slog.LevelInfo
	}
}
