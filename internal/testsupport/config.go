// Package testsupport provides shared helpers for package tests: per-test
// configs rooted in temp directories, history store openers, and stub
// ingestion binaries.
package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"nightsweep/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "obsdata")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithNights sets the configured reprocessing list.
func WithNights(nights ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Reprocess.Nights = nights
	}
}

// WithIngestCommand overrides the ingestion subsystem executable.
func WithIngestCommand(command string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Ingest.Command = command
	}
}

// WithStubbedIngest writes a stub ingestion executable running the provided
// shell script body and points ingest.command at it.
func WithStubbedIngest(script string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Ingest.Command = WriteStubIngest(b.t, b.baseDir, script)
	}
}

// WriteStubIngest writes an executable shell stub under dir and returns its
// path.
func WriteStubIngest(t testing.TB, dir, script string) string {
	t.Helper()

	binDir := filepath.Join(dir, "bin")
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", binDir, err)
	}
	path := filepath.Join(binDir, "raw-ingest")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755); err != nil {
		t.Fatalf("write stub %s: %v", path, err)
	}
	return path
}

// SeedNightData creates a night directory for the given unit so the
// availability probe finds raw data.
func SeedNightData(t testing.TB, cfg *config.Config, unit, night string) {
	t.Helper()

	dir := filepath.Join(cfg.Paths.DataDir, unit, night)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("seed night data %s: %v", dir, err)
	}
}
