package ingest

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"

	"nightsweep/internal/config"
	"nightsweep/internal/nights"
	"nightsweep/internal/services"
)

var commandContext = exec.CommandContext

// logFilePrefix identifies full-reprocessing logs among other files in the
// log directory.
const logFilePrefix = "full_reprocess_"

// Result captures one invocation of the ingestion subsystem.
type Result struct {
	ExitCode int
	LogPath  string
	// Err is set only when the invocation could not run at all (binary
	// missing, log file uncreatable). A clean launch that exits non-zero
	// leaves Err nil and reports the code.
	Err error
	// SinkErr records tee sink write failures (log file or console). The
	// stream kept flowing to the surviving sink; the caller logs a warning
	// because the per-night log may be incomplete.
	SinkErr error
}

// Failed reports whether the invocation counts as a failure.
func (r Result) Failed() bool {
	return r.Err != nil || r.ExitCode != 0
}

// Invoker runs the external ingestion subsystem for a single night.
type Invoker struct {
	binary  string
	workers int
	timeout time.Duration
}

// NewInvoker builds an Invoker from the ingest configuration.
func NewInvoker(cfg *config.Config) *Invoker {
	return &Invoker{
		binary:  cfg.Ingest.Command,
		workers: cfg.Ingest.Workers,
		timeout: time.Duration(cfg.Ingest.TimeoutMinutes) * time.Minute,
	}
}

// Args builds the subsystem command line for one night. The date range is
// collapsed to a single day and the flags request the full reprocessing
// posture: cleanup of prior partial state, no interactive prompts, continue
// past bad files inside the subsystem, verbose diagnostics, the fixed
// worker pool, post-ingest validation, automatic catalog/target creation,
// and exclusion of focus-sweep and test calibration frames.
func (inv *Invoker) Args(night nights.Night) []string {
	date := night.String()
	return []string{
		"--start", date,
		"--end", date,
		"--cleanup",
		"--auto-confirm",
		"--continue-on-error",
		"--debug",
		"--parallel",
		"--workers", strconv.Itoa(inv.workers),
		"--validate",
		"--create-targets",
		"--exclude-focus",
		"--exclude-test",
	}
}

// LogPath returns the deterministic per-night log location.
func LogPath(logDir string, night nights.Night) string {
	return filepath.Join(logDir, logFilePrefix+night.Key()+".log")
}

// Run invokes the subsystem for one night. Combined stdout/stderr is
// duplicated to the per-night log file and the console writer; one sink
// failing does not starve the other. Launch failures produce exit code -1
// with Err set.
func (inv *Invoker) Run(ctx context.Context, night nights.Night, logDir string, console io.Writer) Result {
	logPath := LogPath(logDir, night)

	logFile, err := os.Create(logPath)
	if err != nil {
		return Result{
			ExitCode: -1,
			LogPath:  logPath,
			Err:      services.Wrap(services.ErrExternalTool, "ingest", "open log", logPath, err),
		}
	}
	defer logFile.Close()

	if inv.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, inv.timeout)
		defer cancel()
	}

	sink := newDualWriter(logFile, console)
	cmd := commandContext(ctx, inv.binary, inv.Args(night)...)
	cmd.Stdout = sink
	cmd.Stderr = sink

	if err := cmd.Start(); err != nil {
		return Result{
			ExitCode: -1,
			LogPath:  logPath,
			Err:      services.Wrap(services.ErrExternalTool, "ingest", "launch", inv.binary, err),
		}
	}

	waitErr := cmd.Wait()
	res := Result{LogPath: logPath, SinkErr: sinkFailure(sink)}
	var exitErr *exec.ExitError
	switch {
	case waitErr == nil:
	case errors.As(waitErr, &exitErr):
		res.ExitCode = exitErr.ExitCode()
	default:
		res.ExitCode = -1
		res.Err = services.Wrap(services.ErrExternalTool, "ingest", "wait", inv.binary, waitErr)
	}
	return res
}

func sinkFailure(w *dualWriter) error {
	var errs []error
	for _, err := range w.SinkErrors() {
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
