package driver

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"nightsweep/internal/config"
	"nightsweep/internal/eta"
	"nightsweep/internal/ingest"
	"nightsweep/internal/logging"
	"nightsweep/internal/nights"
	"nightsweep/internal/report"
	"nightsweep/internal/runs"
	"nightsweep/internal/services"
)

const lockFileName = "nightsweep.lock"

// Invoker runs the ingestion subsystem for a single night.
type Invoker interface {
	Run(ctx context.Context, night nights.Night, logDir string, console io.Writer) ingest.Result
}

// Checker probes whether a night has raw data on disk.
type Checker interface {
	HasData(night nights.Night) (bool, error)
}

// History mirrors outcomes into durable storage. The driver treats it as
// best-effort: a failing history never aborts or fails the run.
type History interface {
	BeginRun(ctx context.Context, runID string, startedAt time.Time, total int) error
	RecordOutcome(ctx context.Context, runID string, outcome runs.Outcome, at time.Time) error
	FinishRun(ctx context.Context, runID string, finishedAt time.Time, summary runs.Summary) error
}

// Options configures a Driver. Config, Invoker, and Checker are required;
// the rest default to sensible values.
type Options struct {
	Config  *config.Config
	Logger  *slog.Logger
	Invoker Invoker
	Checker Checker
	History History
	Console io.Writer
	Clock   func() time.Time
	// RunID names the run; a fresh UUID is generated when empty. Callers
	// that open a run-scoped log file mint the ID themselves so the file
	// name and the history rows agree.
	RunID string
}

// Driver executes one reprocessing run.
type Driver struct {
	cfg     *config.Config
	logger  *slog.Logger
	invoker Invoker
	checker Checker
	history History
	console io.Writer
	now     func() time.Time
	runID   string
}

// New validates the options and builds a Driver.
func New(opts Options) (*Driver, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("driver: config is required")
	}
	if opts.Invoker == nil {
		return nil, fmt.Errorf("driver: invoker is required")
	}
	if opts.Checker == nil {
		return nil, fmt.Errorf("driver: checker is required")
	}

	d := &Driver{
		cfg:     opts.Config,
		logger:  logging.NewComponentLogger(opts.Logger, "driver"),
		invoker: opts.Invoker,
		checker: opts.Checker,
		history: opts.History,
		console: opts.Console,
		now:     opts.Clock,
		runID:   opts.RunID,
	}
	if d.console == nil {
		d.console = os.Stdout
	}
	if d.now == nil {
		d.now = time.Now
	}
	return d, nil
}

// Run walks the night set in order and returns the accumulated summary.
// The returned error is non-nil only for pre-loop configuration problems;
// per-night failures are reported through the summary.
func (d *Driver) Run(ctx context.Context, set nights.Set) (runs.Summary, error) {
	if set.Len() == 0 {
		return runs.Summary{}, services.Wrap(services.ErrConfiguration, "driver", "preflight", "night list is empty", nights.ErrEmptySet)
	}
	if err := os.MkdirAll(d.cfg.Paths.LogDir, 0o755); err != nil {
		return runs.Summary{}, services.Wrap(services.ErrConfiguration, "driver", "preflight", "create log directory", err)
	}

	lock := flock.New(filepath.Join(d.cfg.Paths.LogDir, lockFileName))
	locked, err := lock.TryLock()
	if err != nil {
		return runs.Summary{}, services.Wrap(services.ErrConfiguration, "driver", "preflight", "acquire run lock", err)
	}
	if !locked {
		return runs.Summary{}, services.Wrap(services.ErrConfiguration, "driver", "preflight", "another reprocessing run holds the lock", nil)
	}
	defer func() {
		_ = lock.Unlock()
	}()

	runID := d.runID
	if runID == "" {
		runID = uuid.NewString()
	}
	ctx = logging.WithRunID(ctx, runID)
	logger := logging.WithContext(ctx, d.logger)

	startedAt := d.now()
	tracker := runs.NewTracker()
	all := set.Nights()

	// When the process clock yields no usable elapsed time (clock step,
	// suspended host), the first completed invocation's log banner is the
	// recovery source.
	var fallbackLog string
	estimator := eta.NewEstimator(startedAt, d.now)
	estimator.SetElapsedFallback(func(now time.Time) (time.Duration, bool) {
		if fallbackLog == "" {
			return 0, false
		}
		return eta.ElapsedFromLog(fallbackLog, now)
	})

	d.historyBegin(ctx, logger, runID, startedAt, len(all))

	logger.Info("reprocessing started",
		logging.String(logging.FieldEventType, "run_started"),
		logging.Int("nights", len(all)),
		logging.String("first", set.First().String()),
		logging.String("last", set.Last().String()),
		logging.String("log_dir", d.cfg.Paths.LogDir),
	)

	invocations := 0
	for i, night := range all {
		nightCtx := logging.WithNight(ctx, night.String())
		nightLogger := logging.WithContext(nightCtx, d.logger)

		nightLogger.Info("night started",
			logging.Int("position", i+1),
			logging.Int("total", len(all)),
		)

		outcome := d.processNight(nightCtx, nightLogger, night, tracker, &invocations)
		d.historyOutcome(nightCtx, nightLogger, runID, outcome)

		if fallbackLog == "" && outcome.Status != runs.StatusSkipped && outcome.LogPath != "" {
			fallbackLog = outcome.LogPath
		}

		if remaining := len(all) - (i + 1); remaining > 0 {
			if projected, ok := estimator.Estimate(invocations, remaining); ok {
				nightLogger.Info("estimated time remaining",
					logging.Duration("eta", projected.Round(time.Second)),
					logging.Int("remaining", remaining),
				)
			}
		}
	}

	summary := tracker.Summary()
	finishedAt := d.now()
	d.historyFinish(ctx, logger, runID, finishedAt, summary)

	logger.Info("reprocessing complete",
		logging.String(logging.FieldEventType, "run_completed"),
		logging.Int("succeeded", summary.Succeeded),
		logging.Int("failed", summary.Failed),
		logging.Int("skipped", summary.Skipped),
		logging.Duration("elapsed", finishedAt.Sub(startedAt).Round(time.Second)),
	)

	fmt.Fprint(d.console, report.Render(summary, d.cfg.Paths.LogDir,
		finishedAt.Sub(startedAt), set.First().String(), set.Last().String()))

	return summary, nil
}

// processNight produces exactly one outcome for the night. Availability
// probe errors are treated as skips so the loop keeps its unconditional
// advance.
func (d *Driver) processNight(ctx context.Context, logger *slog.Logger, night nights.Night, tracker *runs.Tracker, invocations *int) runs.Outcome {
	available, err := d.checker.HasData(night)
	if err != nil {
		logger.Warn("availability probe failed, skipping night",
			logging.String(logging.FieldEventType, "night_skipped"),
			logging.Error(err))
		return tracker.RecordSkip(night.String(), "availability probe failed: "+err.Error())
	}
	if !available {
		logger.Info("no raw data found, skipping night",
			logging.String(logging.FieldEventType, "night_skipped"))
		return tracker.RecordSkip(night.String(), "no raw data found")
	}

	result := d.invoker.Run(ctx, night, d.cfg.Paths.LogDir, d.console)
	*invocations++

	if result.SinkErr != nil {
		logger.Warn("per-night log stream degraded", logging.Error(result.SinkErr))
	}

	switch {
	case !result.Failed():
		logger.Info("night succeeded",
			logging.String(logging.FieldEventType, "night_succeeded"),
			logging.String("log", result.LogPath))
		return tracker.RecordSuccess(night.String(), result.LogPath)
	case result.Err != nil:
		logger.Error("ingestion could not run",
			logging.String(logging.FieldEventType, "night_failed"),
			logging.Error(result.Err))
		return tracker.RecordFailure(night.String(), result.ExitCode, result.LogPath, result.Err.Error())
	default:
		logger.Error("ingestion exited non-zero",
			logging.String(logging.FieldEventType, "night_failed"),
			logging.Int("exit_code", result.ExitCode),
			logging.String("log", result.LogPath),
		)
		return tracker.RecordFailure(night.String(), result.ExitCode, result.LogPath,
			fmt.Sprintf("exit status %d", result.ExitCode))
	}
}

func (d *Driver) historyBegin(ctx context.Context, logger *slog.Logger, runID string, startedAt time.Time, total int) {
	if d.history == nil {
		return
	}
	if err := d.history.BeginRun(ctx, runID, startedAt, total); err != nil {
		logger.Warn("run history unavailable", logging.Error(err))
	}
}

func (d *Driver) historyOutcome(ctx context.Context, logger *slog.Logger, runID string, outcome runs.Outcome) {
	if d.history == nil {
		return
	}
	if err := d.history.RecordOutcome(ctx, runID, outcome, d.now()); err != nil {
		logger.Warn("recording outcome in run history failed", logging.Error(err))
	}
}

func (d *Driver) historyFinish(ctx context.Context, logger *slog.Logger, runID string, finishedAt time.Time, summary runs.Summary) {
	if d.history == nil {
		return
	}
	if err := d.history.FinishRun(ctx, runID, finishedAt, summary); err != nil {
		logger.Warn("finalizing run history failed", logging.Error(err))
	}
}
