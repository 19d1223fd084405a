package driver

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofrs/flock"

	"nightsweep/internal/availability"
	"nightsweep/internal/config"
	"nightsweep/internal/ingest"
	"nightsweep/internal/logging"
	"nightsweep/internal/nights"
	"nightsweep/internal/runs"
	"nightsweep/internal/services"
	"nightsweep/internal/testsupport"
)

type stubInvoker struct {
	exitCodes map[string]int
	launchErr map[string]error
	sinkErr   error
	calls     []string
}

func (s *stubInvoker) Run(_ context.Context, night nights.Night, logDir string, _ io.Writer) ingest.Result {
	s.calls = append(s.calls, night.String())
	logPath := ingest.LogPath(logDir, night)
	if err, ok := s.launchErr[night.String()]; ok {
		return ingest.Result{ExitCode: -1, LogPath: logPath, Err: err}
	}
	return ingest.Result{ExitCode: s.exitCodes[night.String()], LogPath: logPath, SinkErr: s.sinkErr}
}

type stubChecker struct {
	available map[string]bool
	err       error
}

func (s stubChecker) HasData(night nights.Night) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	return s.available[night.String()], nil
}

func allAvailable(dates ...string) stubChecker {
	available := make(map[string]bool, len(dates))
	for _, date := range dates {
		available[date] = true
	}
	return stubChecker{available: available}
}

func mustSet(t *testing.T, dates ...string) nights.Set {
	t.Helper()
	set, err := nights.NewSet(dates)
	if err != nil {
		t.Fatalf("NewSet(%v): %v", dates, err)
	}
	return set
}

func newDriver(t *testing.T, cfg *config.Config, invoker Invoker, checker Checker, history History) (*Driver, *bytes.Buffer) {
	t.Helper()
	console := &bytes.Buffer{}
	d, err := New(Options{
		Config:  cfg,
		Invoker: invoker,
		Checker: checker,
		History: history,
		Console: console,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return d, console
}

func TestRunContinuesPastMiddleFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	invoker := &stubInvoker{exitCodes: map[string]int{"2025-06-02": 1}}
	d, console := newDriver(t, cfg,
		invoker, allAvailable("2025-06-01", "2025-06-02", "2025-06-03"), nil)

	summary, err := d.Run(context.Background(), mustSet(t, "2025-06-01", "2025-06-02", "2025-06-03"))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if summary.Succeeded != 2 || summary.Failed != 1 || summary.Skipped != 0 {
		t.Fatalf("counters = %d/%d/%d, want 2/1/0", summary.Succeeded, summary.Failed, summary.Skipped)
	}
	wantStatuses := []runs.Status{runs.StatusSucceeded, runs.StatusFailed, runs.StatusSucceeded}
	for i, outcome := range summary.Outcomes {
		if outcome.Status != wantStatuses[i] {
			t.Errorf("outcome[%d] = %s, want %s", i, outcome.Status, wantStatuses[i])
		}
	}
	if len(invoker.calls) != 3 {
		t.Fatalf("invocations = %d, want 3 (no early stop)", len(invoker.calls))
	}
	if !strings.Contains(console.String(), "2025-06-02") {
		t.Errorf("summary output missing failed night:\n%s", console.String())
	}
}

func TestRunSkipsNightsWithoutData(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	invoker := &stubInvoker{}
	d, _ := newDriver(t, cfg, invoker, stubChecker{}, nil)

	summary, err := d.Run(context.Background(), mustSet(t, "2025-06-01", "2025-06-02"))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if summary.Skipped != 2 || summary.Succeeded != 0 || summary.Failed != 0 {
		t.Fatalf("counters = %d/%d/%d, want 0/0/2", summary.Succeeded, summary.Failed, summary.Skipped)
	}
	if len(invoker.calls) != 0 {
		t.Fatalf("invoker ran %d times for skipped nights", len(invoker.calls))
	}

	entries, err := filepath.Glob(filepath.Join(cfg.Paths.LogDir, "full_reprocess_*"))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("skipped nights must not produce logs, found %v", entries)
	}
}

func TestRunProbeErrorBecomesSkip(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	invoker := &stubInvoker{}
	d, _ := newDriver(t, cfg, invoker, stubChecker{err: errors.New("permission denied")}, nil)

	summary, err := d.Run(context.Background(), mustSet(t, "2025-06-01"))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Skipped != 1 {
		t.Fatalf("skipped = %d, want 1", summary.Skipped)
	}
	if !strings.Contains(summary.Outcomes[0].Message, "permission denied") {
		t.Errorf("skip message should carry probe error, got %q", summary.Outcomes[0].Message)
	}
}

func TestRunLaunchFailureIsContained(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	launchErr := services.Wrap(services.ErrExternalTool, "ingest", "launch", "raw-ingest", errors.New("executable file not found"))
	invoker := &stubInvoker{launchErr: map[string]error{"2025-06-01": launchErr}}
	d, _ := newDriver(t, cfg, invoker, allAvailable("2025-06-01", "2025-06-02"), nil)

	summary, err := d.Run(context.Background(), mustSet(t, "2025-06-01", "2025-06-02"))
	if err != nil {
		t.Fatalf("launch failure must not fail the run: %v", err)
	}
	if summary.Failed != 1 || summary.Succeeded != 1 {
		t.Fatalf("counters = %d/%d, want 1 failed 1 succeeded", summary.Failed, summary.Succeeded)
	}
	if summary.Outcomes[0].ExitCode != -1 {
		t.Errorf("launch failure exit code = %d, want -1", summary.Outcomes[0].ExitCode)
	}
}

func TestRunCountersAlwaysSumToSetLength(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	invoker := &stubInvoker{exitCodes: map[string]int{"2025-06-03": 2}}
	checker := stubChecker{available: map[string]bool{
		"2025-06-01": true,
		"2025-06-03": true,
		"2025-06-04": true,
	}}
	d, _ := newDriver(t, cfg, invoker, checker, nil)

	dates := []string{"2025-06-01", "2025-06-02", "2025-06-03", "2025-06-04"}
	summary, err := d.Run(context.Background(), mustSet(t, dates...))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := summary.Succeeded + summary.Failed + summary.Skipped; got != len(dates) {
		t.Fatalf("counter sum = %d, want %d", got, len(dates))
	}
	if len(summary.Outcomes) != len(dates) {
		t.Fatalf("outcomes = %d, want one per night", len(summary.Outcomes))
	}
}

func TestRunEmptySetIsConfigurationError(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	d, _ := newDriver(t, cfg, &stubInvoker{}, stubChecker{}, nil)

	_, err := d.Run(context.Background(), nights.Set{})
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("err = %v, want configuration error", err)
	}
}

func TestRunLockContention(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := os.MkdirAll(cfg.Paths.LogDir, 0o755); err != nil {
		t.Fatal(err)
	}
	holder := flock.New(filepath.Join(cfg.Paths.LogDir, lockFileName))
	locked, err := holder.TryLock()
	if err != nil || !locked {
		t.Fatalf("pre-acquire lock: locked=%v err=%v", locked, err)
	}
	defer func() {
		_ = holder.Unlock()
	}()

	d, _ := newDriver(t, cfg, &stubInvoker{}, stubChecker{}, nil)
	_, err = d.Run(context.Background(), mustSet(t, "2025-06-01"))
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("err = %v, want configuration error on held lock", err)
	}
}

func TestRunPersistsHistory(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	invoker := &stubInvoker{exitCodes: map[string]int{"2025-06-02": 1}}
	d, _ := newDriver(t, cfg, invoker, allAvailable("2025-06-01", "2025-06-02"), store)

	summary, err := d.Run(context.Background(), mustSet(t, "2025-06-01", "2025-06-02"))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	records, err := store.ListRuns(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("runs persisted = %d, want 1", len(records))
	}
	record := records[0]
	if record.Total != 2 || record.Succeeded != summary.Succeeded || record.Failed != summary.Failed {
		t.Fatalf("persisted record %+v does not match summary %+v", record, summary)
	}
	if record.FinishedAt == nil {
		t.Fatal("run should be stamped finished")
	}

	_, outcomes, err := store.GetRun(context.Background(), record.ID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if len(outcomes) != 2 {
		t.Fatalf("persisted outcomes = %d, want 2", len(outcomes))
	}
	if outcomes[1].Status != runs.StatusFailed || outcomes[1].ExitCode != 1 {
		t.Fatalf("second outcome = %+v, want failed with exit 1", outcomes[1])
	}
}

type failingHistory struct{}

func (failingHistory) BeginRun(context.Context, string, time.Time, int) error {
	return errors.New("disk full")
}

func (failingHistory) RecordOutcome(context.Context, string, runs.Outcome, time.Time) error {
	return errors.New("disk full")
}

func (failingHistory) FinishRun(context.Context, string, time.Time, runs.Summary) error {
	return errors.New("disk full")
}

func TestRunHistoryFailureIsBestEffort(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	d, _ := newDriver(t, cfg, &stubInvoker{}, allAvailable("2025-06-01"), failingHistory{})

	summary, err := d.Run(context.Background(), mustSet(t, "2025-06-01"))
	if err != nil {
		t.Fatalf("history failure must not fail the run: %v", err)
	}
	if summary.Succeeded != 1 {
		t.Fatalf("succeeded = %d, want 1", summary.Succeeded)
	}
}

type logWritingInvoker struct {
	banner string
}

func (s logWritingInvoker) Run(_ context.Context, night nights.Night, logDir string, _ io.Writer) ingest.Result {
	logPath := ingest.LogPath(logDir, night)
	if err := os.WriteFile(logPath, []byte(s.banner+"\n"), 0o644); err != nil {
		return ingest.Result{ExitCode: -1, LogPath: logPath, Err: err}
	}
	return ingest.Result{ExitCode: 0, LogPath: logPath}
}

func TestRunETARecoversElapsedFromLogBanner(t *testing.T) {
	cfg := testsupport.NewConfig(t)

	var logBuf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "info", Format: "json", ConsoleWriter: &logBuf})
	if err != nil {
		t.Fatal(err)
	}

	// A frozen clock yields zero elapsed time; the estimate must come from
	// the HH:MM:SS banner in the first completed night's log.
	frozen := time.Date(2025, 6, 10, 4, 0, 0, 0, time.UTC)
	d, err := New(Options{
		Config:  cfg,
		Logger:  logger,
		Invoker: logWritingInvoker{banner: "ingest started 03:00:00"},
		Checker: allAvailable("2025-06-01", "2025-06-02"),
		Console: &bytes.Buffer{},
		Clock:   func() time.Time { return frozen },
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := d.Run(context.Background(), mustSet(t, "2025-06-01", "2025-06-02")); err != nil {
		t.Fatalf("Run: %v", err)
	}

	logs := logBuf.String()
	if !strings.Contains(logs, "estimated time remaining") {
		t.Fatalf("no estimate emitted despite the recoverable log banner:\n%s", logs)
	}
	if !strings.Contains(logs, `"component":"driver"`) {
		t.Fatalf("driver records missing component tag:\n%s", logs)
	}
	if !strings.Contains(logs, `"event_type":"run_completed"`) {
		t.Fatalf("lifecycle records missing event type:\n%s", logs)
	}
}

func TestRunWarnsOnDegradedLogStream(t *testing.T) {
	cfg := testsupport.NewConfig(t)

	var logBuf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "info", Format: "json", ConsoleWriter: &logBuf})
	if err != nil {
		t.Fatal(err)
	}

	invoker := &stubInvoker{sinkErr: errors.New("console sink full")}
	d, err := New(Options{
		Config:  cfg,
		Logger:  logger,
		Invoker: invoker,
		Checker: allAvailable("2025-06-01"),
		Console: &bytes.Buffer{},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	summary, err := d.Run(context.Background(), mustSet(t, "2025-06-01"))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Succeeded != 1 {
		t.Fatalf("sink trouble must not change the outcome, got %+v", summary)
	}
	if !strings.Contains(logBuf.String(), "per-night log stream degraded") {
		t.Fatalf("missing degraded-stream warning:\n%s", logBuf.String())
	}
}

func TestRunEndToEndWithStubIngest(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedIngest(
		`case "$2" in 2025-06-02) echo "bad night" ; exit 1 ;; esac
echo "ingested $2"
exit 0`))
	for _, night := range []string{"2025-06-01", "2025-06-02", "2025-06-03"} {
		testsupport.SeedNightData(t, cfg, "7DT01", night)
	}

	console := &bytes.Buffer{}
	d, err := New(Options{
		Config:  cfg,
		Invoker: ingest.NewInvoker(cfg),
		Checker: availability.NewChecker(cfg),
		Console: console,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	summary, err := d.Run(context.Background(), mustSet(t, "2025-06-01", "2025-06-02", "2025-06-03"))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Succeeded != 2 || summary.Failed != 1 {
		t.Fatalf("counters = %d/%d, want 2 succeeded 1 failed", summary.Succeeded, summary.Failed)
	}

	logPath := filepath.Join(cfg.Paths.LogDir, "full_reprocess_20250602.log")
	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read failed-night log: %v", err)
	}
	if !strings.Contains(string(data), "bad night") {
		t.Errorf("log missing subsystem output: %q", data)
	}
	if !strings.Contains(console.String(), "bad night") {
		t.Errorf("console missing teed subsystem output")
	}
}
