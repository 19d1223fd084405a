package eta

import (
	"bufio"
	"os"
	"regexp"
	"time"
)

// Estimator projects remaining duration by linear extrapolation from
// completed invocations.
type Estimator struct {
	start    time.Time
	now      func() time.Time
	fallback func(now time.Time) (time.Duration, bool)
}

// NewEstimator seeds the estimator with the run's start instant and a clock.
func NewEstimator(start time.Time, now func() time.Time) *Estimator {
	if now == nil {
		now = time.Now
	}
	return &Estimator{start: start, now: now}
}

// SetElapsedFallback registers a recovery source consulted when the
// estimator's own clock cannot produce a positive elapsed duration (clock
// step, suspended host). The driver points it at the first completed
// invocation's log.
func (e *Estimator) SetElapsedFallback(fn func(now time.Time) (time.Duration, bool)) {
	e.fallback = fn
}

// Estimate projects the remaining duration after completed invocations with
// remaining nights still to visit. It reports false until at least one
// invocation has completed and whenever the projection would not be
// positive.
func (e *Estimator) Estimate(completed, remaining int) (time.Duration, bool) {
	if completed <= 0 || remaining <= 0 {
		return 0, false
	}
	elapsed, ok := e.elapsed()
	if !ok {
		return 0, false
	}
	projected := elapsed / time.Duration(completed) * time.Duration(remaining)
	if projected <= 0 {
		return 0, false
	}
	return projected, true
}

func (e *Estimator) elapsed() (time.Duration, bool) {
	now := e.now()
	if elapsed := now.Sub(e.start); elapsed > 0 {
		return elapsed, true
	}
	if e.fallback == nil {
		return 0, false
	}
	recovered, ok := e.fallback(now)
	if !ok || recovered <= 0 {
		return 0, false
	}
	return recovered, true
}

var clockTokenRE = regexp.MustCompile(`\b(\d{2}):(\d{2}):(\d{2})\b`)

// ElapsedFromLog recovers elapsed time from the first line of an ingestion
// log by locating an HH:MM:SS token, the way the legacy orchestrator did.
// A missing file, absent token, invalid time, or a token later than now all
// yield false.
func ElapsedFromLog(path string, now time.Time) (time.Duration, bool) {
	file, err := os.Open(path)
	if err != nil {
		return 0, false
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	if !scanner.Scan() {
		return 0, false
	}
	match := clockTokenRE.FindString(scanner.Text())
	if match == "" {
		return 0, false
	}

	parsed, err := time.Parse("15:04:05", match)
	if err != nil {
		return 0, false
	}

	started := time.Date(now.Year(), now.Month(), now.Day(),
		parsed.Hour(), parsed.Minute(), parsed.Second(), 0, now.Location())
	elapsed := now.Sub(started)
	if elapsed <= 0 {
		return 0, false
	}
	return elapsed, true
}
