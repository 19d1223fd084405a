package runs

// Status classifies the outcome of one night.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped"
)

// Outcome is the immutable per-night result, created when the driver
// finishes a night and never mutated afterward.
type Outcome struct {
	Night    string
	Status   Status
	ExitCode int
	LogPath  string
	Message  string
}

// Summary aggregates counters and the ordered outcome list for one run.
type Summary struct {
	Succeeded int
	Failed    int
	Skipped   int
	Outcomes  []Outcome
}

// Total reports the number of nights visited.
func (s Summary) Total() int {
	return s.Succeeded + s.Failed + s.Skipped
}

// HasFailures reports whether any night failed.
func (s Summary) HasFailures() bool {
	return s.Failed > 0
}

// FailedNights lists the nights that need a re-run, in processing order.
func (s Summary) FailedNights() []string {
	var out []string
	for _, outcome := range s.Outcomes {
		if outcome.Status == StatusFailed {
			out = append(out, outcome.Night)
		}
	}
	return out
}
