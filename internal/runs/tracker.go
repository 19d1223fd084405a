package runs

// Tracker accumulates outcomes across a run. Pure bookkeeping with no I/O;
// the driver's single thread of control is the only writer, so no locking
// is needed.
type Tracker struct {
	summary Summary
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// RecordSuccess books a night whose invocation exited zero.
func (t *Tracker) RecordSuccess(night, logPath string) Outcome {
	outcome := Outcome{Night: night, Status: StatusSucceeded, LogPath: logPath}
	t.summary.Succeeded++
	t.summary.Outcomes = append(t.summary.Outcomes, outcome)
	return outcome
}

// RecordFailure books a night whose invocation exited non-zero or never
// launched.
func (t *Tracker) RecordFailure(night string, exitCode int, logPath, message string) Outcome {
	outcome := Outcome{
		Night:    night,
		Status:   StatusFailed,
		ExitCode: exitCode,
		LogPath:  logPath,
		Message:  message,
	}
	t.summary.Failed++
	t.summary.Outcomes = append(t.summary.Outcomes, outcome)
	return outcome
}

// RecordSkip books a night with no raw data (or an unreadable probe).
func (t *Tracker) RecordSkip(night, message string) Outcome {
	outcome := Outcome{Night: night, Status: StatusSkipped, Message: message}
	t.summary.Skipped++
	t.summary.Outcomes = append(t.summary.Outcomes, outcome)
	return outcome
}

// Summary returns a copy of the accumulated state.
func (t *Tracker) Summary() Summary {
	out := t.summary
	out.Outcomes = make([]Outcome, len(t.summary.Outcomes))
	copy(out.Outcomes, t.summary.Outcomes)
	return out
}
