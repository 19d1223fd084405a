package report

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"nightsweep/internal/runs"
)

// analyzerCommand is the follow-up validation tool suggested after a run
// with failures.
const analyzerCommand = "check-missing-files"

// Render formats the final summary: the outcome table, the counter tally,
// and corrective guidance when any night failed.
func Render(summary runs.Summary, logDir string, elapsed time.Duration, firstNight, lastNight string) string {
	var b strings.Builder

	b.WriteString("Reprocessing complete: ")
	b.WriteString(strconv.Itoa(summary.Total()))
	b.WriteString(" night(s) visited\n\n")
	b.WriteString(OutcomeTable(summary.Outcomes))
	b.WriteByte('\n')

	fmt.Fprintf(&b, "\nsucceeded=%d failed=%d skipped=%d total=%d elapsed=%s\n",
		summary.Succeeded, summary.Failed, summary.Skipped, summary.Total(),
		elapsed.Round(time.Second))

	if summary.HasFailures() {
		fmt.Fprintf(&b, "\n%d night(s) failed; inspect the per-night logs under %s\n", summary.Failed, logDir)
		fmt.Fprintf(&b, "Re-run the failures with:\n  nightsweep run %s\n", strings.Join(summary.FailedNights(), " "))
		fmt.Fprintf(&b, "Then validate the range with the missing-file analyzer:\n  %s --start %s --end %s\n",
			analyzerCommand, firstNight, lastNight)
	}

	return b.String()
}

// OutcomeTable renders the per-night outcome rows shared by the run summary
// and the history command. Skipped nights show their reason where the other
// statuses show the log path.
func OutcomeTable(outcomes []runs.Outcome) string {
	rows := make([][]string, 0, len(outcomes))
	for _, outcome := range outcomes {
		exit := ""
		if outcome.Status != runs.StatusSkipped {
			exit = strconv.Itoa(outcome.ExitCode)
		}
		detail := outcome.LogPath
		if outcome.Status == runs.StatusSkipped {
			detail = outcome.Message
		}
		rows = append(rows, []string{outcome.Night, string(outcome.Status), exit, detail})
	}
	return Table([]string{"Night", "Status", "Exit", "Log"}, rows, 3)
}
