// Package report renders the final tally for a reprocessing run.
//
// Output is purely informational: a per-night outcome table, the counter
// line, and follow-up guidance pointing at the per-night logs and the
// missing-file analyzer when failures remain. Nothing here influences the
// run's control flow or exit status.
package report
