// Package nights models observation-night date keys and the ordered set of
// nights selected for reprocessing.
//
// A Night spans all telescope units for one calendar date; it serves both as
// the data-directory wildcard key and as the per-night log filename key. The
// Set preserves supplied order because processing order drives reporting and
// time estimates, and it rejects an empty selection up front so the driver
// never runs zero iterations silently.
package nights
