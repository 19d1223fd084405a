// Package driver owns the sequential reprocessing loop: acquire the
// single-instance lock, walk the night list in order, gate each night on
// raw-data availability, invoke the ingestion subsystem, record exactly one
// outcome per night, and render the final summary.
//
// Per-night failures are contained as outcomes; only pre-loop problems
// (empty night list, unusable log directory, lock contention) surface as
// errors from Run.
package driver
