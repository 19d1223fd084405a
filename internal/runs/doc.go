// Package runs tracks per-night reprocessing outcomes and persists run
// history in SQLite.
//
// The Tracker is pure in-memory bookkeeping owned by the driver's single
// thread: one outcome per night, counters that must sum to the night-list
// length at completion. The Store mirrors outcomes into a small history
// database so past runs can be inspected after the process exits; history
// writes are best-effort and never affect the run itself.
//
// Schema changes bump the version in schema.go; the database records runs,
// never observation data.
package runs
