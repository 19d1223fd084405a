// Package ingest is the external-process boundary to the ingestion
// subsystem.
//
// The Invoker builds a single-day invocation with the full-reprocessing
// posture (destructive cleanup, non-interactive confirmation, continue past
// bad files, verbose diagnostics, a fixed worker pool, post-ingest
// validation, automatic target creation, focus/test frames excluded) and
// duplicates the subsystem's combined output stream to the per-night log
// file and the orchestrator console. Exit status is passed through
// verbatim; the orchestrator never reinterprets the subsystem's codes.
package ingest
