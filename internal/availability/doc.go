// Package availability probes the observation root for raw data before a
// night is handed to the ingestion subsystem.
//
// The probe is deliberately unit-agnostic: it matches the night's directory
// under every telescope-unit subdirectory at once, so reprocessing is never
// skipped just because one unit's directory is absent. Filesystem trouble
// during the probe degrades to "no data" so a single night's I/O failure
// cannot halt the batch.
package availability
