// Package config loads, normalizes, and validates nightsweep configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files resolved from an explicit flag, the
// per-user config directory, or a project-local nightsweep.toml. The Config
// type centralizes every knob the CLI needs: the observation root, the
// ingestion subsystem command line, the reprocessing night list, and log
// output settings.
//
// Always obtain settings through this package so downstream code receives
// sanitized absolute paths and clear validation errors.
package config
