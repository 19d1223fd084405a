// Package services defines the error taxonomy shared by the orchestrator's
// collaborator boundaries.
//
// Sentinel markers classify failures (configuration, external tool, missing
// data, transient) and Wrap attaches component/operation context while
// keeping the marker reachable through errors.Is. The driver uses the
// classification to decide what is fatal before the loop versus what becomes
// a per-night outcome.
package services
