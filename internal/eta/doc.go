// Package eta projects remaining wall-clock time for a reprocessing batch.
//
// The estimator extrapolates linearly from invocations completed so far
// against a start instant owned by the driver. When that clock yields no
// usable elapsed time, a registered fallback recovers it from the first
// completed invocation's log banner (an HH:MM:SS token, the way the legacy
// orchestrator did); any parse trouble degrades to "no estimate" instead of
// an error. Estimation must never abort the batch.
package eta
