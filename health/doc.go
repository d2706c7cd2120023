// Package health aggregates subsystem health into one process-level status.
//
// Subsystems register cheap Check functions with a Monitor; the Monitor
// folds them into an overall status where the process is only as healthy
// as its worst part. The Monitor doubles as an http.Handler for readiness
// probes: unhealthy returns 503, degraded (e.g. broker mid-reconnect)
// stays 200.
package health
