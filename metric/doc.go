// Package metric provides Prometheus metrics for the telemetry ingestion
// core.
//
// All metrics live in a private registry wrapped by MetricsRegistry, never
// the process-global default, so tests can build isolated registries and
// the /metrics endpoint exposes exactly what this process registered. Core
// platform metrics (ingestion counters, registry gauges, broker connection
// state) are created up front; components register their own collectors
// through Register under a component.name key.
//
// Server exposes the registry over HTTP for Prometheus scraping, plus a
// trivial /health endpoint.
package metric
