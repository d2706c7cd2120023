// Package sink carries normalized readings out of the ingestion core.
//
// The Sink interface decouples ingestion from the downstream transport.
// NATSSink publishes each reading on telemetry.readings.<device_id> and
// lifecycle alerts on telemetry.alerts.device; LogSink writes to the
// structured log for deployments without a downstream broker.
package sink
