// Package sahooltelemetry is the IoT telemetry ingestion core for the
// Sahool agricultural platform.
//
// The module consumes raw sensor payloads from an MQTT broker, normalizes
// heterogeneous device formats into canonical readings, tracks device
// lifecycle in an in-memory registry, and forwards readings onto NATS
// subjects for downstream consumers.
//
// # Architecture
//
//	mqttclient -> ingest.Handler -> telemetry.Normalizer
//	                             -> registry.Registry
//	                             -> sink.Sink (NATS or log)
//	ingest.Sweeper (cron) -> registry offline sweep -> sink alerts
//
// See the cmd/sahool-ingest binary for the full wiring, config for the
// layered configuration, and metric/health for the ops surface.
package sahooltelemetry
