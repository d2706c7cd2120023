// Package telemetry normalizes raw sensor payloads into canonical Readings.
//
// Field devices publish heterogeneous JSON: verbose documents, camelCase
// variants, compact shorthand ({"d","f","t","v"}), and batches. The
// Normalizer reconciles all of them into one Reading shape, filling gaps
// from the routing key, canonicalizing sensor types and units through the
// vocabulary package, and defaulting timestamps to ingestion time.
//
// Normalization is total over valid inputs and loud over invalid ones:
// every failure is a validation error naming the offending field, so
// operators can distinguish a missing device_id from an uncoercible value
// at a glance.
package telemetry
