// Package vocabulary defines the canonical sensor vocabulary for telemetry
// ingestion: sensor type names, measurement units, and the device categories
// inferred from them.
//
// # Design
//
// Field sensors publish the same measurement under many spellings: a soil
// moisture probe may report "sm", "moisture", "vwc", or "soilMoisture".
// This package reconciles them through fixed, immutable alias tables:
//
//   - sensor-type aliases: many case-insensitive synonyms → one canonical
//     type per family (soil, weather, water, plant)
//   - unit aliases: synonym unit spellings → one canonical unit string
//   - default units: per-type unit applied when the payload carries none
//   - device-type inference: canonical sensor type → device category, used
//     by zero-touch onboarding
//
// The vocabulary is open, not closed. An unmapped sensor type is passed
// through lower-cased rather than rejected; an unmapped unit passes through
// unchanged. New synonyms are additive data in the tables, never new types.
//
// All lookups are pure functions over package-level map literals, safe for
// concurrent use.
package vocabulary
