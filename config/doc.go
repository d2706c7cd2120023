// Package config loads and validates the ingestion core configuration.
//
// Configuration is layered: compiled-in defaults, then an optional JSON
// file, then SAHOOL_* environment variables. Environment wins, so the same
// file can ship across environments with secrets injected at deploy time.
// Load validates the merged result and fails fast on inconsistencies; a
// process never starts with a config it cannot honor.
package config
