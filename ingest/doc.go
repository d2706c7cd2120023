// Package ingest wires the ingestion pipeline together: one handler per
// inbound message (normalize, registry update, downstream publish) and a
// cron-scheduled sweeper that transitions silent devices to offline.
//
// The handler is deliberately lossy toward bad input: a payload that fails
// normalization is logged, counted and dropped. The feed from thousands of
// field devices must keep flowing no matter what any single device sends.
package ingest
