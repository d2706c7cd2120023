// Package mqttclient wraps an MQTT broker connection with the lifecycle
// telemetry ingestion needs: a fixed-interval reconnect loop that never
// gives up, subscriptions that survive reconnects, and handler isolation.
//
// # Connection lifecycle
//
// The connection cycles through disconnected, connecting and connected for
// as long as the process runs. A lost connection is retried at a fixed
// interval (default 5s) indefinitely; there is no backoff and no give-up,
// because a field gateway's only job while the broker is down is to keep
// trying. Stop is the single terminal transition.
//
// # Subscriptions and handlers
//
// Subscribe registers a topic filter and handler pair that is replayed on
// every successful connect, so a broker restart does not silently drop the
// ingest feed. Handlers run isolated: a panic in one message handler is
// recovered and logged without affecting the connection or other handlers.
//
// # Publishing
//
// Publish is fire-and-forget with explicit QoS and retain flags. It fails
// fast while disconnected rather than queueing, leaving retry policy to the
// caller.
package mqttclient
