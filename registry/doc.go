// Package registry tracks field devices and their lifecycle status.
//
// The registry is an in-memory, mutex-guarded index keyed by device ID.
// Devices enter it either explicitly through Register or implicitly through
// AutoRegister when their first reading arrives (zero-touch onboarding, with
// the device category inferred from the sensor type).
//
// # Lifecycle
//
// A device moves through five states: unknown, online, warning, offline and
// error. Readings drive the healthy path (online, or warning when the
// reported battery drops below the threshold), the periodic offline sweep
// transitions any silent device to offline after the configured window, and
// error is entered through explicit SetStatus calls. No state is sticky: a
// device in any state that reports again goes straight back to online or
// warning.
//
// The registry never expires devices on its own. Offline devices stay
// registered until explicitly deleted, so a device that resumes reporting
// transitions straight back to online with its history intact.
package registry
