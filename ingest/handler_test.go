package ingest

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kafaat/sahool-telemetry/registry"
	"github.com/kafaat/sahool-telemetry/sink"
	"github.com/kafaat/sahool-telemetry/telemetry"
	"github.com/kafaat/sahool-telemetry/vocabulary"
)

// captureSink records everything published to it.
type captureSink struct {
	mu       sync.Mutex
	readings []telemetry.Reading
	alerts   []sink.Alert
	fail     bool
}

func (c *captureSink) Publish(_ context.Context, r telemetry.Reading) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return assert.AnError
	}
	c.readings = append(c.readings, r)
	return nil
}

func (c *captureSink) PublishAlert(_ context.Context, a sink.Alert) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return assert.AnError
	}
	c.alerts = append(c.alerts, a)
	return nil
}

func (c *captureSink) Close() error { return nil }

func (c *captureSink) Readings() []telemetry.Reading {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]telemetry.Reading(nil), c.readings...)
}

func (c *captureSink) Alerts() []sink.Alert {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]sink.Alert(nil), c.alerts...)
}

func newTestHandler(t *testing.T, autoRegister bool) (*Handler, *registry.Registry, *captureSink) {
	t.Helper()

	reg := registry.NewRegistry()
	cap := &captureSink{}
	h, err := NewHandler(HandlerDeps{
		Normalizer:   telemetry.NewNormalizer(),
		Registry:     reg,
		Sink:         cap,
		Logger:       slog.Default(),
		AutoRegister: autoRegister,
		TenantID:     "tenant-1",
	})
	require.NoError(t, err)
	return h, reg, cap
}

func TestNewHandler_MissingDeps(t *testing.T) {
	_, err := NewHandler(HandlerDeps{})
	require.Error(t, err)
}

func TestHandleMessage(t *testing.T) {
	h, reg, cap := newTestHandler(t, true)

	h.HandleMessage("sahool/sensors/soil-001/f1/sm", []byte(`{"v": 42.5, "battery": 80}`))

	readings := cap.Readings()
	require.Len(t, readings, 1)
	assert.Equal(t, "soil-001", readings[0].DeviceID)
	assert.Equal(t, "soil_moisture", readings[0].SensorType)

	// The device was onboarded under the configured tenant and its status
	// driven by the reading.
	d, err := reg.Get("soil-001")
	require.NoError(t, err)
	assert.Equal(t, "tenant-1", d.TenantID)
	assert.Equal(t, registry.StatusOnline, d.Status)
	assert.Equal(t, 80.0, d.BatteryLevel)
}

func TestHandleMessage_Batch(t *testing.T) {
	h, _, cap := newTestHandler(t, true)

	h.HandleMessage("", []byte(`{
		"device_id": "s1",
		"field_id": "f1",
		"readings": [
			{"t": "sm", "v": 40},
			{"t": "st", "v": 21}
		]
	}`))

	require.Len(t, cap.Readings(), 2)
}

func TestHandleMessage_DropsInvalid(t *testing.T) {
	h, _, cap := newTestHandler(t, true)

	h.HandleMessage("sahool/sensors/soil-001/f1/sm", []byte(`{not json`))
	h.HandleMessage("", []byte(`{"v": 1}`))

	assert.Empty(t, cap.Readings())

	// The feed keeps flowing after bad payloads.
	h.HandleMessage("sahool/sensors/soil-001/f1/sm", []byte(`{"v": 2}`))
	assert.Len(t, cap.Readings(), 1)
}

func TestHandleMessage_NoAutoRegister(t *testing.T) {
	h, reg, cap := newTestHandler(t, false)

	h.HandleMessage("sahool/sensors/ghost/f1/sm", []byte(`{"v": 1}`))

	// Unregistered device with onboarding disabled: nothing reaches the sink.
	assert.Empty(t, cap.Readings())
	_, err := reg.Get("ghost")
	assert.Error(t, err)

	// A provisioned device still flows.
	_, err = reg.Register(&registry.Device{
		DeviceID: "soil-009", TenantID: "t1", FieldID: "f1",
		DeviceType: vocabulary.DeviceSoilSensor,
	})
	require.NoError(t, err)
	h.HandleMessage("sahool/sensors/soil-009/f1/sm", []byte(`{"v": 2}`))
	require.Len(t, cap.Readings(), 1)
}

func TestHandleMessage_SinkFailure(t *testing.T) {
	h, reg, cap := newTestHandler(t, true)
	cap.fail = true

	// A failing sink must not panic or wedge registry updates.
	h.HandleMessage("sahool/sensors/soil-001/f1/sm", []byte(`{"v": 1}`))

	d, err := reg.Get("soil-001")
	require.NoError(t, err)
	assert.Equal(t, registry.StatusOnline, d.Status)
	assert.Empty(t, cap.Readings())
}

func TestSweeper(t *testing.T) {
	clock := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	now := clock
	reg := registry.NewRegistry(registry.WithClock(func() time.Time { return now }))
	cap := &captureSink{}

	sweeper, err := NewSweeper(SweeperDeps{
		Registry: reg,
		Sink:     cap,
		Schedule: "*/5 * * * *",
	})
	require.NoError(t, err)

	_, err = reg.Register(&registry.Device{DeviceID: "soil-001", FieldID: "f1"})
	require.NoError(t, err)
	require.NoError(t, reg.UpdateStatus(telemetry.Reading{
		DeviceID: "soil-001", FieldID: "f1", SensorType: "soil_moisture", Value: 1,
	}))

	now = clock.Add(20 * time.Minute)
	sweeper.Sweep()

	alerts := cap.Alerts()
	require.Len(t, alerts, 1)
	assert.Equal(t, "soil-001", alerts[0].DeviceID)
	assert.Equal(t, "offline", alerts[0].Status)
	assert.Equal(t, "online", alerts[0].Previous)

	// Re-sweeping does not re-alert.
	sweeper.Sweep()
	assert.Len(t, cap.Alerts(), 1)
}

func TestSweeper_BadSchedule(t *testing.T) {
	reg := registry.NewRegistry()
	sweeper, err := NewSweeper(SweeperDeps{
		Registry: reg,
		Sink:     &captureSink{},
		Schedule: "not a cron line",
	})
	require.NoError(t, err)

	err = sweeper.Start()
	require.Error(t, err)
}

func TestSweeper_StartStop(t *testing.T) {
	reg := registry.NewRegistry()
	sweeper, err := NewSweeper(SweeperDeps{
		Registry: reg,
		Sink:     &captureSink{},
		Schedule: "*/5 * * * *",
	})
	require.NoError(t, err)

	require.NoError(t, sweeper.Start())
	sweeper.Stop()
}
