package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kafaat/sahool-telemetry/errors"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "sahool", cfg.Platform.Org)
	assert.Equal(t, "tcp://localhost:1883", cfg.MQTT.BrokerURL)
	assert.Equal(t, 1, cfg.MQTT.QoS)
	assert.Equal(t, 5*time.Second, cfg.MQTT.ReconnectWait())
	assert.Equal(t, 20.0, cfg.Registry.LowBatteryThreshold)
	assert.Equal(t, 15*time.Minute, cfg.Registry.OfflineAfter())
	assert.True(t, cfg.Registry.AutoRegister)
	assert.Equal(t, "*/5 * * * *", cfg.Ingest.SweepSchedule)
	assert.False(t, cfg.NATS.Enabled)
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"platform": {"org": "Sahool", "id": "gw-east"},
		"mqtt": {"broker_url": "tcp://broker.internal:1883", "qos": 2, "reconnect_wait_seconds": 10, "clean_session": true},
		"registry": {"low_battery_threshold": 25, "offline_after_minutes": 30, "auto_register": false},
		"metrics": {"enabled": true, "port": 9191}
	}`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	// Org is normalized to lowercase.
	assert.Equal(t, "sahool", cfg.Platform.Org)
	assert.Equal(t, "gw-east", cfg.Platform.ID)
	assert.Equal(t, "tcp://broker.internal:1883", cfg.MQTT.BrokerURL)
	assert.Equal(t, 2, cfg.MQTT.QoS)
	assert.Equal(t, 10*time.Second, cfg.MQTT.ReconnectWait())
	assert.Equal(t, 25.0, cfg.Registry.LowBatteryThreshold)
	assert.False(t, cfg.Registry.AutoRegister)
	assert.Equal(t, 9191, cfg.Metrics.Port)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.json")
	require.Error(t, err)
	assert.True(t, errors.IsFatal(err))
}

func TestLoad_NoFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "sahool", cfg.Platform.Org)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("SAHOOL_MQTT_BROKER_URL", "tcp://env-broker:1883")
	t.Setenv("SAHOOL_REGISTRY_OFFLINE_AFTER_MINUTES", "45")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "tcp://env-broker:1883", cfg.MQTT.BrokerURL)
	assert.Equal(t, 45*time.Minute, cfg.Registry.OfflineAfter())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing org", func(c *Config) { c.Platform.Org = "" }},
		{"org with wildcard", func(c *Config) { c.Platform.Org = "saho#ol" }},
		{"missing broker url", func(c *Config) { c.MQTT.BrokerURL = "" }},
		{"bad qos", func(c *Config) { c.MQTT.QoS = 3 }},
		{"nats enabled without urls", func(c *Config) { c.NATS.Enabled = true; c.NATS.URLs = nil }},
		{"battery threshold out of range", func(c *Config) { c.Registry.LowBatteryThreshold = 150 }},
		{"bad metrics port", func(c *Config) { c.Metrics.Port = -1 }},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg := Default()
			test.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.IsFatal(err))
		})
	}
}

func TestValidate_RepairsSoftFields(t *testing.T) {
	cfg := Default()
	cfg.MQTT.ReconnectWaitSeconds = 0
	cfg.Registry.OfflineAfterMinutes = 0
	cfg.Ingest.SweepSchedule = ""

	require.NoError(t, cfg.Validate())
	assert.Equal(t, 5*time.Second, cfg.MQTT.ReconnectWait())
	assert.Equal(t, 15*time.Minute, cfg.Registry.OfflineAfter())
	assert.Equal(t, "*/5 * * * *", cfg.Ingest.SweepSchedule)
}
