package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/kafaat/sahool-telemetry/errors"
)

// Config represents the complete application configuration.
type Config struct {
	Platform PlatformConfig `json:"platform"`
	MQTT     MQTTConfig     `json:"mqtt"`
	NATS     NATSConfig     `json:"nats"`
	Registry RegistryConfig `json:"registry"`
	Ingest   IngestConfig   `json:"ingest"`
	Metrics  MetricsConfig  `json:"metrics"`
}

// PlatformConfig defines platform identity.
type PlatformConfig struct {
	Org         string `json:"org" envconfig:"ORG"`                 // Topic namespace (e.g., "sahool")
	ID          string `json:"id" envconfig:"ID"`                   // Instance identifier
	Tenant      string `json:"tenant" envconfig:"TENANT"`           // Tenant owning auto-registered devices
	Environment string `json:"environment" envconfig:"ENVIRONMENT"` // "prod", "dev", "test"
}

// MQTTConfig defines broker connection settings.
type MQTTConfig struct {
	BrokerURL            string `json:"broker_url" envconfig:"MQTT_BROKER_URL"`
	ClientID             string `json:"client_id,omitempty" envconfig:"MQTT_CLIENT_ID"`
	Username             string `json:"username,omitempty" envconfig:"MQTT_USERNAME"`
	Password             string `json:"password,omitempty" envconfig:"MQTT_PASSWORD"`
	QoS                  int    `json:"qos" envconfig:"MQTT_QOS"`
	ReconnectWaitSeconds int    `json:"reconnect_wait_seconds" envconfig:"MQTT_RECONNECT_WAIT_SECONDS"`
	CleanSession         bool   `json:"clean_session" envconfig:"MQTT_CLEAN_SESSION"`
}

// NATSConfig defines the downstream sink connection. When disabled, readings
// are logged instead of forwarded.
type NATSConfig struct {
	Enabled  bool     `json:"enabled" envconfig:"NATS_ENABLED"`
	URLs     []string `json:"urls,omitempty" envconfig:"NATS_URLS"`
	Username string   `json:"username,omitempty" envconfig:"NATS_USERNAME"`
	Password string   `json:"password,omitempty" envconfig:"NATS_PASSWORD"`
	Name     string   `json:"name,omitempty" envconfig:"NATS_NAME"`
}

// RegistryConfig defines device lifecycle thresholds.
type RegistryConfig struct {
	LowBatteryThreshold float64 `json:"low_battery_threshold" envconfig:"REGISTRY_LOW_BATTERY_THRESHOLD"`
	OfflineAfterMinutes int     `json:"offline_after_minutes" envconfig:"REGISTRY_OFFLINE_AFTER_MINUTES"`
	AutoRegister        bool    `json:"auto_register" envconfig:"REGISTRY_AUTO_REGISTER"`
}

// IngestConfig defines the ingestion pipeline settings.
type IngestConfig struct {
	SweepSchedule string `json:"sweep_schedule" envconfig:"INGEST_SWEEP_SCHEDULE"` // cron expression
}

// MetricsConfig defines the Prometheus scrape endpoint.
type MetricsConfig struct {
	Enabled bool   `json:"enabled" envconfig:"METRICS_ENABLED"`
	Port    int    `json:"port" envconfig:"METRICS_PORT"`
	Path    string `json:"path,omitempty" envconfig:"METRICS_PATH"`
}

// Default returns a configuration with all defaults applied.
func Default() *Config {
	return &Config{
		Platform: PlatformConfig{
			Org:         "sahool",
			ID:          "ingest-1",
			Tenant:      "sahool",
			Environment: "dev",
		},
		MQTT: MQTTConfig{
			BrokerURL:            "tcp://localhost:1883",
			QoS:                  1,
			ReconnectWaitSeconds: 5,
			CleanSession:         true,
		},
		NATS: NATSConfig{
			Enabled: false,
			URLs:    []string{"nats://localhost:4222"},
		},
		Registry: RegistryConfig{
			LowBatteryThreshold: 20,
			OfflineAfterMinutes: 15,
			AutoRegister:        true,
		},
		Ingest: IngestConfig{
			SweepSchedule: "*/5 * * * *",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Port:    9090,
			Path:    "/metrics",
		},
	}
}

// Load reads configuration in three layers: defaults, then the optional
// JSON file, then SAHOOL_* environment variables. The result is validated
// before being returned.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.WrapFatal(err, "Config", "Load", fmt.Sprintf("read %s", path))
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, errors.WrapFatal(err, "Config", "Load", fmt.Sprintf("parse %s", path))
		}
	}

	if err := envconfig.Process("SAHOOL", cfg); err != nil {
		return nil, errors.WrapFatal(err, "Config", "Load", "apply environment overrides")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for internal consistency.
func (c *Config) Validate() error {
	if c.Platform.Org == "" {
		return errors.WrapFatal(errors.ErrMissingConfig, "Config", "Validate", "platform.org")
	}
	c.Platform.Org = strings.ToLower(c.Platform.Org)
	if strings.ContainsAny(c.Platform.Org, "/#+ ") {
		return errors.WrapFatal(
			fmt.Errorf("platform.org %q contains topic wildcard or separator characters", c.Platform.Org),
			"Config", "Validate", "platform.org")
	}

	if c.MQTT.BrokerURL == "" {
		return errors.WrapFatal(errors.ErrMissingConfig, "Config", "Validate", "mqtt.broker_url")
	}
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		return errors.WrapFatal(
			fmt.Errorf("mqtt.qos must be 0, 1 or 2, got %d", c.MQTT.QoS),
			"Config", "Validate", "mqtt.qos")
	}
	if c.MQTT.ReconnectWaitSeconds <= 0 {
		c.MQTT.ReconnectWaitSeconds = 5
	}

	if c.NATS.Enabled && len(c.NATS.URLs) == 0 {
		return errors.WrapFatal(errors.ErrMissingConfig, "Config", "Validate", "nats.urls")
	}

	if c.Registry.LowBatteryThreshold < 0 || c.Registry.LowBatteryThreshold > 100 {
		return errors.WrapFatal(
			fmt.Errorf("registry.low_battery_threshold must be within [0,100], got %v", c.Registry.LowBatteryThreshold),
			"Config", "Validate", "registry.low_battery_threshold")
	}
	if c.Registry.OfflineAfterMinutes <= 0 {
		c.Registry.OfflineAfterMinutes = 15
	}

	if c.Ingest.SweepSchedule == "" {
		c.Ingest.SweepSchedule = "*/5 * * * *"
	}

	if c.Metrics.Enabled && (c.Metrics.Port <= 0 || c.Metrics.Port > 65535) {
		return errors.WrapFatal(
			fmt.Errorf("metrics.port must be a valid port, got %d", c.Metrics.Port),
			"Config", "Validate", "metrics.port")
	}

	return nil
}

// ReconnectWait returns the broker reconnect interval as a duration.
func (c *MQTTConfig) ReconnectWait() time.Duration {
	return time.Duration(c.ReconnectWaitSeconds) * time.Second
}

// OfflineAfter returns the device silence window as a duration.
func (c *RegistryConfig) OfflineAfter() time.Duration {
	return time.Duration(c.OfflineAfterMinutes) * time.Minute
}
