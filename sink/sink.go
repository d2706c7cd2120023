package sink

import (
	"context"
	"log/slog"

	"github.com/kafaat/sahool-telemetry/telemetry"
)

// Sink receives normalized readings for downstream consumption.
type Sink interface {
	// Publish forwards one reading. Implementations must not block past the
	// context deadline.
	Publish(ctx context.Context, reading telemetry.Reading) error

	// PublishAlert forwards a device lifecycle alert.
	PublishAlert(ctx context.Context, alert Alert) error

	// Close releases the sink's resources.
	Close() error
}

// Alert is a device lifecycle notification, emitted when the offline sweep
// or a status change needs downstream attention.
type Alert struct {
	DeviceID string `json:"device_id"`
	FieldID  string `json:"field_id,omitempty"`
	Status   string `json:"status"`
	Previous string `json:"previous,omitempty"`
	Message  string `json:"message,omitempty"`
	At       string `json:"at"`
}

// LogSink writes readings to the structured log instead of a broker. It is
// the fallback when no downstream transport is configured, keeping the
// pipeline observable in dev setups.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink creates a sink that logs each reading.
func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger}
}

// Publish logs the reading.
func (s *LogSink) Publish(_ context.Context, reading telemetry.Reading) error {
	s.logger.Info("reading",
		"device_id", reading.DeviceID,
		"field_id", reading.FieldID,
		"sensor_type", reading.SensorType,
		"value", reading.Value,
		"unit", reading.Unit,
		"timestamp", reading.Timestamp)
	return nil
}

// PublishAlert logs the alert.
func (s *LogSink) PublishAlert(_ context.Context, alert Alert) error {
	s.logger.Warn("device alert",
		"device_id", alert.DeviceID,
		"field_id", alert.FieldID,
		"status", alert.Status,
		"previous", alert.Previous,
		"message", alert.Message)
	return nil
}

// Close is a no-op.
func (s *LogSink) Close() error {
	return nil
}
