package sink

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kafaat/sahool-telemetry/telemetry"
)

func TestLogSink_Publish(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	s := NewLogSink(logger)

	err := s.Publish(context.Background(), telemetry.Reading{
		DeviceID:   "soil-001",
		FieldID:    "f1",
		SensorType: "soil_moisture",
		Value:      42.5,
		Unit:       "%",
		Timestamp:  "2025-06-15T12:00:00Z",
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"device_id":"soil-001"`)
	assert.Contains(t, buf.String(), `"sensor_type":"soil_moisture"`)

	require.NoError(t, s.Close())
}

func TestLogSink_PublishAlert(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	s := NewLogSink(logger)

	err := s.PublishAlert(context.Background(), Alert{
		DeviceID: "soil-001",
		Status:   "offline",
		Previous: "online",
		Message:  "no readings for 15m",
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"status":"offline"`)
}

func TestReadingSubject(t *testing.T) {
	assert.Equal(t, "telemetry.readings.soil-001", ReadingSubject("soil-001"))

	// Subject-breaking characters are replaced.
	assert.Equal(t, "telemetry.readings.a_b_c", ReadingSubject("a.b c"))
	assert.Equal(t, "telemetry.readings.x__", ReadingSubject("x*>"))
}

func TestNewNATSSink_MissingURLs(t *testing.T) {
	_, err := NewNATSSink(NATSOptions{})
	require.Error(t, err)
}
