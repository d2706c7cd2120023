package telemetry

import (
	"encoding/json"
)

// Reading is the canonical, ingestion-time sensor value. It is a fact about
// a point in time, not a live entity: once constructed it is never mutated,
// and it carries no ownership over the device it references.
type Reading struct {
	DeviceID   string         `json:"device_id"`
	FieldID    string         `json:"field_id"`
	SensorType string         `json:"sensor_type"`
	Value      float64        `json:"value"`
	Unit       string         `json:"unit"`
	Timestamp  string         `json:"timestamp"`
	RawTopic   string         `json:"raw_topic,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// ToMap returns the wire form of the reading as a generic map. Absent
// optional keys are omitted rather than emitted as null, and the result is
// renormalizable: feeding it back through the Normalizer yields the same
// canonical sensor type and unit.
func (r Reading) ToMap() map[string]any {
	m := map[string]any{
		"device_id":   r.DeviceID,
		"field_id":    r.FieldID,
		"sensor_type": r.SensorType,
		"value":       r.Value,
		"unit":        r.Unit,
		"timestamp":   r.Timestamp,
	}
	if r.RawTopic != "" {
		m["raw_topic"] = r.RawTopic
	}
	if len(r.Metadata) > 0 {
		meta := make(map[string]any, len(r.Metadata))
		for k, v := range r.Metadata {
			meta[k] = v
		}
		m["metadata"] = meta
	}
	return m
}

// Encode serializes the reading to its JSON wire form.
func (r Reading) Encode() ([]byte, error) {
	return json.Marshal(r)
}

// BatteryLevel extracts a battery level from the reading metadata, if the
// device supplied one.
func (r Reading) BatteryLevel() (float64, bool) {
	return metadataNumber(r.Metadata, "battery")
}

// SignalStrength extracts a signal strength (dBm) from the reading
// metadata, if the device supplied one.
func (r Reading) SignalStrength() (int, bool) {
	v, ok := metadataNumber(r.Metadata, "rssi")
	if !ok {
		return 0, false
	}
	return int(v), true
}

func metadataNumber(meta map[string]any, key string) (float64, bool) {
	if meta == nil {
		return 0, false
	}
	switch v := meta[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
