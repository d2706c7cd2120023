package telemetry

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kafaat/sahool-telemetry/errors"
	"github.com/kafaat/sahool-telemetry/vocabulary"
)

// Key precedence for field extraction: explicit > camelCase > shorthand.
// First present wins.
var (
	deviceIDKeys   = []string{"device_id", "deviceId", "d"}
	fieldIDKeys    = []string{"field_id", "fieldId", "f"}
	sensorTypeKeys = []string{"type", "sensor_type", "sensorType", "t"}
	valueKeys      = []string{"value", "v"}
	unitKeys       = []string{"unit", "u"}
	timestampKeys  = []string{"timestamp", "time", "ts"}
)

// topicSegments is the fixed shape of single-reading routing keys:
// <namespace>/sensors/<device_id>/<field_id>/<sensor_type>
const topicSegments = 5

// Normalizer converts raw message bodies into canonical Readings. It is a
// pure transformation: the same body and topic always produce the same
// readings (modulo the ingestion-time timestamp default), and all failures
// are validation errors naming the offending field.
type Normalizer struct {
	now func() time.Time
}

// NewNormalizer creates a Normalizer using the wall clock for timestamp
// defaulting.
func NewNormalizer() *Normalizer {
	return &Normalizer{now: time.Now}
}

// NewNormalizerWithClock creates a Normalizer with an injected clock.
// Intended for tests that need deterministic ingestion timestamps.
func NewNormalizerWithClock(now func() time.Time) *Normalizer {
	if now == nil {
		now = time.Now
	}
	return &Normalizer{now: now}
}

// Normalize turns a raw JSON body plus an optional routing key into one or
// more canonical Readings. A body containing a "readings" or "data" array,
// or being a bare array, is treated as a batch: any top-level device_id and
// field_id are inherited by elements that do not carry their own, and the
// elements are normalized independently in order. Any other body produces a
// single reading.
func (n *Normalizer) Normalize(body []byte, topic string) ([]Reading, error) {
	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, errors.NewValidation("body", fmt.Sprintf("malformed JSON: %v", err))
	}

	switch v := raw.(type) {
	case []any:
		return n.normalizeBatch(v, nil, topic)
	case map[string]any:
		if items, ok := batchItems(v); ok {
			return n.normalizeBatch(items, v, topic)
		}
		reading, err := n.normalizeOne(v, topic)
		if err != nil {
			return nil, err
		}
		return []Reading{reading}, nil
	default:
		return nil, errors.NewValidation("body", "payload must be a JSON object or array")
	}
}

// NormalizeOne is the single-reading form of Normalize. It rejects batch
// bodies.
func (n *Normalizer) NormalizeOne(body []byte, topic string) (Reading, error) {
	readings, err := n.Normalize(body, topic)
	if err != nil {
		return Reading{}, err
	}
	if len(readings) != 1 {
		return Reading{}, errors.NewValidation("body", fmt.Sprintf("expected single reading, got %d", len(readings)))
	}
	return readings[0], nil
}

// batchItems reports whether the body is a batch envelope and returns its
// element list. "readings" takes precedence over "data".
func batchItems(body map[string]any) ([]any, bool) {
	if items, ok := body["readings"].([]any); ok {
		return items, true
	}
	if items, ok := body["data"].([]any); ok {
		return items, true
	}
	return nil, false
}

// normalizeBatch normalizes each element independently, inheriting top-level
// device_id/field_id into elements that do not specify their own. parent is
// nil for bare-array bodies.
func (n *Normalizer) normalizeBatch(items []any, parent map[string]any, topic string) ([]Reading, error) {
	var inheritDevice, inheritField string
	if parent != nil {
		inheritDevice = firstString(parent, deviceIDKeys)
		inheritField = firstString(parent, fieldIDKeys)
	}

	readings := make([]Reading, 0, len(items))
	for i, item := range items {
		sub, ok := item.(map[string]any)
		if !ok {
			return nil, errors.NewValidation("body", fmt.Sprintf("batch element %d is not a JSON object", i))
		}
		if inheritDevice != "" && firstString(sub, deviceIDKeys) == "" {
			sub = withKey(sub, "device_id", inheritDevice)
		}
		if inheritField != "" && firstString(sub, fieldIDKeys) == "" {
			sub = withKey(sub, "field_id", inheritField)
		}

		reading, err := n.normalizeOne(sub, topic)
		if err != nil {
			return nil, errors.Wrap(err, "Normalizer", "Normalize", fmt.Sprintf("batch element %d", i))
		}
		readings = append(readings, reading)
	}
	return readings, nil
}

// normalizeOne builds one canonical Reading from an already-decoded body.
func (n *Normalizer) normalizeOne(body map[string]any, topic string) (Reading, error) {
	topicDevice, topicField, topicType := parseTopic(topic)

	deviceID := firstString(body, deviceIDKeys)
	if deviceID == "" {
		deviceID = topicDevice
	}
	if deviceID == "" {
		return Reading{}, errors.NewValidation("device_id", "missing required field")
	}

	fieldID := firstString(body, fieldIDKeys)
	if fieldID == "" {
		fieldID = topicField
	}
	if fieldID == "" {
		return Reading{}, errors.NewValidation("field_id", "missing required field")
	}

	rawType := firstString(body, sensorTypeKeys)
	if rawType == "" {
		rawType = topicType
	}
	if rawType == "" {
		return Reading{}, errors.NewValidation("type", "missing sensor type")
	}
	sensorType := vocabulary.CanonicalSensorType(rawType)

	rawValue, present := firstValue(body, valueKeys)
	if !present {
		return Reading{}, errors.NewValidation("value", "missing required field")
	}
	value, err := coerceFloat(rawValue)
	if err != nil {
		return Reading{}, errors.NewValidation("value", err.Error())
	}

	unit := firstString(body, unitKeys)
	if unit != "" {
		unit = vocabulary.CanonicalUnit(unit)
	} else {
		unit = vocabulary.DefaultUnit(sensorType)
	}

	timestamp := n.resolveTimestamp(body)

	return Reading{
		DeviceID:   deviceID,
		FieldID:    fieldID,
		SensorType: sensorType,
		Value:      value,
		Unit:       unit,
		Timestamp:  timestamp,
		RawTopic:   topic,
		Metadata:   captureMetadata(body),
	}, nil
}

// parseTopic derives device_id, field_id and sensor_type from a routing key
// of the fixed shape <namespace>/sensors/<device_id>/<field_id>/<sensor_type>.
// A topic with the wrong segment count yields empty strings, not an error,
// so the body can still supply the fields.
func parseTopic(topic string) (deviceID, fieldID, sensorType string) {
	if topic == "" {
		return "", "", ""
	}
	segments := strings.Split(topic, "/")
	if len(segments) != topicSegments || segments[1] != "sensors" {
		return "", "", ""
	}
	return segments[2], segments[3], segments[4]
}

// resolveTimestamp applies the timestamp rules: an explicit string is used
// verbatim, a numeric value is treated as a Unix epoch and converted to
// RFC 3339 UTC, and absence defaults to the ingestion time in UTC.
func (n *Normalizer) resolveTimestamp(body map[string]any) string {
	for _, key := range timestampKeys {
		raw, ok := body[key]
		if !ok {
			continue
		}
		switch v := raw.(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return time.Unix(int64(v), 0).UTC().Format(time.RFC3339)
		}
	}
	return n.now().UTC().Format(time.RFC3339)
}

// captureMetadata preserves an explicit metadata map and folds ad hoc
// battery/rssi top-level keys into it, merging without overwriting explicit
// entries. Returns nil when there is nothing to capture.
func captureMetadata(body map[string]any) map[string]any {
	var meta map[string]any
	if explicit, ok := body["metadata"].(map[string]any); ok {
		meta = make(map[string]any, len(explicit)+2)
		for k, v := range explicit {
			meta[k] = v
		}
	}

	for _, key := range []string{"battery", "rssi"} {
		v, ok := body[key]
		if !ok {
			continue
		}
		if meta == nil {
			meta = make(map[string]any, 2)
		}
		if _, exists := meta[key]; !exists {
			meta[key] = v
		}
	}
	return meta
}

// firstString returns the first present, non-empty string for the given
// keys, in precedence order.
func firstString(body map[string]any, keys []string) string {
	for _, key := range keys {
		if v, ok := body[key]; ok {
			switch s := v.(type) {
			case string:
				if trimmed := strings.TrimSpace(s); trimmed != "" {
					return trimmed
				}
			}
		}
	}
	return ""
}

// firstValue returns the first present value for the given keys, in
// precedence order. Presence is distinct from coercibility: a present but
// non-numeric value is a different validation failure than a missing one.
func firstValue(body map[string]any, keys []string) (any, bool) {
	for _, key := range keys {
		if v, ok := body[key]; ok {
			return v, true
		}
	}
	return nil, false
}

// coerceFloat converts a raw numeric-or-numeric-string value to float64.
func coerceFloat(raw any) (float64, error) {
	switch v := raw.(type) {
	case float64:
		return v, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, fmt.Errorf("cannot coerce %q to float64", v)
		}
		return f, nil
	case json.Number:
		return v.Float64()
	default:
		return 0, fmt.Errorf("cannot coerce %T to float64", raw)
	}
}

// withKey returns a copy of body with key set. The original map is never
// mutated: sub-bodies may alias the caller's decoded JSON.
func withKey(body map[string]any, key string, value any) map[string]any {
	out := make(map[string]any, len(body)+1)
	for k, v := range body {
		out[k] = v
	}
	out[key] = value
	return out
}
