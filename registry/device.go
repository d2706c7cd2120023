package registry

import (
	"time"

	"github.com/kafaat/sahool-telemetry/vocabulary"
)

// Status is the lifecycle state of a registered device.
type Status string

const (
	// StatusUnknown is the state of a device that has never reported.
	StatusUnknown Status = "unknown"
	// StatusOnline means the device reported recently and is healthy.
	StatusOnline Status = "online"
	// StatusWarning means the device is reporting but degraded, currently
	// only low battery.
	StatusWarning Status = "warning"
	// StatusOffline means the device has not reported within the offline
	// window.
	StatusOffline Status = "offline"
	// StatusError means the device reported a fault.
	StatusError Status = "error"
)

// String returns the status as its wire string.
func (s Status) String() string {
	return string(s)
}

// Valid reports whether s is one of the defined lifecycle states.
func (s Status) Valid() bool {
	switch s {
	case StatusUnknown, StatusOnline, StatusWarning, StatusOffline, StatusError:
		return true
	}
	return false
}

// Location is a device's geographic position.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Device is a registered field device. All timestamps are UTC.
type Device struct {
	DeviceID        string                `json:"device_id"`
	TenantID        string                `json:"tenant_id,omitempty"`
	FieldID         string                `json:"field_id"`
	DeviceType      vocabulary.DeviceType `json:"device_type"`
	NameEN          string                `json:"name_en,omitempty"`
	NameAR          string                `json:"name_ar,omitempty"`
	Status          Status                `json:"status"`
	LastSeen        time.Time             `json:"last_seen,omitempty"`
	LastReading     map[string]any        `json:"last_reading,omitempty"`
	BatteryLevel    float64               `json:"battery_level"`
	SignalStrength  int                   `json:"signal_strength"`
	Location        *Location             `json:"location,omitempty"`
	FirmwareVersion string                `json:"firmware_version,omitempty"`
	Metadata        map[string]any        `json:"metadata,omitempty"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
}

// clone returns a deep-enough copy of the device for handing outside the
// registry lock. Maps are copied one level; values inside them are shared.
func (d *Device) clone() *Device {
	out := *d
	if d.LastReading != nil {
		out.LastReading = make(map[string]any, len(d.LastReading))
		for k, v := range d.LastReading {
			out.LastReading[k] = v
		}
	}
	if d.Metadata != nil {
		out.Metadata = make(map[string]any, len(d.Metadata))
		for k, v := range d.Metadata {
			out.Metadata[k] = v
		}
	}
	if d.Location != nil {
		loc := *d.Location
		out.Location = &loc
	}
	return &out
}
