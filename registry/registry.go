package registry

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/kafaat/sahool-telemetry/errors"
	"github.com/kafaat/sahool-telemetry/telemetry"
	"github.com/kafaat/sahool-telemetry/vocabulary"
)

const (
	// DefaultLowBatteryThreshold is the battery percentage below which a
	// reporting device is degraded to warning.
	DefaultLowBatteryThreshold = 20.0

	// DefaultOfflineAfter is how long a device may go silent before the
	// offline sweep transitions it.
	DefaultOfflineAfter = 15 * time.Minute
)

// Registry is an in-memory index of field devices keyed by device ID. All
// methods are safe for concurrent use. Devices returned from the registry
// are copies: mutating them does not affect registry state.
type Registry struct {
	mu      sync.RWMutex
	devices map[string]*Device

	lowBatteryThreshold float64
	offlineAfter        time.Duration
	now                 func() time.Time
	logger              *slog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithLowBatteryThreshold overrides the battery percentage below which a
// device is degraded to warning.
func WithLowBatteryThreshold(threshold float64) Option {
	return func(r *Registry) {
		r.lowBatteryThreshold = threshold
	}
}

// WithOfflineAfter overrides the silence window after which the offline
// sweep transitions a device.
func WithOfflineAfter(d time.Duration) Option {
	return func(r *Registry) {
		if d > 0 {
			r.offlineAfter = d
		}
	}
}

// WithClock injects a clock. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		if now != nil {
			r.now = now
		}
	}
}

// WithLogger sets the structured logger used for lifecycle transitions.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRegistry creates an empty device registry with default thresholds.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		devices:             make(map[string]*Device),
		lowBatteryThreshold: DefaultLowBatteryThreshold,
		offlineAfter:        DefaultOfflineAfter,
		now:                 time.Now,
		logger:              slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register upserts a device. The first call for an ID creates the record;
// later calls overwrite the identity fields (tenant, field, type, names)
// and any optional fields supplied, leaving the rest untouched. Live health
// fields (status, last seen, battery) are never reset by re-registration.
// Returns the resulting device.
func (r *Registry) Register(device *Device) (*Device, error) {
	if device == nil || device.DeviceID == "" {
		return nil, errors.NewValidation("device_id", "missing required field")
	}
	if !device.Status.Valid() && device.Status != "" {
		return nil, errors.NewValidation("status", fmt.Sprintf("unknown status %q", device.Status))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	ts := r.now().UTC()

	existing, ok := r.devices[device.DeviceID]
	if !ok {
		d := device.clone()
		if d.Status == "" {
			d.Status = StatusUnknown
		}
		d.CreatedAt = ts
		d.UpdatedAt = ts
		r.devices[d.DeviceID] = d

		r.logger.Info("device registered",
			"device_id", d.DeviceID,
			"field_id", d.FieldID,
			"device_type", string(d.DeviceType))
		return d.clone(), nil
	}

	existing.TenantID = device.TenantID
	existing.FieldID = device.FieldID
	existing.DeviceType = device.DeviceType
	existing.NameEN = device.NameEN
	existing.NameAR = device.NameAR
	if device.Location != nil {
		loc := *device.Location
		existing.Location = &loc
	}
	if device.FirmwareVersion != "" {
		existing.FirmwareVersion = device.FirmwareVersion
	}
	if device.Metadata != nil {
		existing.Metadata = make(map[string]any, len(device.Metadata))
		for k, v := range device.Metadata {
			existing.Metadata[k] = v
		}
	}
	existing.UpdatedAt = ts

	r.logger.Info("device re-registered",
		"device_id", existing.DeviceID,
		"field_id", existing.FieldID,
		"device_type", string(existing.DeviceType))
	return existing.clone(), nil
}

// AutoRegister creates a minimal device record for a sensor that was never
// explicitly provisioned. The device type is inferred from the sensor type
// and placeholder display names are generated; the device starts out
// unknown, the first UpdateStatus drives it online. Existing devices are
// returned unchanged.
func (r *Registry) AutoRegister(deviceID, tenantID, fieldID, sensorType string) (*Device, error) {
	if deviceID == "" {
		return nil, errors.NewValidation("device_id", "missing required field")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.devices[deviceID]; ok {
		return existing.clone(), nil
	}

	ts := r.now().UTC()
	d := &Device{
		DeviceID:   deviceID,
		TenantID:   tenantID,
		FieldID:    fieldID,
		DeviceType: vocabulary.DeviceTypeFor(sensorType),
		NameEN:     fmt.Sprintf("Auto-registered %s", deviceID),
		NameAR:     fmt.Sprintf("جهاز مسجل تلقائيا %s", deviceID),
		Status:     StatusUnknown,
		CreatedAt:  ts,
		UpdatedAt:  ts,
	}
	r.devices[d.DeviceID] = d

	r.logger.Info("device auto-registered",
		"device_id", d.DeviceID,
		"tenant_id", d.TenantID,
		"field_id", d.FieldID,
		"device_type", string(d.DeviceType),
		"sensor_type", sensorType)
	return d.clone(), nil
}

// Get returns the device with the given ID.
func (r *Registry) Get(deviceID string) (*Device, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.devices[deviceID]
	if !ok {
		return nil, errors.WrapInvalid(errors.ErrUnknownDevice, "Registry", "Get", fmt.Sprintf("device %s lookup", deviceID))
	}
	return d.clone(), nil
}

// GetByField returns all devices assigned to a field.
func (r *Registry) GetByField(fieldID string) []*Device {
	return r.filter(func(d *Device) bool { return d.FieldID == fieldID })
}

// GetByTenant returns all devices owned by a tenant.
func (r *Registry) GetByTenant(tenantID string) []*Device {
	return r.filter(func(d *Device) bool { return d.TenantID == tenantID })
}

// GetByType returns all devices of a device type.
func (r *Registry) GetByType(deviceType vocabulary.DeviceType) []*Device {
	return r.filter(func(d *Device) bool { return d.DeviceType == deviceType })
}

// ListAll returns every registered device.
func (r *Registry) ListAll() []*Device {
	return r.filter(func(*Device) bool { return true })
}

func (r *Registry) filter(keep func(*Device) bool) []*Device {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Device, 0, len(r.devices))
	for _, d := range r.devices {
		if keep(d) {
			out = append(out, d.clone())
		}
	}
	return out
}

// UpdateStatus applies a reading to its device: refreshes last-seen and
// last-reading, folds in battery and signal metadata, and recomputes the
// lifecycle status. A healthy report goes online; a report with battery
// below the threshold goes warning. No state survives a successful reading:
// an offline or errored device that reports again comes straight back.
func (r *Registry) UpdateStatus(reading telemetry.Reading) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.devices[reading.DeviceID]
	if !ok {
		return errors.WrapInvalid(errors.ErrUnknownDevice, "Registry", "UpdateStatus", fmt.Sprintf("device %s lookup", reading.DeviceID))
	}

	ts := r.now().UTC()
	d.LastSeen = ts
	d.UpdatedAt = ts
	d.LastReading = reading.ToMap()

	if battery, ok := reading.BatteryLevel(); ok {
		d.BatteryLevel = battery
	}
	if rssi, ok := reading.SignalStrength(); ok {
		d.SignalStrength = rssi
	}

	next := StatusOnline
	if battery, ok := reading.BatteryLevel(); ok && battery < r.lowBatteryThreshold {
		next = StatusWarning
	}
	if next != d.Status {
		r.logger.Info("device status changed",
			"device_id", d.DeviceID,
			"from", d.Status.String(),
			"to", next.String())
		d.Status = next
	}
	return nil
}

// SetStatus forces a device into an explicit lifecycle state, bypassing the
// derived rules. Error can only be entered this way; the next reading moves
// the device back to online or warning.
func (r *Registry) SetStatus(deviceID string, status Status) error {
	if !status.Valid() {
		return errors.NewValidation("status", fmt.Sprintf("unknown status %q", status))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.devices[deviceID]
	if !ok {
		return errors.WrapInvalid(errors.ErrUnknownDevice, "Registry", "SetStatus", fmt.Sprintf("device %s lookup", deviceID))
	}
	if d.Status != status {
		r.logger.Info("device status changed",
			"device_id", deviceID,
			"from", d.Status.String(),
			"to", status.String())
		d.Status = status
		d.UpdatedAt = r.now().UTC()
	}
	return nil
}

// Transition records one status change made by the offline sweep. Device is
// the post-transition snapshot, Previous the status it left.
type Transition struct {
	Device   *Device
	Previous Status
}

// CheckOfflineDevices sweeps for devices that have gone silent past the
// offline window and transitions them to offline. Any status other than
// offline itself is swept, so an errored device that stops reporting still
// ends up offline. Only devices transitioned by this call are returned, so
// a repeated sweep over an unchanged registry returns nothing.
func (r *Registry) CheckOfflineDevices() []Transition {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().UTC().Add(-r.offlineAfter)
	var transitioned []Transition
	for _, d := range r.devices {
		if d.Status == StatusOffline {
			continue
		}
		if d.LastSeen.IsZero() || d.LastSeen.After(cutoff) {
			continue
		}

		r.logger.Warn("device went offline",
			"device_id", d.DeviceID,
			"field_id", d.FieldID,
			"last_seen", d.LastSeen,
			"was", d.Status.String())
		prev := d.Status
		d.Status = StatusOffline
		d.UpdatedAt = r.now().UTC()
		transitioned = append(transitioned, Transition{Device: d.clone(), Previous: prev})
	}
	return transitioned
}

// Delete removes a device. Deleting an unknown device is an error so
// callers can distinguish a typo from a cleanup.
func (r *Registry) Delete(deviceID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.devices[deviceID]; !ok {
		return errors.WrapInvalid(errors.ErrUnknownDevice, "Registry", "Delete", fmt.Sprintf("device %s lookup", deviceID))
	}
	delete(r.devices, deviceID)
	r.logger.Info("device deleted", "device_id", deviceID)
	return nil
}

// Stats is a point-in-time summary of the registry.
type Stats struct {
	Total    int                           `json:"total"`
	ByStatus map[Status]int                `json:"by_status"`
	ByType   map[vocabulary.DeviceType]int `json:"by_type"`
	ByField  map[string]int                `json:"by_field"`
}

// Stats returns counts of registered devices grouped by status, type and
// field.
func (r *Registry) Stats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s := Stats{
		Total:    len(r.devices),
		ByStatus: make(map[Status]int),
		ByType:   make(map[vocabulary.DeviceType]int),
		ByField:  make(map[string]int),
	}
	for _, d := range r.devices {
		s.ByStatus[d.Status]++
		s.ByType[d.DeviceType]++
		if d.FieldID != "" {
			s.ByField[d.FieldID]++
		}
	}
	return s
}
