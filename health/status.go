package health

import (
	"time"
)

// State is the coarse health classification of a subsystem.
type State string

const (
	// StateHealthy means the subsystem is fully operational.
	StateHealthy State = "healthy"
	// StateDegraded means the subsystem works but below expectations, e.g.
	// the broker connection is mid-reconnect.
	StateDegraded State = "degraded"
	// StateUnhealthy means the subsystem is not operational.
	StateUnhealthy State = "unhealthy"
)

// Status represents the health of one subsystem or the whole process.
type Status struct {
	Component   string         `json:"component"`
	State       State          `json:"state"`
	Message     string         `json:"message,omitempty"`
	Timestamp   time.Time      `json:"timestamp"`
	Details     map[string]any `json:"details,omitempty"`
	SubStatuses []Status       `json:"sub_statuses,omitempty"`
}

// IsHealthy returns true if the state is healthy
func (s Status) IsHealthy() bool {
	return s.State == StateHealthy
}

// Healthy builds a healthy status for a component.
func Healthy(component, message string) Status {
	return Status{
		Component: component,
		State:     StateHealthy,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}
}

// Degraded builds a degraded status for a component.
func Degraded(component, message string) Status {
	return Status{
		Component: component,
		State:     StateDegraded,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}
}

// Unhealthy builds an unhealthy status for a component.
func Unhealthy(component, message string) Status {
	return Status{
		Component: component,
		State:     StateUnhealthy,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}
}

// WithDetails returns a copy of the status with details attached.
func (s Status) WithDetails(details map[string]any) Status {
	s.Details = details
	return s
}

// worst returns the more severe of two states.
func worst(a, b State) State {
	rank := map[State]int{StateHealthy: 0, StateDegraded: 1, StateUnhealthy: 2}
	if rank[b] > rank[a] {
		return b
	}
	return a
}
