package health

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonitor_Empty(t *testing.T) {
	m := NewMonitor()
	status := m.Overall()
	assert.Equal(t, StateHealthy, status.State)
	assert.Empty(t, status.SubStatuses)
}

func TestMonitor_WorstWins(t *testing.T) {
	m := NewMonitor()
	m.RegisterCheck("mqtt", func() Status { return Healthy("", "connected") })
	m.RegisterCheck("nats", func() Status { return Degraded("", "reconnecting") })

	status := m.Overall()
	assert.Equal(t, StateDegraded, status.State)
	require.Len(t, status.SubStatuses, 2)

	m.RegisterCheck("registry", func() Status { return Unhealthy("", "wedged") })
	assert.Equal(t, StateUnhealthy, m.Overall().State)
}

func TestMonitor_SubStatusOrderIsStable(t *testing.T) {
	m := NewMonitor()
	m.RegisterCheck("zeta", func() Status { return Healthy("", "") })
	m.RegisterCheck("alpha", func() Status { return Healthy("", "") })

	status := m.Overall()
	require.Len(t, status.SubStatuses, 2)
	assert.Equal(t, "alpha", status.SubStatuses[0].Component)
	assert.Equal(t, "zeta", status.SubStatuses[1].Component)
}

func TestMonitor_ServeHTTP(t *testing.T) {
	m := NewMonitor()
	m.RegisterCheck("mqtt", func() Status {
		return Healthy("", "connected").WithDetails(map[string]any{"reconnects": 0})
	})

	rec := httptest.NewRecorder()
	m.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))
	assert.Equal(t, 200, rec.Code)

	var status Status
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, StateHealthy, status.State)

	// Unhealthy subsystems flip the probe to 503.
	m.RegisterCheck("nats", func() Status { return Unhealthy("", "connection refused") })
	rec = httptest.NewRecorder()
	m.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))
	assert.Equal(t, 503, rec.Code)
}
