package health

import (
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"time"
)

// Check reports the current health of one subsystem. Checks must be cheap;
// they run on every probe of the health endpoint.
type Check func() Status

// Monitor aggregates subsystem checks into one process-level status. It
// implements http.Handler so it can be mounted directly on the ops server.
type Monitor struct {
	mu     sync.RWMutex
	checks map[string]Check
}

// NewMonitor creates an empty health monitor.
func NewMonitor() *Monitor {
	return &Monitor{
		checks: make(map[string]Check),
	}
}

// RegisterCheck adds or replaces a named subsystem check.
func (m *Monitor) RegisterCheck(name string, check Check) {
	if name == "" || check == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checks[name] = check
}

// Overall runs every check and folds the results: the process is only as
// healthy as its worst subsystem.
func (m *Monitor) Overall() Status {
	m.mu.RLock()
	names := make([]string, 0, len(m.checks))
	for name := range m.checks {
		names = append(names, name)
	}
	checks := make(map[string]Check, len(m.checks))
	for name, check := range m.checks {
		checks[name] = check
	}
	m.mu.RUnlock()

	sort.Strings(names)

	overall := Status{
		Component: "sahool-ingest",
		State:     StateHealthy,
		Timestamp: time.Now().UTC(),
	}
	for _, name := range names {
		sub := checks[name]()
		sub.Component = name
		overall.State = worst(overall.State, sub.State)
		overall.SubStatuses = append(overall.SubStatuses, sub)
	}
	return overall
}

// ServeHTTP reports the aggregated status as JSON. Unhealthy maps to 503 so
// orchestrator probes fail without parsing the body; degraded stays 200
// because a reconnecting broker link should not get the process restarted.
func (m *Monitor) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	status := m.Overall()

	code := http.StatusOK
	if status.State == StateUnhealthy {
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(status)
}
