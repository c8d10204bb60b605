package metrics

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// Status values reported by the health endpoints
const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
	StatusReady     = "ready"
	StatusNotReady  = "not_ready"
)

// HealthStatus is the JSON body of /health and /ready
type HealthStatus struct {
	Status     string            `json:"status"`
	Timestamp  time.Time         `json:"timestamp"`
	Components map[string]string `json:"components,omitempty"`
	Message    string            `json:"message,omitempty"`
	Version    string            `json:"version,omitempty"`
	Uptime     string            `json:"uptime,omitempty"`
	StartTime  time.Time         `json:"-"`
}

// ComponentHealth is the last reported state of one component
type ComponentHealth struct {
	Name    string
	Healthy bool
	Message string
	Updated time.Time
}

// HealthChecker holds component health for the process. Components are
// reported by the session ("session") and the simulation server ("api").
type HealthChecker struct {
	mu         sync.RWMutex
	components map[string]ComponentHealth
	startTime  time.Time
	version    string
	// critical components gate readiness; none means always ready
	critical []string
}

var healthChecker = &HealthChecker{
	components: make(map[string]ComponentHealth),
	startTime:  time.Now(),
}

// SetCriticalComponents sets the components that must be healthy for the
// process to report ready
func SetCriticalComponents(names ...string) {
	healthChecker.mu.Lock()
	defer healthChecker.mu.Unlock()
	healthChecker.critical = append([]string(nil), names...)
}

// SetVersion sets the version string for health responses
func SetVersion(version string) {
	healthChecker.mu.Lock()
	defer healthChecker.mu.Unlock()
	healthChecker.version = version
}

// RegisterComponent records the health of a component
func RegisterComponent(name string, healthy bool, message string) {
	healthChecker.mu.Lock()
	defer healthChecker.mu.Unlock()
	healthChecker.components[name] = ComponentHealth{
		Name:    name,
		Healthy: healthy,
		Message: message,
		Updated: time.Now(),
	}
}

// UpdateComponent is RegisterComponent for an already known component
func UpdateComponent(name string, healthy bool, message string) {
	RegisterComponent(name, healthy, message)
}

// status builds a response skeleton. Callers hold the read lock.
func (hc *HealthChecker) status(s string) HealthStatus {
	return HealthStatus{
		Status:     s,
		Timestamp:  time.Now(),
		Components: make(map[string]string),
		Version:    hc.version,
		Uptime:     time.Since(hc.startTime).String(),
		StartTime:  hc.startTime,
	}
}

// GetHealth reports unhealthy if any registered component is
func GetHealth() HealthStatus {
	healthChecker.mu.RLock()
	defer healthChecker.mu.RUnlock()

	h := healthChecker.status(StatusHealthy)
	for name, comp := range healthChecker.components {
		if comp.Healthy {
			h.Components[name] = StatusHealthy
			continue
		}
		h.Status = StatusUnhealthy
		h.Components[name] = StatusUnhealthy + ": " + comp.Message
	}
	return h
}

// GetReadiness reports ready once every critical component is healthy
func GetReadiness() HealthStatus {
	healthChecker.mu.RLock()
	defer healthChecker.mu.RUnlock()

	r := healthChecker.status(StatusReady)
	for _, name := range healthChecker.critical {
		comp, ok := healthChecker.components[name]
		switch {
		case !ok:
			r.Status = StatusNotReady
			r.Message = "waiting for " + name + " initialization"
			r.Components[name] = "not registered"
		case !comp.Healthy:
			r.Status = StatusNotReady
			r.Message = "waiting for " + name
			r.Components[name] = "not ready: " + comp.Message
		default:
			r.Components[name] = StatusReady
		}
	}
	return r
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// HealthHandler serves GetHealth, 503 when unhealthy
func HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		health := GetHealth()
		code := http.StatusOK
		if health.Status == StatusUnhealthy {
			code = http.StatusServiceUnavailable
		}
		writeJSON(w, code, health)
	}
}

// ReadyHandler serves GetReadiness, 503 until ready
func ReadyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		readiness := GetReadiness()
		code := http.StatusOK
		if readiness.Status != StatusReady {
			code = http.StatusServiceUnavailable
		}
		writeJSON(w, code, readiness)
	}
}

// LivenessHandler always answers 200 while the process runs
func LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "alive",
			"uptime": time.Since(healthChecker.startTime).String(),
		})
	}
}
