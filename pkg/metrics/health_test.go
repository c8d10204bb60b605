package metrics

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetHealth(version string, critical ...string) {
	healthChecker = &HealthChecker{
		components: make(map[string]ComponentHealth),
		startTime:  time.Now(),
		version:    version,
		critical:   critical,
	}
}

func TestRegisterComponent(t *testing.T) {
	resetHealth("")

	RegisterComponent("session", true, "connected")

	require.Len(t, healthChecker.components, 1)
	comp := healthChecker.components["session"]
	assert.True(t, comp.Healthy)
	assert.Equal(t, "connected", comp.Message)
}

func TestGetHealth(t *testing.T) {
	tests := []struct {
		name       string
		components map[string]bool
		want       string
	}{
		{"all healthy", map[string]bool{"session": true, "store": true}, "healthy"},
		{"one unhealthy", map[string]bool{"session": false, "store": true}, "unhealthy"},
		{"none registered", nil, "healthy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetHealth("1.0.0")
			for name, healthy := range tt.components {
				RegisterComponent(name, healthy, "disconnected")
			}

			health := GetHealth()
			assert.Equal(t, tt.want, health.Status)
			assert.Len(t, health.Components, len(tt.components))
			assert.Equal(t, "1.0.0", health.Version)
		})
	}
}

func TestGetHealthComponentMessage(t *testing.T) {
	resetHealth("")
	RegisterComponent("session", false, "connection failed")

	assert.Equal(t, "unhealthy: connection failed", GetHealth().Components["session"])
}

func TestGetReadiness(t *testing.T) {
	resetHealth("", "session")

	readiness := GetReadiness()
	assert.Equal(t, "not_ready", readiness.Status)
	assert.Equal(t, "waiting for session initialization", readiness.Message)

	RegisterComponent("session", false, "connecting")
	readiness = GetReadiness()
	assert.Equal(t, "not_ready", readiness.Status)
	assert.Equal(t, "not ready: connecting", readiness.Components["session"])

	UpdateComponent("session", true, "")
	readiness = GetReadiness()
	assert.Equal(t, "ready", readiness.Status)
	assert.Empty(t, readiness.Message)
}

func TestSetCriticalComponents(t *testing.T) {
	resetHealth("")
	RegisterComponent("session", false, "")

	assert.Equal(t, "ready", GetReadiness().Status, "nothing is critical")

	SetCriticalComponents("session")
	assert.Equal(t, "not_ready", GetReadiness().Status)
}

func TestHealthHandler(t *testing.T) {
	resetHealth("test")
	RegisterComponent("store", true, "")

	w := httptest.NewRecorder()
	HealthHandler()(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	var health HealthStatus
	require.NoError(t, json.NewDecoder(w.Body).Decode(&health))
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "test", health.Version)

	resetHealth("")
	RegisterComponent("store", false, "closed")
	w = httptest.NewRecorder()
	HealthHandler()(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestReadyHandler(t *testing.T) {
	resetHealth("", "api")

	w := httptest.NewRecorder()
	ReadyHandler()(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	RegisterComponent("api", true, "")
	w = httptest.NewRecorder()
	ReadyHandler()(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	var readiness HealthStatus
	require.NoError(t, json.NewDecoder(w.Body).Decode(&readiness))
	assert.Equal(t, "ready", readiness.Status)
}

func TestLivenessHandler(t *testing.T) {
	resetHealth("")

	w := httptest.NewRecorder()
	LivenessHandler()(w, httptest.NewRequest(http.MethodGet, "/live", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, "alive", response["status"])
	assert.NotEmpty(t, response["uptime"])
}
