package api

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/cuemby/reportwatch/pkg/metrics"
)

// Check reports whether a component is ready, with a message when it is not
type Check func() (ok bool, message string)

// HealthServer provides HTTP health check endpoints
type HealthServer struct {
	mux    *http.ServeMux
	checks map[string]Check
	server *http.Server
}

// NewHealthServer creates a new health check HTTP server. Every named check
// is a critical component for readiness.
func NewHealthServer(checks map[string]Check) *HealthServer {
	mux := http.NewServeMux()
	hs := &HealthServer{
		mux:    mux,
		checks: checks,
	}

	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)
	metrics.SetCriticalComponents(names...)

	// Register endpoints
	mux.HandleFunc("/health", hs.healthHandler)
	mux.HandleFunc("/ready", hs.readyHandler)
	mux.Handle("/live", metrics.LivenessHandler())
	mux.Handle("/metrics", metrics.Handler())

	return hs
}

// Start starts the health check HTTP server
func (hs *HealthServer) Start(addr string) error {
	hs.server = &http.Server{
		Addr:         addr,
		Handler:      hs.mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	err := hs.server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown stops a started server
func (hs *HealthServer) Shutdown(ctx context.Context) error {
	if hs.server == nil {
		return nil
	}
	return hs.server.Shutdown(ctx)
}

// healthHandler implements the /health endpoint
func (hs *HealthServer) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	metrics.HealthHandler()(w, r)
}

// readyHandler implements the /ready endpoint. Checks run on every request
// and their results are recorded as component health.
func (hs *HealthServer) readyHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	for name, check := range hs.checks {
		ok, message := check()
		metrics.UpdateComponent(name, ok, message)
	}
	metrics.ReadyHandler()(w, r)
}

// GetHandler returns the HTTP handler for embedding in other servers
func (hs *HealthServer) GetHandler() http.Handler {
	return hs.mux
}
