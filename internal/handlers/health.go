package handlers

import (
	"net/http"
	"runtime"
	"time"

	"video-library/internal/startup"
)

const (
	statusHealthy  = "healthy"
	statusDegraded = "degraded"
)

// HealthResponse is the body of /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Ready   bool   `json:"ready"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`

	Videos        int `json:"videos"`
	PropertyTypes int `json:"propertyTypes"`
	Viewports     int `json:"viewports"`

	GoVersion    string `json:"goVersion"`
	NumCPU       int    `json:"numCpu"`
	NumGoroutine int    `json:"numGoroutine"`
}

// HealthCheck reports library counts and answers 503 when the database
// does not respond to a ping.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	stats := h.Stats()
	ready := h.db.Ping(r.Context()) == nil

	resp := HealthResponse{
		Status:        statusHealthy,
		Ready:         ready,
		Version:       startup.Version,
		Uptime:        time.Since(h.started).Round(time.Second).String(),
		Videos:        stats.Readable + stats.Unreadable + stats.Discarded,
		PropertyTypes: stats.PropertyTypes,
		Viewports:     stats.Viewports,
		GoVersion:     runtime.Version(),
		NumCPU:        runtime.NumCPU(),
		NumGoroutine:  runtime.NumGoroutine(),
	}
	code := http.StatusOK
	if !ready {
		resp.Status = statusDegraded
		code = http.StatusServiceUnavailable
	}
	respondJSON(w, code, resp)
}

// LivenessCheck answers as long as the process serves requests.
func (h *Handlers) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodHead {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// ReadinessCheck answers 200 once the database responds.
func (h *Handlers) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	if err := h.db.Ping(r.Context()); err != nil {
		respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not_ready"})
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// GetVersion returns the build information.
func (h *Handlers) GetVersion(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Cache-Control", "no-cache")
	respondJSON(w, http.StatusOK, startup.GetBuildInfo())
}
