package handlers

import (
	"sync"
	"time"

	"video-library/internal/database"
	"video-library/internal/metrics"
	"video-library/internal/startup"
	"video-library/internal/viewport"

	"github.com/gorilla/mux"
)

// Handlers serves the viewport session API over one database.
//
// Viewports read video fields and properties without copying them, so the
// library lock orders them against collection mutations: viewport requests
// hold it for reading, deletions for writing. Each session additionally
// has its own mutex since a Viewport is not safe for concurrent use.
type Handlers struct {
	db       *database.Database
	defaults startup.ViewportDefaults
	opts     []viewport.Option
	started  time.Time

	library sync.RWMutex

	mu       sync.Mutex
	sessions map[string]*session
}

// New creates the handlers. opts are applied to every viewport session.
func New(db *database.Database, defaults startup.ViewportDefaults, opts ...viewport.Option) *Handlers {
	return &Handlers{
		db:       db,
		defaults: defaults,
		opts:     opts,
		started:  time.Now(),
		sessions: make(map[string]*session),
	}
}

// RegisterRoutes adds every API route to r.
func (h *Handlers) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", h.HealthCheck).Methods("GET").Name("health")
	r.HandleFunc("/healthz", h.HealthCheck).Methods("GET")
	r.HandleFunc("/livez", h.LivenessCheck).Methods("GET", "HEAD")
	r.HandleFunc("/readyz", h.ReadinessCheck).Methods("GET")
	r.HandleFunc("/version", h.GetVersion).Methods("GET").Name("version")

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/viewports", h.ListViewports).Methods("GET")
	api.HandleFunc("/viewports", h.CreateViewport).Methods("POST")
	api.HandleFunc("/viewports/{id}", h.GetViewport).Methods("GET")
	api.HandleFunc("/viewports/{id}", h.DeleteViewport).Methods("DELETE")
	api.HandleFunc("/viewports/{id}/sources", h.SetSources).Methods("PUT")
	api.HandleFunc("/viewports/{id}/groups", h.SetGroups).Methods("PUT")
	api.HandleFunc("/viewports/{id}/classifier", h.SetClassifier).Methods("PUT")
	api.HandleFunc("/viewports/{id}/classifier/select", h.ClassifierSelect).Methods("POST")
	api.HandleFunc("/viewports/{id}/classifier/back", h.ClassifierBack).Methods("POST")
	api.HandleFunc("/viewports/{id}/group", h.SetGroup).Methods("PUT")
	api.HandleFunc("/viewports/{id}/search", h.SetSearch).Methods("PUT")
	api.HandleFunc("/viewports/{id}/sort", h.SetSort).Methods("PUT")
	api.HandleFunc("/viewports/{id}/reset", h.ResetViewport).Methods("POST")
	api.HandleFunc("/viewports/{id}/refresh", h.RefreshViewport).Methods("POST")
	api.HandleFunc("/videos/{id}", h.DeleteVideo).Methods("DELETE")
	api.HandleFunc("/properties", h.ListPropTypes).Methods("GET")
}

// Stats implements metrics.StatsProvider.
func (h *Handlers) Stats() metrics.Stats {
	stats := h.db.Stats()
	stats.Viewports = h.sessionCount()
	return stats
}

// Close releases every viewport session.
func (h *Handlers) Close() {
	h.mu.Lock()
	sessions := h.sessions
	h.sessions = make(map[string]*session)
	h.mu.Unlock()

	for _, s := range sessions {
		s.close()
	}
}
