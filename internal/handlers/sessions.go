package handlers

import (
	"net/http"
	"sort"
	"sync"
	"time"

	"video-library/internal/logging"
	"video-library/internal/notify"
	"video-library/internal/startup"
	"video-library/internal/viewport"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// session is one client's viewport.
type session struct {
	id      string
	created time.Time

	mu       sync.Mutex
	vp       *viewport.Viewport
	lastUsed time.Time
}

func (s *session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vp.Close()
}

// sessionEvents delivers collection notifications to a viewport under its
// session lock.
type sessionEvents struct {
	h *Handlers
	s *session
}

func (e sessionEvents) Subscribe(fn func(notify.Event)) (unsubscribe func()) {
	return e.h.db.Subscribe(func(ev notify.Event) {
		e.s.mu.Lock()
		defer e.s.mu.Unlock()
		fn(ev)
	})
}

// SessionInfo describes a viewport session in listings.
type SessionInfo struct {
	ID       string    `json:"id"`
	Created  time.Time `json:"created"`
	LastUsed time.Time `json:"lastUsed"`
}

func (h *Handlers) newViewport() *viewport.Viewport {
	vp := viewport.New(h.db, h.opts...)
	if err := h.defaults.Apply(vp); err != nil {
		// The configured group or sort field may name a property that was
		// never created.
		logging.Warn("viewport defaults rejected, using built-in defaults: %v", err)
		vp = viewport.New(h.db, h.opts...)
		if err := startup.DefaultViewportDefaults().Apply(vp); err != nil {
			logging.Error("built-in viewport defaults rejected: %v", err)
		}
	}
	return vp
}

func (h *Handlers) lookup(id string) (*session, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	s, ok := h.sessions[id]
	return s, ok
}

func (h *Handlers) sessionCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

// CreateViewport starts a session with the configured default parameters.
func (h *Handlers) CreateViewport(w http.ResponseWriter, r *http.Request) {
	h.library.RLock()
	defer h.library.RUnlock()

	now := time.Now()
	s := &session{id: uuid.NewString(), created: now, lastUsed: now}
	s.vp = h.newViewport()
	s.vp.Listen(sessionEvents{h: h, s: s})

	h.mu.Lock()
	h.sessions[s.id] = s
	h.mu.Unlock()

	logging.Debug("viewport session %s created", s.id)

	s.mu.Lock()
	defer s.mu.Unlock()
	h.writeState(w, r, s, http.StatusCreated)
}

// ListViewports lists the open sessions, oldest first.
func (h *Handlers) ListViewports(w http.ResponseWriter, _ *http.Request) {
	h.mu.Lock()
	sessions := make([]*session, 0, len(h.sessions))
	for _, s := range h.sessions {
		sessions = append(sessions, s)
	}
	h.mu.Unlock()

	infos := make([]SessionInfo, 0, len(sessions))
	for _, s := range sessions {
		s.mu.Lock()
		infos = append(infos, SessionInfo{ID: s.id, Created: s.created, LastUsed: s.lastUsed})
		s.mu.Unlock()
	}
	sort.Slice(infos, func(i, j int) bool {
		if !infos[i].Created.Equal(infos[j].Created) {
			return infos[i].Created.Before(infos[j].Created)
		}
		return infos[i].ID < infos[j].ID
	})

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, infos)
}

// DeleteViewport closes a session.
func (h *Handlers) DeleteViewport(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	h.mu.Lock()
	s, ok := h.sessions[id]
	delete(h.sessions, id)
	h.mu.Unlock()

	if !ok {
		writeJSONError(w, "viewport not found", http.StatusNotFound)
		return
	}
	s.close()
	logging.Debug("viewport session %s closed", id)
	writeJSONStatus(w, "closed")
}

// withSession runs fn on the session named in the route and answers with
// the resulting view. A nil fn only reads.
func (h *Handlers) withSession(w http.ResponseWriter, r *http.Request, fn func(vp *viewport.Viewport) error) {
	s, ok := h.lookup(mux.Vars(r)["id"])
	if !ok {
		writeJSONError(w, "viewport not found", http.StatusNotFound)
		return
	}

	h.library.RLock()
	defer h.library.RUnlock()
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastUsed = time.Now()
	if fn != nil {
		if err := fn(s.vp); err != nil {
			writeError(w, err)
			return
		}
	}
	h.writeState(w, r, s, http.StatusOK)
}
