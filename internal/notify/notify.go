package notify

import (
	"sort"
	"sync"

	"video-library/internal/video"
)

// Event is a collection change notification.
type Event interface {
	Name() string
}

// VideoDeleted is published after a video left the collection.
type VideoDeleted struct {
	Video *video.Video
}

// VideosAdded is published after new videos joined the collection.
type VideosAdded struct {
	Videos []*video.Video
}

// FieldsModified is published after built-in fields changed on some videos.
type FieldsModified struct {
	Fields []string
}

// PropertiesModified is published after property values changed.
type PropertiesModified struct {
	Names []string
}

func (VideoDeleted) Name() string       { return "video_deleted" }
func (VideosAdded) Name() string        { return "videos_added" }
func (FieldsModified) Name() string     { return "fields_modified" }
func (PropertiesModified) Name() string { return "properties_modified" }

// Hub dispatches events synchronously to subscribers in subscription order.
type Hub struct {
	mu   sync.Mutex
	next int
	subs map[int]func(Event)
}

// NewHub creates a ready-to-use Hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[int]func(Event))}
}

// Subscribe registers fn and returns a function removing it.
func (h *Hub) Subscribe(fn func(Event)) (unsubscribe func()) {
	h.mu.Lock()
	id := h.next
	h.next++
	h.subs[id] = fn
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
		})
	}
}

// Publish delivers ev to every current subscriber before returning.
// Subscribers may unsubscribe from within their callback.
func (h *Hub) Publish(ev Event) {
	h.mu.Lock()
	ids := make([]int, 0, len(h.subs))
	for id := range h.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(Event), len(ids))
	for i, id := range ids {
		fns[i] = h.subs[id]
	}
	h.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

// Len returns the number of subscribers.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
