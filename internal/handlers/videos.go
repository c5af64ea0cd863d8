package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

// DeleteVideo removes a video from the collection. Every open viewport
// drops it from its cached stages before the response is written.
func (h *Handlers) DeleteVideo(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, fmt.Errorf("%w: invalid video id %q", errBadRequest, mux.Vars(r)["id"]))
		return
	}

	h.library.Lock()
	err = h.db.DeleteVideo(r.Context(), id)
	h.library.Unlock()

	if err != nil {
		writeError(w, err)
		return
	}
	writeJSONStatus(w, "deleted")
}

// ListPropTypes returns the property types of the collection.
func (h *Handlers) ListPropTypes(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, h.db.PropTypes())
}
