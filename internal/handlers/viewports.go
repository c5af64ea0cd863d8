package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"video-library/internal/video"
	"video-library/internal/viewport"
)

const (
	defaultPageSize = 100
	maxPageSize     = 1000
)

// ViewportResponse is the state of a session and its current page of
// videos.
type ViewportResponse struct {
	ID             string                  `json:"id"`
	Sources        [][]string              `json:"sources"`
	Groups         viewport.GroupDef       `json:"groups"`
	ClassifierPath []video.Value           `json:"classifierPath"`
	GroupID        int                     `json:"groupId"`
	GroupList      []viewport.GroupSummary `json:"groupList"`
	Search         viewport.SearchDef      `json:"search"`
	Sort           []string                `json:"sort"`
	SortPolicy     viewport.SortPolicy     `json:"sortPolicy"`
	SourceCount    int                     `json:"sourceCount"`
	Total          int                     `json:"total"`
	Offset         int                     `json:"offset"`
	Videos         []VideoSummary          `json:"videos"`
}

// VideoSummary is the JSON form of a video.
type VideoSummary struct {
	ID             int                      `json:"id"`
	Filename       string                   `json:"filename"`
	Title          string                   `json:"title"`
	FileSize       int64                    `json:"fileSize"`
	Date           time.Time                `json:"date"`
	Length         float64                  `json:"length,omitempty"`
	Width          int                      `json:"width,omitempty"`
	Height         int                      `json:"height,omitempty"`
	SimilarityID   *int                     `json:"similarityId,omitempty"`
	Readable       bool                     `json:"readable"`
	Found          bool                     `json:"found"`
	Discarded      bool                     `json:"discarded"`
	WithThumbnails bool                     `json:"withThumbnails"`
	Properties     map[string][]video.Value `json:"properties,omitempty"`
}

func summarizeVideo(v *video.Video) VideoSummary {
	return VideoSummary{
		ID:             v.ID,
		Filename:       v.Filename,
		Title:          v.DisplayTitle(),
		FileSize:       v.FileSize,
		Date:           v.Date,
		Length:         v.Duration,
		Width:          v.Width,
		Height:         v.Height,
		SimilarityID:   v.SimilarityID,
		Readable:       v.Readable,
		Found:          v.Found,
		Discarded:      v.Discarded,
		WithThumbnails: v.WithThumbnails,
		Properties:     v.Properties,
	}
}

// pageParams reads offset and limit from the query string.
func pageParams(r *http.Request) (offset, limit int, err error) {
	limit = defaultPageSize
	q := r.URL.Query()
	if s := q.Get("offset"); s != "" {
		if offset, err = strconv.Atoi(s); err != nil || offset < 0 {
			return 0, 0, fmt.Errorf("%w: invalid offset %q", errBadRequest, s)
		}
	}
	if s := q.Get("limit"); s != "" {
		if limit, err = strconv.Atoi(s); err != nil || limit < 1 {
			return 0, 0, fmt.Errorf("%w: invalid limit %q", errBadRequest, s)
		}
		limit = min(limit, maxPageSize)
	}
	return offset, limit, nil
}

// writeState renders the session. Callers hold the library read lock and
// the session lock: video properties are encoded without copying.
func (h *Handlers) writeState(w http.ResponseWriter, r *http.Request, s *session, status int) {
	offset, limit, err := pageParams(r)
	if err != nil {
		writeError(w, err)
		return
	}

	vp := s.vp
	videos, err := vp.ViewVideos()
	if err != nil {
		writeError(w, err)
		return
	}
	groups, err := vp.GroupSummaries()
	if err != nil {
		writeError(w, err)
		return
	}
	sourceCount, err := vp.SourceCount()
	if err != nil {
		writeError(w, err)
		return
	}

	resp := ViewportResponse{
		ID:             s.id,
		Sources:        vp.Sources().Strings(),
		Groups:         vp.Groups(),
		ClassifierPath: vp.ClassifierPath(),
		GroupID:        vp.GroupID(),
		GroupList:      groups,
		Search:         vp.Search(),
		Sort:           vp.Sorting().Tokens(),
		SortPolicy:     vp.SortPolicy(),
		SourceCount:    sourceCount,
		Total:          len(videos),
		Offset:         offset,
		Videos:         []VideoSummary{},
	}
	if resp.ClassifierPath == nil {
		resp.ClassifierPath = []video.Value{}
	}
	if offset < len(videos) {
		for _, v := range videos[offset:min(offset+limit, len(videos))] {
			resp.Videos = append(resp.Videos, summarizeVideo(v))
		}
	}

	respondJSON(w, status, resp)
}

// GetViewport returns the current view of a session.
func (h *Handlers) GetViewport(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, nil)
}

// SetSources handles {"sources": [["readable"], ["unreadable", "found"]]}.
func (h *Handlers) SetSources(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Sources [][]string `json:"sources"`
	}
	if err := decodeJSON(w, r, &req, false); err != nil {
		writeError(w, err)
		return
	}
	sources, err := viewport.ParseSources(req.Sources)
	if err != nil {
		writeError(w, err)
		return
	}
	h.withSession(w, r, func(vp *viewport.Viewport) error {
		return vp.SetSources(sources)
	})
}

// SetGroups handles a grouping definition. Singletons are kept unless the
// body says otherwise. An empty field disables grouping.
func (h *Handlers) SetGroups(w http.ResponseWriter, r *http.Request) {
	def := viewport.GroupDef{Sorting: viewport.GroupByField, AllowSingletons: true}
	if err := decodeJSON(w, r, &def, false); err != nil {
		writeError(w, err)
		return
	}
	h.withSession(w, r, func(vp *viewport.Viewport) error {
		return vp.SetGroups(def)
	})
}

// SetClassifier handles {"path": ["value", ...]}. Values are converted to
// the type of the grouped property, since JSON numbers decode as floats.
func (h *Handlers) SetClassifier(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Path []video.Value `json:"path"`
	}
	if err := decodeJSON(w, r, &req, false); err != nil {
		writeError(w, err)
		return
	}
	h.withSession(w, r, func(vp *viewport.Viewport) error {
		path, err := h.convertPath(vp.Groups(), req.Path)
		if err != nil {
			return err
		}
		vp.SetClassifierPath(path)
		return nil
	})
}

func (h *Handlers) convertPath(def viewport.GroupDef, path []video.Value) ([]video.Value, error) {
	if len(path) == 0 {
		return nil, nil
	}
	pt, ok := h.db.PropType(def.Field)
	if !def.IsProperty || !ok || !pt.Multiple {
		return nil, fmt.Errorf("%w: classifier needs a grouping on a multiple property", viewport.ErrInvalidGroupDef)
	}
	out := make([]video.Value, len(path))
	for i, value := range path {
		c, err := pt.Type.Convert(value)
		if err != nil {
			return nil, err
		}
		out[i] = c
	}
	return out, nil
}

// ClassifierSelect handles {"group": n}: the value of group n joins the
// classifier path.
func (h *Handlers) ClassifierSelect(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Group int `json:"group"`
	}
	if err := decodeJSON(w, r, &req, false); err != nil {
		writeError(w, err)
		return
	}
	h.withSession(w, r, func(vp *viewport.Viewport) error {
		return vp.ClassifierSelect(req.Group)
	})
}

// ClassifierBack drops the last classifier path value.
func (h *Handlers) ClassifierBack(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(vp *viewport.Viewport) error {
		vp.ClassifierBack()
		return nil
	})
}

// SetGroup handles {"group": n}.
func (h *Handlers) SetGroup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Group int `json:"group"`
	}
	if err := decodeJSON(w, r, &req, false); err != nil {
		writeError(w, err)
		return
	}
	h.withSession(w, r, func(vp *viewport.Viewport) error {
		vp.SetGroup(req.Group)
		return nil
	})
}

// SetSearch handles {"text": "...", "cond": "and"}. A missing cond keeps
// the current one.
func (h *Handlers) SetSearch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
		Cond string `json:"cond"`
	}
	if err := decodeJSON(w, r, &req, false); err != nil {
		writeError(w, err)
		return
	}
	h.withSession(w, r, func(vp *viewport.Viewport) error {
		cond := req.Cond
		if cond == "" {
			cond = string(vp.Search().Cond)
		}
		return vp.SetSearch(req.Text, cond)
	})
}

// SetSort handles {"sort": ["-date", "+title"]}.
func (h *Handlers) SetSort(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Sort []string `json:"sort"`
	}
	if err := decodeJSON(w, r, &req, false); err != nil {
		writeError(w, err)
		return
	}
	h.withSession(w, r, func(vp *viewport.Viewport) error {
		return vp.SetSort(req.Sort)
	})
}

type stagesRequest struct {
	Stages []string `json:"stages"`
}

// ResetViewport restores stage parameters to their defaults. Without a
// body every stage is reset.
func (h *Handlers) ResetViewport(w http.ResponseWriter, r *http.Request) {
	var req stagesRequest
	if err := decodeJSON(w, r, &req, true); err != nil {
		writeError(w, err)
		return
	}
	h.withSession(w, r, func(vp *viewport.Viewport) error {
		return vp.ResetParameters(req.Stages...)
	})
}

// RefreshViewport forces stages to recompute. Without a body the whole
// pipeline is recomputed.
func (h *Handlers) RefreshViewport(w http.ResponseWriter, r *http.Request) {
	var req stagesRequest
	if err := decodeJSON(w, r, &req, true); err != nil {
		writeError(w, err)
		return
	}
	h.withSession(w, r, func(vp *viewport.Viewport) error {
		return vp.ForceUpdate(req.Stages...)
	})
}
