package viewport

import (
	"errors"
	"fmt"
	"slices"
	"testing"
	"time"

	"video-library/internal/indexer"
	"video-library/internal/video"
)

type propType struct {
	multiple bool
	def      video.Value
}

// memDB is an in-memory collection ordered by id.
type memDB struct {
	videos     []*video.Video
	props      map[string]propType
	failSearch bool
}

func newMemDB(videos ...*video.Video) *memDB {
	db := &memDB{props: map[string]propType{
		"tags":   {multiple: true},
		"genre":  {def: "unknown"},
		"rating": {def: 0},
	}}
	for _, v := range videos {
		db.add(v)
	}
	return db
}

func (db *memDB) add(v *video.Video) {
	v.Terms = video.ComputeTerms(v)
	db.videos = append(db.videos, v)
	slices.SortFunc(db.videos, func(a, b *video.Video) int { return a.ID - b.ID })
}

func (db *memDB) remove(v *video.Video) {
	db.videos = slices.DeleteFunc(db.videos, func(x *video.Video) bool { return x == v })
}

func (db *memDB) without(v *video.Video) *memDB {
	c := &memDB{props: db.props}
	for _, x := range db.videos {
		if x != v {
			c.videos = append(c.videos, x)
		}
	}
	return c
}

func (db *memDB) GetVideos(flags ...video.Flag) []*video.Video {
	withDiscarded := slices.Contains(flags, video.FlagDiscarded)
	var out []*video.Video
	for _, v := range db.videos {
		if v.Discarded && !withDiscarded {
			continue
		}
		ok := true
		for _, f := range flags {
			ok = ok && v.Flag(f)
		}
		if ok {
			out = append(out, v)
		}
	}
	return out
}

func (db *memDB) GetPropValues(v *video.Video, name string, withDefault bool) []video.Value {
	values := slices.Clone(v.Properties[name])
	if len(values) == 0 && withDefault {
		if pt := db.props[name]; !pt.multiple && pt.def != nil {
			return []video.Value{pt.def}
		}
	}
	return values
}

func (db *memDB) HasPropType(name string, multiple bool) bool {
	pt, ok := db.props[name]
	return ok && pt.multiple == multiple
}

func (db *memDB) Search(text string, cond indexer.Cond, candidates []*video.Video) ([]*video.Video, error) {
	if db.failSearch {
		return nil, errors.New("search backend unavailable")
	}
	terms := video.Tokenize(text)
	var out []*video.Video
	for _, v := range candidates {
		ok, err := indexer.Match(v, terms, cond)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, v)
		}
	}
	return out, nil
}

var baseDate = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

type videoOpt func(*video.Video)

func unreadable(v *video.Video) { v.Readable = false }
func notFound(v *video.Video) { v.Found = false }
func discarded(v *video.Video) { v.Discarded = true }
func thumbnails(v *video.Video) { v.WithThumbnails = true }
func title(t string) videoOpt { return func(v *video.Video) { v.Title = t } }
func length(d float64) videoOpt { return func(v *video.Video) { v.Duration = d } }
func similarity(id int) videoOpt { return func(v *video.Video) { v.SimilarityID = &id } }
func day(n int) videoOpt { return func(v *video.Video) { v.Date = baseDate.AddDate(0, 0, n) } }
func prop(name string, values ...video.Value) videoOpt {
	return func(v *video.Video) { v.Properties[name] = values }
}

func newVideo(id int, filename string, opts ...videoOpt) *video.Video {
	v := &video.Video{
		ID:         id,
		Filename:   filename,
		Date:       baseDate.AddDate(0, 0, id),
		Duration:   float64(id * 10),
		Width:      1920,
		Height:     1080,
		Readable:   true,
		Found:      true,
		Properties: map[string][]video.Value{},
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// library returns a varied collection used by the property tests.
func library() *memDB {
	return newMemDB(
		newVideo(1, "/lib/holiday beach.mp4", prop("tags", "a", "b"), prop("genre", "travel"), similarity(1), thumbnails),
		newVideo(2, "/lib/beach party.mkv", prop("tags", "a", "c"), length(30), similarity(1)),
		newVideo(3, "/lib/mountain clip.mp4", title("Mountain Clip"), prop("tags", "a", "b", "c"), prop("genre", "travel"), day(9), thumbnails),
		newVideo(4, "/lib/city clip.avi", prop("tags", "b"), prop("genre", "urban"), length(30), similarity(-1)),
		newVideo(5, "/lib/concert.mp4", prop("genre", "music"), similarity(2), day(2), thumbnails),
		newVideo(6, "/lib/concert encore.mp4", prop("tags", "c"), prop("genre", "music"), similarity(2), notFound),
		newVideo(7, "/lib/broken clip.mkv", unreadable, prop("tags", "a")),
		newVideo(8, "/lib/broken beach.avi", unreadable, notFound, day(1)),
		newVideo(9, "/lib/old beach.mp4", discarded, prop("tags", "b")),
		newVideo(10, "/lib/river clip.webm", prop("tags", "b", "c"), length(50), similarity(3), thumbnails),
		newVideo(11, "/lib/river walk.webm", prop("tags", "b"), prop("rating", 4), length(50), similarity(3)),
		newVideo(12, "/lib/clip.mp4", prop("rating", 5), length(20), day(4)),
	)
}

func mustView(t *testing.T, vp *Viewport) []int {
	t.Helper()
	ids, err := vp.ViewIndices()
	if err != nil {
		t.Fatalf("ViewIndices() error = %v", err)
	}
	return ids
}

func mustNoErr(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// recorder counts stage recomputations.
type recorder struct {
	runs      map[string]int
	deletions map[string]int
	indexed   int
	viewSize  int
}

func newRecorder() *recorder {
	return &recorder{runs: map[string]int{}, deletions: map[string]int{}}
}

func (r *recorder) ObserveStageRun(stage string, _ float64) { r.runs[stage]++ }
func (r *recorder) ObserveCacheDeletion(stage string) { r.deletions[stage]++ }
func (r *recorder) ObserveIndexBuild(_ float64, added int) { r.indexed += added }
func (r *recorder) ObserveViewSize(size int) { r.viewSize = size }

func (r *recorder) String() string {
	return fmt.Sprint(r.runs)
}
