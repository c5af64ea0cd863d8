package database

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"video-library/internal/indexer"
	"video-library/internal/notify"
	"video-library/internal/video"
	"video-library/internal/viewport"
)

var _ viewport.Database = (*Database)(nil)

func setupTestDB(t testing.TB) (db *Database, dbPath string) {
	t.Helper()

	dbPath = filepath.Join(t.TempDir(), "test.db")
	db, err := New(context.Background(), dbPath)
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	return db, dbPath
}

func newVideo(filename string, readable bool) *video.Video {
	return &video.Video{
		Filename: filename,
		Date:     time.Date(2023, 6, 1, 10, 0, 0, 0, time.UTC),
		Duration: 42.5,
		Width:    1280,
		Height:   720,
		Readable: readable,
		Found:    true,
	}
}

func ids(videos []*video.Video) []int {
	out := make([]int, len(videos))
	for i, v := range videos {
		out[i] = v.ID
	}
	return out
}

func seed(t *testing.T, db *Database) []*video.Video {
	t.Helper()
	ctx := context.Background()
	if err := db.CreatePropType(ctx, PropType{Name: "tags", Type: TypeString, Multiple: true}); err != nil {
		t.Fatalf("CreatePropType(tags) failed: %v", err)
	}
	if err := db.CreatePropType(ctx, PropType{Name: "rating", Type: TypeInt, Default: 3}); err != nil {
		t.Fatalf("CreatePropType(rating) failed: %v", err)
	}
	videos := []*video.Video{
		newVideo("/media/Summer Trip.mp4", true),
		newVideo("/media/broken.avi", false),
		newVideo("/media/winter.mkv", true),
	}
	videos[0].Properties = map[string][]video.Value{"tags": {"beach", "family", "beach"}}
	videos[2].Properties = map[string][]video.Value{"rating": {5.0}}
	if err := db.AddVideos(ctx, videos); err != nil {
		t.Fatalf("AddVideos failed: %v", err)
	}
	return videos
}

func TestNewDatabase(t *testing.T) {
	db, _ := setupTestDB(t)
	defer db.Close()

	if db.Len() != 0 {
		t.Errorf("Len() = %d, want 0", db.Len())
	}
	if got := db.GetVideos(); len(got) != 0 {
		t.Errorf("GetVideos() = %v, want none", got)
	}
}

func TestAddVideos(t *testing.T) {
	db, _ := setupTestDB(t)
	defer db.Close()
	videos := seed(t, db)

	for i, v := range videos {
		if v.ID == 0 {
			t.Errorf("video %d has no id", i)
		}
	}
	if got := videos[0].Properties["tags"]; !slices.Equal(got, []video.Value{"beach", "family"}) {
		t.Errorf("tags = %v, duplicates not removed", got)
	}
	if got := videos[2].Properties["rating"]; !slices.Equal(got, []video.Value{5}) {
		t.Errorf("rating = %v, want [5]", got)
	}
	if !slices.Contains(videos[0].Terms, "family") || !slices.Contains(videos[0].Terms, "summer") {
		t.Errorf("Terms = %v", videos[0].Terms)
	}

	err := db.AddVideos(context.Background(), []*video.Video{newVideo("/media/winter.mkv", true)})
	if !errors.Is(err, ErrDuplicateVideo) {
		t.Errorf("adding a duplicate: error = %v, want ErrDuplicateVideo", err)
	}
	err = db.AddVideos(context.Background(), []*video.Video{{Filename: "/media/x.mp4", Properties: map[string][]video.Value{"nope": {1}}}})
	if !errors.Is(err, ErrUnknownProperty) {
		t.Errorf("adding an unknown property: error = %v, want ErrUnknownProperty", err)
	}
	if db.Len() != 3 {
		t.Errorf("Len() = %d after failed adds, want 3", db.Len())
	}
}

func TestGetVideosByFlag(t *testing.T) {
	db, _ := setupTestDB(t)
	defer db.Close()
	videos := seed(t, db)
	ctx := context.Background()

	if err := db.SetFlag(ctx, videos[2].ID, video.FlagDiscarded, true); err != nil {
		t.Fatalf("SetFlag failed: %v", err)
	}

	tests := []struct {
		name  string
		flags []video.Flag
		want  []int
	}{
		{"all", nil, []int{videos[0].ID, videos[1].ID}},
		{"readable", []video.Flag{video.FlagReadable}, []int{videos[0].ID}},
		{"unreadable", []video.Flag{video.FlagUnreadable}, []int{videos[1].ID}},
		{"discarded", []video.Flag{video.FlagDiscarded}, []int{videos[2].ID}},
		{"readable and discarded", []video.Flag{video.FlagReadable, video.FlagDiscarded}, []int{videos[2].ID}},
		{"not found", []video.Flag{video.FlagNotFound}, []int{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ids(db.GetVideos(tt.flags...)); !slices.Equal(got, tt.want) {
				t.Errorf("GetVideos(%v) = %v, want %v", tt.flags, got, tt.want)
			}
		})
	}
}

func TestGetPropValues(t *testing.T) {
	db, _ := setupTestDB(t)
	defer db.Close()
	videos := seed(t, db)

	tests := []struct {
		name        string
		v           *video.Video
		prop        string
		withDefault bool
		want        []video.Value
	}{
		{"stored multiple", videos[0], "tags", true, []video.Value{"beach", "family"}},
		{"unset multiple", videos[1], "tags", true, nil},
		{"unset single with default", videos[0], "rating", true, []video.Value{3}},
		{"unset single without default", videos[0], "rating", false, nil},
		{"stored single", videos[2], "rating", true, []video.Value{5}},
		{"unknown", videos[0], "nope", true, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := db.GetPropValues(tt.v, tt.prop, tt.withDefault); !slices.Equal(got, tt.want) {
				t.Errorf("GetPropValues() = %v, want %v", got, tt.want)
			}
		})
	}

	if !db.HasPropType("tags", true) || db.HasPropType("tags", false) || !db.HasPropType("rating", false) {
		t.Error("HasPropType() multiplicity mismatch")
	}
}

func TestSetProperty(t *testing.T) {
	db, _ := setupTestDB(t)
	defer db.Close()
	videos := seed(t, db)
	ctx := context.Background()

	var events []notify.Event
	db.Subscribe(func(ev notify.Event) { events = append(events, ev) })

	if err := db.SetProperty(ctx, videos[1].ID, "tags", []video.Value{"Glacier"}); err != nil {
		t.Fatalf("SetProperty failed: %v", err)
	}
	if !slices.Contains(videos[1].Terms, "glacier") {
		t.Errorf("Terms = %v, property value not searchable", videos[1].Terms)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if ev, ok := events[0].(notify.PropertiesModified); !ok || !slices.Equal(ev.Names, []string{"tags"}) {
		t.Errorf("event = %#v", events[0])
	}
	found, err := db.Search("glacier", indexer.CondAnd, db.GetVideos())
	if err != nil || !slices.Equal(ids(found), []int{videos[1].ID}) {
		t.Errorf("Search(glacier) = %v, %v", ids(found), err)
	}

	if err := db.SetProperty(ctx, videos[1].ID, "tags", nil); err != nil {
		t.Fatalf("clearing failed: %v", err)
	}
	if _, ok := videos[1].Properties["tags"]; ok {
		t.Error("cleared property still present")
	}

	tests := []struct {
		name   string
		id     int
		prop   string
		values []video.Value
		want   error
	}{
		{"unknown video", 999, "tags", []video.Value{"x"}, ErrNotFound},
		{"unknown property", videos[0].ID, "nope", []video.Value{"x"}, ErrUnknownProperty},
		{"single takes one value", videos[0].ID, "rating", []video.Value{1, 2}, ErrInvalidValue},
		{"wrong type", videos[0].ID, "rating", []video.Value{"high"}, ErrInvalidValue},
		{"fractional int", videos[0].ID, "rating", []video.Value{2.5}, ErrInvalidValue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := db.SetProperty(ctx, tt.id, tt.prop, tt.values); !errors.Is(err, tt.want) {
				t.Errorf("SetProperty() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDeleteVideo(t *testing.T) {
	db, _ := setupTestDB(t)
	defer db.Close()
	videos := seed(t, db)
	ctx := context.Background()

	var deleted *video.Video
	unsubscribe := db.Subscribe(func(ev notify.Event) {
		if e, ok := ev.(notify.VideoDeleted); ok {
			deleted = e.Video
		}
	})
	defer unsubscribe()

	if err := db.DeleteVideo(ctx, videos[0].ID); err != nil {
		t.Fatalf("DeleteVideo failed: %v", err)
	}
	if deleted != videos[0] {
		t.Errorf("VideoDeleted carried %v, want %v", deleted, videos[0])
	}
	if _, err := db.GetVideo(videos[0].ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetVideo after delete: error = %v, want ErrNotFound", err)
	}
	if err := db.DeleteVideo(ctx, videos[0].ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second DeleteVideo: error = %v, want ErrNotFound", err)
	}
	if got := ids(db.GetVideos(video.FlagReadable)); !slices.Equal(got, []int{videos[2].ID}) {
		t.Errorf("GetVideos(readable) = %v", got)
	}
}

func TestSetSimilarity(t *testing.T) {
	db, _ := setupTestDB(t)
	defer db.Close()
	videos := seed(t, db)

	var fields []string
	db.Subscribe(func(ev notify.Event) {
		if e, ok := ev.(notify.FieldsModified); ok {
			fields = append(fields, e.Fields...)
		}
	})

	sim := 7
	if err := db.SetSimilarity(context.Background(), videos[0].ID, &sim); err != nil {
		t.Fatalf("SetSimilarity failed: %v", err)
	}
	sim = 8
	if got, _ := videos[0].Field(video.FieldSimilarityID); got != 7 {
		t.Errorf("similarity_id = %v, want 7", got)
	}
	if err := db.SetSimilarity(context.Background(), videos[0].ID, nil); err != nil {
		t.Fatalf("clearing similarity failed: %v", err)
	}
	if videos[0].SimilarityID != nil {
		t.Errorf("similarity_id = %v, want nil", *videos[0].SimilarityID)
	}
	if !slices.Equal(fields, []string{video.FieldSimilarityID, video.FieldSimilarityID}) {
		t.Errorf("FieldsModified = %v", fields)
	}
}

func TestReopenRestoresCollection(t *testing.T) {
	db, dbPath := setupTestDB(t)
	videos := seed(t, db)
	sim := 2
	ctx := context.Background()
	if err := db.SetSimilarity(ctx, videos[2].ID, &sim); err != nil {
		t.Fatalf("SetSimilarity failed: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	reopened, err := New(ctx, dbPath)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	if reopened.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", reopened.Len())
	}
	v, err := reopened.GetVideo(videos[0].ID)
	if err != nil {
		t.Fatalf("GetVideo failed: %v", err)
	}
	if v.Filename != videos[0].Filename || !v.Date.Equal(videos[0].Date) || v.Duration != 42.5 || v.Width != 1280 {
		t.Errorf("reloaded %+v", v)
	}
	if got := v.Properties["tags"]; !slices.Equal(got, []video.Value{"beach", "family"}) {
		t.Errorf("reloaded tags = %v", got)
	}
	if got := reopened.GetPropValues(v, "rating", true); !slices.Equal(got, []video.Value{3}) {
		t.Errorf("reloaded rating default = %v", got)
	}
	w, _ := reopened.GetVideo(videos[2].ID)
	if w.SimilarityID == nil || *w.SimilarityID != 2 {
		t.Errorf("reloaded similarity = %v", w.SimilarityID)
	}
	if got := ids(reopened.GetVideos(video.FlagUnreadable)); !slices.Equal(got, []int{videos[1].ID}) {
		t.Errorf("GetVideos(unreadable) = %v", got)
	}
	if reopened.index.Len() != 3 {
		t.Errorf("index has %d videos, want 3", reopened.index.Len())
	}
}

func TestReindex(t *testing.T) {
	db, _ := setupTestDB(t)
	defer db.Close()
	seed(t, db)

	n, err := db.Reindex(context.Background())
	if err != nil {
		t.Fatalf("Reindex failed: %v", err)
	}
	if n != 3 {
		t.Errorf("Reindex() = %d, want 3", n)
	}
	if _, err := db.GetMetadata(context.Background(), indexKey); err != nil {
		t.Errorf("index not persisted: %v", err)
	}
}

func TestMetadata(t *testing.T) {
	db, _ := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	if _, err := db.GetMetadata(ctx, "nonexistent"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetMetadata(nonexistent) error = %v, want ErrNotFound", err)
	}
	if err := db.SetMetadata(ctx, "key1", []byte("value1")); err != nil {
		t.Fatalf("SetMetadata failed: %v", err)
	}
	if err := db.SetMetadata(ctx, "key1", []byte("value2")); err != nil {
		t.Fatalf("SetMetadata update failed: %v", err)
	}
	value, err := db.GetMetadata(ctx, "key1")
	if err != nil || string(value) != "value2" {
		t.Errorf("GetMetadata(key1) = %q, %v", value, err)
	}
}

func TestCreatePropType(t *testing.T) {
	db, _ := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	tests := []struct {
		name    string
		pt      PropType
		wantErr bool
	}{
		{"string", PropType{Name: "genre", Type: TypeString}, false},
		{"float default", PropType{Name: "score", Type: TypeFloat, Default: 1}, false},
		{"multiple", PropType{Name: "people", Type: TypeString, Multiple: true, Default: "x"}, false},
		{"duplicate", PropType{Name: "genre", Type: TypeString}, true},
		{"built-in field", PropType{Name: "title", Type: TypeString}, true},
		{"empty name", PropType{Name: " ", Type: TypeString}, true},
		{"unknown type", PropType{Name: "blob", Type: "bytes"}, true},
		{"bad default", PropType{Name: "flagged", Type: TypeBool, Default: "maybe"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := db.CreatePropType(ctx, tt.pt)
			if (err != nil) != tt.wantErr {
				t.Errorf("CreatePropType(%+v) error = %v, wantErr %v", tt.pt, err, tt.wantErr)
			}
		})
	}

	got := db.PropTypes()
	want := []PropType{
		{Name: "genre", Type: TypeString, Default: ""},
		{Name: "people", Type: TypeString, Multiple: true},
		{Name: "score", Type: TypeFloat, Default: 1.0},
	}
	if !slices.Equal(got, want) {
		t.Errorf("PropTypes() = %+v, want %+v", got, want)
	}

	if pt, ok := db.PropType("score"); !ok || pt != want[2] {
		t.Errorf("PropType(score) = %+v, %v", pt, ok)
	}
	if _, ok := db.PropType("missing"); ok {
		t.Error("PropType(missing) found a type")
	}
}

func TestValueTypeConvert(t *testing.T) {
	tests := []struct {
		typ     ValueType
		in      video.Value
		want    video.Value
		wantErr bool
	}{
		{TypeString, "a", "a", false},
		{TypeString, 1, nil, true},
		{TypeInt, 4.0, 4, false},
		{TypeInt, "12", 12, false},
		{TypeInt, int64(3), 3, false},
		{TypeInt, 4.5, nil, true},
		{TypeFloat, 2, 2.0, false},
		{TypeFloat, "0.5", 0.5, false},
		{TypeBool, "true", true, false},
		{TypeBool, 1, nil, true},
	}
	for _, tt := range tests {
		got, err := tt.typ.Convert(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("%s.Convert(%v) error = %v, wantErr %v", tt.typ, tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("%s.Convert(%v) = %v (%T), want %v (%T)", tt.typ, tt.in, got, got, tt.want, tt.want)
		}
	}
}

func TestStats(t *testing.T) {
	db, _ := setupTestDB(t)
	defer db.Close()
	videos := seed(t, db)
	if err := db.SetFlag(context.Background(), videos[0].ID, video.FlagDiscarded, true); err != nil {
		t.Fatalf("SetFlag failed: %v", err)
	}

	stats := db.Stats()
	if stats.Readable != 1 || stats.Unreadable != 1 || stats.Discarded != 1 || stats.PropertyTypes != 2 {
		t.Errorf("Stats() = %+v", stats)
	}
}

// TestRecordQuery ensures metric recording accepts every outcome.
func TestRecordQuery(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		operation string
		err       error
	}{
		{name: "successful query", operation: "load_videos"},
		{name: "failed query", operation: "load_videos", err: errors.New("test error")},
		{name: "empty operation name", operation: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			recordQuery(tt.operation, time.Now(), tt.err)
		})
	}
}

func TestViewportOverDatabase(t *testing.T) {
	db, _ := setupTestDB(t)
	defer db.Close()
	videos := seed(t, db)

	vp := viewport.New(db)
	vp.Listen(db)
	defer vp.Close()
	if err := vp.SetSort([]string{"video_id"}); err != nil {
		t.Fatalf("SetSort failed: %v", err)
	}
	got, err := vp.ViewIndices()
	if err != nil {
		t.Fatalf("ViewIndices failed: %v", err)
	}
	if want := []int{videos[0].ID, videos[2].ID}; !slices.Equal(got, want) {
		t.Errorf("ViewIndices() = %v, want %v", got, want)
	}

	if err := db.DeleteVideo(context.Background(), videos[0].ID); err != nil {
		t.Fatalf("DeleteVideo failed: %v", err)
	}
	got, err = vp.ViewIndices()
	if err != nil {
		t.Fatalf("ViewIndices failed: %v", err)
	}
	if want := []int{videos[2].ID}; !slices.Equal(got, want) {
		t.Errorf("ViewIndices() after delete = %v, want %v", got, want)
	}
}
