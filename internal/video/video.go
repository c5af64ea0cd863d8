package video

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Flag is a named boolean predicate on a video.
type Flag string

const (
	FlagReadable          Flag = "readable"
	FlagUnreadable        Flag = "unreadable"
	FlagFound             Flag = "found"
	FlagNotFound          Flag = "not_found"
	FlagDiscarded         Flag = "discarded"
	FlagWithThumbnails    Flag = "with_thumbnails"
	FlagWithoutThumbnails Flag = "without_thumbnails"
)

// AllFlags lists every flag in a stable order.
var AllFlags = []Flag{
	FlagReadable,
	FlagUnreadable,
	FlagFound,
	FlagNotFound,
	FlagDiscarded,
	FlagWithThumbnails,
	FlagWithoutThumbnails,
}

var complements = map[Flag]Flag{
	FlagReadable:          FlagUnreadable,
	FlagUnreadable:        FlagReadable,
	FlagFound:             FlagNotFound,
	FlagNotFound:          FlagFound,
	FlagWithThumbnails:    FlagWithoutThumbnails,
	FlagWithoutThumbnails: FlagWithThumbnails,
}

// Complement returns the flag that holds exactly when f does not.
// Discarded has no named complement.
func (f Flag) Complement() (Flag, bool) {
	c, ok := complements[f]
	return c, ok
}

// ParseFlag validates a flag name.
func ParseFlag(name string) (Flag, error) {
	f := Flag(strings.TrimSpace(name))
	for _, known := range AllFlags {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown video flag %q", name)
}

// Value is a field or property value: string, int, int64, float64, bool or
// time.Time. A nil Value means "no value".
type Value = any

// Video is a library entry.
type Video struct {
	ID              int
	Filename        string
	Title           string
	FileSize        int64
	Date            time.Time
	Duration        float64
	Width           int
	Height          int
	FrameRate       float64
	VideoCodec      string
	AudioCodec      string
	ContainerFormat string
	SimilarityID    *int

	Readable       bool
	Found          bool
	Discarded      bool
	WithThumbnails bool

	Properties map[string][]Value
	Terms      []string
}

// Key returns the identity key of the video.
func (v *Video) Key() string {
	return v.Filename
}

// Flag reports whether the video satisfies f.
func (v *Video) Flag(f Flag) bool {
	switch f {
	case FlagReadable:
		return v.Readable
	case FlagUnreadable:
		return !v.Readable
	case FlagFound:
		return v.Found
	case FlagNotFound:
		return !v.Found
	case FlagDiscarded:
		return v.Discarded
	case FlagWithThumbnails:
		return v.WithThumbnails
	case FlagWithoutThumbnails:
		return !v.WithThumbnails
	default:
		return false
	}
}

// FileTitle is the base filename without its extension.
func (v *Video) FileTitle() string {
	base := filepath.Base(v.Filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Extension is the lower-cased filename extension without the leading dot.
func (v *Video) Extension() string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(v.Filename), "."))
}

// DisplayTitle is the embedded title when present, else the file title.
func (v *Video) DisplayTitle() string {
	if v.Title != "" {
		return v.Title
	}
	return v.FileTitle()
}

// PropertyValues returns the stored values of a property, without defaults.
func (v *Video) PropertyValues(name string) []Value {
	return v.Properties[name]
}

func (v *Video) String() string {
	return fmt.Sprintf("video(%d, %s)", v.ID, v.Filename)
}
