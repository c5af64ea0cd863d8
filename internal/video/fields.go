package video

import "sort"

// Built-in field names.
const (
	FieldVideoID         = "video_id"
	FieldFilename        = "filename"
	FieldFileTitle       = "file_title"
	FieldTitle           = "title"
	FieldExtension       = "extension"
	FieldFileSize        = "file_size"
	FieldDate            = "date"
	FieldLength          = "length"
	FieldWidth           = "width"
	FieldHeight          = "height"
	FieldFrameRate       = "frame_rate"
	FieldVideoCodec      = "video_codec"
	FieldAudioCodec      = "audio_codec"
	FieldContainerFormat = "container_format"
	FieldSimilarityID    = "similarity_id"
	FieldReadable        = "readable"
	FieldFound           = "found"
	FieldDiscarded       = "discarded"
	FieldWithThumbnails  = "with_thumbnails"
)

type fieldDef struct {
	// common fields are known for unreadable videos too.
	common bool
	get    func(*Video) Value
}

var fields = map[string]fieldDef{
	FieldVideoID:        {true, func(v *Video) Value { return v.ID }},
	FieldFilename:       {true, func(v *Video) Value { return v.Filename }},
	FieldFileTitle:      {true, func(v *Video) Value { return v.FileTitle() }},
	FieldTitle:          {true, func(v *Video) Value { return v.DisplayTitle() }},
	FieldExtension:      {true, func(v *Video) Value { return v.Extension() }},
	FieldFileSize:       {true, func(v *Video) Value { return v.FileSize }},
	FieldDate:           {true, func(v *Video) Value { return v.Date }},
	FieldReadable:       {true, func(v *Video) Value { return v.Readable }},
	FieldFound:          {true, func(v *Video) Value { return v.Found }},
	FieldDiscarded:      {true, func(v *Video) Value { return v.Discarded }},
	FieldWithThumbnails: {true, func(v *Video) Value { return v.WithThumbnails }},

	FieldLength:          {false, func(v *Video) Value { return v.Duration }},
	FieldWidth:           {false, func(v *Video) Value { return v.Width }},
	FieldHeight:          {false, func(v *Video) Value { return v.Height }},
	FieldFrameRate:       {false, func(v *Video) Value { return v.FrameRate }},
	FieldVideoCodec:      {false, func(v *Video) Value { return v.VideoCodec }},
	FieldAudioCodec:      {false, func(v *Video) Value { return v.AudioCodec }},
	FieldContainerFormat: {false, func(v *Video) Value { return v.ContainerFormat }},
	FieldSimilarityID: {false, func(v *Video) Value {
		if v.SimilarityID == nil {
			return nil
		}
		return *v.SimilarityID
	}},
}

// IsField reports whether name is a built-in field.
func IsField(name string) bool {
	_, ok := fields[name]
	return ok
}

// IsCommonField reports whether name is a built-in field that unreadable
// videos also carry.
func IsCommonField(name string) bool {
	def, ok := fields[name]
	return ok && def.common
}

// FieldNames returns the built-in field names, sorted.
func FieldNames() []string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Field returns the value of a built-in field. ok is false for unknown
// names. Fields that need a readable file are nil for unreadable videos.
func (v *Video) Field(name string) (value Value, ok bool) {
	def, ok := fields[name]
	if !ok {
		return nil, false
	}
	if !def.common && !v.Readable {
		return nil, true
	}
	return def.get(v), true
}
