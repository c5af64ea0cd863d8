package viewport

import (
	"video-library/internal/lookup"
	"video-library/internal/video"
)

// VideoArray is an ordered video list with O(1) filename lookup.
type VideoArray = lookup.Array[string, *video.Video]

// NewVideoArray builds a VideoArray keyed by filename.
func NewVideoArray(videos ...*video.Video) *VideoArray {
	return lookup.FromSlice((*video.Video).Key, videos)
}

// Group is a bucket of videos sharing one field or property value. A nil
// FieldValue is the "no value" group.
type Group struct {
	FieldValue video.Value
	Videos     *VideoArray
}

func newGroup(value video.Value) *Group {
	return &Group{FieldValue: value, Videos: NewVideoArray()}
}

// Len returns the number of videos in the group.
func (g *Group) Len() int {
	return g.Videos.Len()
}

func groupKey(g *Group) video.Value {
	return g.FieldValue
}

// GroupArray is the ordered group list produced by the grouping and
// classifier stages, keyed by field value.
type GroupArray struct {
	Field      string
	IsProperty bool
	Groups     *lookup.Array[video.Value, *Group]
}

func newGroupArray(def GroupDef, groups []*Group) *GroupArray {
	return &GroupArray{
		Field:      def.Field,
		IsProperty: def.IsProperty,
		Groups:     lookup.FromSlice(groupKey, groups),
	}
}

// Len returns the number of groups.
func (ga *GroupArray) Len() int {
	if ga == nil {
		return 0
	}
	return ga.Groups.Len()
}

// GroupSummary describes one group without its videos.
type GroupSummary struct {
	Value any    `json:"value"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

func summarize(ga *GroupArray) []GroupSummary {
	out := make([]GroupSummary, 0, ga.Len())
	if ga == nil {
		return out
	}
	for _, g := range ga.Groups.Values() {
		label := "(none)"
		if g.FieldValue != nil {
			label = video.FormatValue(g.FieldValue)
		}
		out = append(out, GroupSummary{Value: g.FieldValue, Label: label, Count: g.Len()})
	}
	return out
}
