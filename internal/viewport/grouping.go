package viewport

import (
	"cmp"
	"sort"
	"unicode/utf8"

	"video-library/internal/lookup"
	"video-library/internal/video"
)

type groupingLayer struct {
	def GroupDef
}

func (l *groupingLayer) reset() {
	l.def = GroupDef{}.normalized()
}

// membership returns the group values v belongs to under def. A video with
// no property value lands in the nil group; a video without a similarity
// id is left out.
func membership(p *Pipeline, def GroupDef, v *video.Video) []video.Value {
	if !def.Active() {
		return []video.Value{nil}
	}
	if def.IsProperty {
		values := p.db.GetPropValues(v, def.Field, true)
		if len(values) == 0 {
			return []video.Value{nil}
		}
		return values
	}
	value, _ := v.Field(def.Field)
	if def.Field == video.FieldSimilarityID && (value == nil || value == -1) {
		return nil
	}
	return []video.Value{value}
}

func (l *groupingLayer) filter(p *Pipeline, input any) (any, error) {
	var videos []*video.Video
	if src, ok := input.(*sourceOutput); ok {
		videos = src.videos.Values()
	}
	if !l.def.Active() {
		all := newGroup(nil)
		for _, v := range videos {
			all.Videos.Append(v)
		}
		return newGroupArray(l.def, []*Group{all}), nil
	}
	buckets := lookup.New(groupKey)
	for _, v := range videos {
		for _, value := range membership(p, l.def, v) {
			g, ok := buckets.Lookup(value)
			if !ok {
				g = newGroup(value)
				buckets.Append(g)
			}
			if !g.Videos.ContainsKey(v.Filename) {
				g.Videos.Append(v)
			}
		}
	}
	groups := make([]*Group, 0, buckets.Len())
	for _, g := range buckets.Values() {
		if l.def.AllowSingletons || g.Len() > 1 {
			groups = append(groups, g)
		}
	}
	sortGroups(groups, l.def)
	return newGroupArray(l.def, groups), nil
}

func (l *groupingLayer) removeFromCache(p *Pipeline, _, output any, v *video.Video) bool {
	ga := output.(*GroupArray)
	var touched []*Group
	for _, value := range membership(p, l.def, v) {
		if g, ok := ga.Groups.Lookup(value); ok && g.Videos.Discard(v.Filename) {
			touched = append(touched, g)
		}
	}
	if len(touched) == 0 {
		// Values changed since grouping without a notification.
		for _, g := range ga.Groups.Values() {
			if g.Videos.Discard(v.Filename) {
				touched = append(touched, g)
			}
		}
	}
	if len(touched) == 0 {
		return false
	}
	for _, g := range touched {
		if !l.def.Active() {
			break
		}
		if g.Len() == 0 || (!l.def.AllowSingletons && g.Len() == 1) {
			g.Videos.Clear()
			ga.Groups.Remove(g)
		}
	}
	if l.def.Sorting == GroupByCount {
		groups := append([]*Group(nil), ga.Groups.Values()...)
		sortGroups(groups, l.def)
		ga.Groups = lookup.FromSlice(groupKey, groups)
	}
	return false
}

// sortGroups orders groups by def. Groups without a value always come last;
// ties on length or count fall back to the value.
func sortGroups(groups []*Group, def GroupDef) {
	sort.SliceStable(groups, func(i, j int) bool {
		return compareGroups(groups[i], groups[j], def) < 0
	})
}

func compareGroups(a, b *Group, def GroupDef) int {
	if aNil, bNil := a.FieldValue == nil, b.FieldValue == nil; aNil != bNil {
		if aNil {
			return 1
		}
		return -1
	}
	var c int
	switch def.Sorting {
	case GroupByLength:
		c = cmp.Compare(valueLength(a.FieldValue), valueLength(b.FieldValue))
	case GroupByCount:
		c = cmp.Compare(a.Len(), b.Len())
	default:
		c = video.CompareValues(a.FieldValue, b.FieldValue)
	}
	if def.Reverse {
		c = -c
	}
	if c != 0 {
		return c
	}
	return video.CompareValues(a.FieldValue, b.FieldValue)
}

func valueLength(v video.Value) int {
	return utf8.RuneCountInString(video.FormatValue(v))
}
