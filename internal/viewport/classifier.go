package viewport

import (
	"video-library/internal/lookup"
	"video-library/internal/video"
)

// classifierLayer narrows a multi-valued property grouping to the videos
// carrying every value on the path, then regroups them by their remaining
// values.
type classifierLayer struct {
	path []video.Value
}

func (l *classifierLayer) reset() {
	l.path = nil
}

func (l *classifierLayer) active(p *Pipeline, ga *GroupArray) bool {
	return len(l.path) > 0 && ga != nil && ga.IsProperty && p.db.HasPropType(ga.Field, true)
}

func (l *classifierLayer) filter(p *Pipeline, input any) (any, error) {
	ga, _ := input.(*GroupArray)
	if !l.active(p, ga) {
		return ga, nil
	}
	selected := l.intersection(ga)
	onPath := make(map[video.Value]bool, len(l.path))
	for _, value := range l.path {
		onPath[value] = true
	}
	buckets := lookup.New(groupKey)
	for _, v := range selected.Values() {
		for _, value := range p.db.GetPropValues(v, ga.Field, true) {
			if value == nil || onPath[value] {
				continue
			}
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
	def := p.grouping().def
	def.AllowSingletons = true
	groups := append([]*Group(nil), buckets.Values()...)
	sortGroups(groups, def)
	groups = append(groups, &Group{Videos: selected})
	return newGroupArray(def, groups), nil
}

func (l *classifierLayer) intersection(ga *GroupArray) *VideoArray {
	var selected *VideoArray
	for _, value := range l.path {
		g, ok := ga.Groups.Lookup(value)
		if !ok {
			return NewVideoArray()
		}
		if selected == nil {
			selected = g.Videos.Clone()
			continue
		}
		kept := NewVideoArray()
		for _, v := range selected.Values() {
			if g.Videos.ContainsKey(v.Filename) {
				kept.Append(v)
			}
		}
		selected = kept
	}
	return selected
}

// removeFromCache passes through when inactive: the grouping stage already
// updated the shared output. An active classifier recomputes from the
// updated groups.
func (l *classifierLayer) removeFromCache(p *Pipeline, input, output any, _ *video.Video) bool {
	ga, _ := input.(*GroupArray)
	if out, _ := output.(*GroupArray); out == ga {
		return false
	}
	return true
}
