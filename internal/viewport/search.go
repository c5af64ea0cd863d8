package viewport

import (
	"fmt"

	"video-library/internal/indexer"
	"video-library/internal/video"
)

type searchLayer struct {
	def SearchDef
}

func (l *searchLayer) reset() {
	l.def = SearchDef{Cond: indexer.CondAnd}
}

func (l *searchLayer) filter(p *Pipeline, input any) (any, error) {
	g, _ := input.(*Group)
	if g == nil {
		return NewVideoArray(), nil
	}
	if !l.def.Active() {
		return g.Videos.Clone(), nil
	}
	terms := l.def.Terms()
	if l.def.Cond == indexer.CondID {
		id, err := indexer.ParseID(terms)
		if err != nil {
			return nil, &QueryError{Text: l.def.Text, Cond: string(l.def.Cond), Err: err}
		}
		out := NewVideoArray()
		for _, v := range g.Videos.Values() {
			if v.ID == id {
				out.Append(v)
			}
		}
		return out, nil
	}
	idx := p.termIndex()
	if idx == nil {
		found, err := p.db.Search(l.def.Text, l.def.Cond, g.Videos.Values())
		if err != nil {
			return nil, fmt.Errorf("database search: %w", err)
		}
		return keepOrder(g.Videos, indexer.NewSet(filenames(found)...)), nil
	}
	candidates := indexer.NewSet(g.Videos.Keys()...)
	var matched indexer.Set
	switch l.def.Cond {
	case indexer.CondOr:
		matched = idx.QueryOr(candidates, terms)
	case indexer.CondExact:
		matched = idx.QueryAnd(candidates, terms)
		for filename := range matched {
			v, _ := g.Videos.Lookup(filename)
			if !indexer.ContainsPhrase(v, terms) {
				delete(matched, filename)
			}
		}
	default:
		matched = idx.QueryAnd(candidates, terms)
	}
	return keepOrder(g.Videos, matched), nil
}

// keepOrder returns the videos of in whose filename is in keep, in input
// order.
func keepOrder(in *VideoArray, keep indexer.Set) *VideoArray {
	out := NewVideoArray()
	for _, v := range in.Values() {
		if _, ok := keep[v.Filename]; ok {
			out.Append(v)
		}
	}
	return out
}

func filenames(videos []*video.Video) []string {
	out := make([]string, len(videos))
	for i, v := range videos {
		out[i] = v.Filename
	}
	return out
}

func (l *searchLayer) removeFromCache(_ *Pipeline, _, output any, v *video.Video) bool {
	output.(*VideoArray).Discard(v.Filename)
	return false
}
