package viewport

import (
	"sort"

	"video-library/internal/logging"
	"video-library/internal/video"
)

// SortPolicy tells how unreadable videos are ordered.
type SortPolicy string

const (
	// SortAll sorts every video together.
	SortAll SortPolicy = "filter_all"
	// SortSeparate sorts readable videos, then appends the unreadable ones
	// in input order. It applies when unreadable videos are selected and a
	// sort field is unknown for them.
	SortSeparate SortPolicy = "filter_separate"
)

type sortLayer struct {
	sorting VideoSorting
	policy  SortPolicy
}

func (l *sortLayer) reset() {
	l.sorting = DefaultSorting()
	l.policy = SortAll
}

func (l *sortLayer) choosePolicy(sources Sources) SortPolicy {
	if !sources.Has(video.FlagUnreadable) {
		return SortAll
	}
	for _, f := range l.sorting {
		if !video.IsCommonField(f.Name) {
			return SortSeparate
		}
	}
	return SortAll
}

func (l *sortLayer) filter(p *Pipeline, input any) (any, error) {
	in, _ := input.(*VideoArray)
	if in == nil {
		return NewVideoArray(), nil
	}
	policy := l.choosePolicy(p.source().sources)
	if policy != l.policy {
		logging.Debug("viewport: sort policy %s -> %s", l.policy, policy)
		l.policy = policy
	}
	videos := in.Values()
	if policy == SortSeparate {
		readable := make([]*video.Video, 0, len(videos))
		var unreadable []*video.Video
		for _, v := range videos {
			if v.Readable {
				readable = append(readable, v)
			} else {
				unreadable = append(unreadable, v)
			}
		}
		logging.Info("viewport: sorting %d readable videos by %v, %d unreadable videos kept last",
			len(readable), l.sorting.Tokens(), len(unreadable))
		return NewVideoArray(append(l.sorted(p, readable), unreadable...)...), nil
	}
	return NewVideoArray(l.sorted(p, videos)...), nil
}

type sortKey struct {
	video  *video.Video
	values []any
}

func (l *sortLayer) sorted(p *Pipeline, videos []*video.Video) []*video.Video {
	keys := make([]sortKey, len(videos))
	for i, v := range videos {
		keys[i] = sortKey{video: v, values: make([]any, len(l.sorting))}
		for j, f := range l.sorting {
			if video.IsField(f.Name) {
				keys[i].values[j], _ = v.Field(f.Name)
			} else {
				keys[i].values[j] = p.db.GetPropValues(v, f.Name, true)
			}
		}
	}
	sort.SliceStable(keys, func(i, j int) bool {
		return l.compare(keys[i].values, keys[j].values) < 0
	})
	out := make([]*video.Video, len(keys))
	for i, k := range keys {
		out[i] = k.video
	}
	return out
}

func (l *sortLayer) compare(a, b []any) int {
	for i, f := range l.sorting {
		var c int
		if list, ok := a[i].([]video.Value); ok {
			c = video.CompareValueLists(list, b[i].([]video.Value))
		} else {
			c = video.CompareValues(a[i], b[i])
		}
		if f.Descending {
			c = -c
		}
		if c != 0 {
			return c
		}
	}
	return 0
}

func (l *sortLayer) removeFromCache(_ *Pipeline, _, output any, v *video.Video) bool {
	output.(*VideoArray).Discard(v.Filename)
	return false
}
