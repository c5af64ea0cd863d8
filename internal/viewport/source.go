package viewport

import (
	"fmt"
	"time"

	"video-library/internal/indexer"
	"video-library/internal/logging"
	"video-library/internal/video"
)

type sourceOutput struct {
	videos *VideoArray
	// index covers exactly videos; nil when searching naively.
	index *indexer.Indexer
}

type sourceLayer struct {
	sources Sources
	// staleTerms is set when property values changed while no search was
	// active. The cached index then holds outdated terms and is rebuilt
	// before the next search uses it.
	staleTerms bool
}

func (l *sourceLayer) reset() {
	l.sources = DefaultSources()
}

func (l *sourceLayer) filter(p *Pipeline, input any) (any, error) {
	db, ok := input.(Database)
	if !ok {
		return &sourceOutput{videos: NewVideoArray()}, nil
	}
	var all []*video.Video
	for _, tuple := range l.sources {
		all = append(all, db.GetVideos(tuple...)...)
	}
	seen := make(map[string]struct{}, len(all))
	for _, v := range all {
		if _, dup := seen[v.Filename]; dup {
			panic(fmt.Sprintf("viewport: source tuples %v select %s more than once", l.sources.Strings(), v.Filename))
		}
		seen[v.Filename] = struct{}{}
	}
	out := &sourceOutput{videos: NewVideoArray(all...)}
	l.staleTerms = false
	if !p.naiveSearch {
		start := time.Now()
		out.index = indexer.New()
		added := out.index.Build(all)
		p.observer.ObserveIndexBuild(time.Since(start).Seconds(), added)
		logging.Debug("viewport: indexed %d videos (%d terms)", added, out.index.TermCount())
	}
	return out, nil
}

func (l *sourceLayer) removeFromCache(_ *Pipeline, _, output any, v *video.Video) bool {
	out := output.(*sourceOutput)
	if !out.videos.Discard(v.Filename) {
		return false
	}
	if out.index != nil {
		out.index.RemoveFilename(v.Filename)
	}
	return false
}
