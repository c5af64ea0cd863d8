package viewport

import (
	"fmt"
	"time"

	"video-library/internal/indexer"
	"video-library/internal/logging"
	"video-library/internal/video"
)

// Database is the video collection a pipeline reads from.
type Database interface {
	// GetVideos returns the non-discarded videos having every flag, unless
	// discarded is one of the flags.
	GetVideos(flags ...video.Flag) []*video.Video
	// GetPropValues returns the values of property name on v. With
	// withDefault, an unset single-valued property yields its default.
	GetPropValues(v *video.Video, name string, withDefault bool) []video.Value
	// HasPropType reports whether property name exists with the given
	// multiplicity.
	HasPropType(name string, multiple bool) bool
	// Search filters candidates by text without a prebuilt index.
	Search(text string, cond indexer.Cond, candidates []*video.Video) ([]*video.Video, error)
}

// Observer receives pipeline activity. Implementations must be cheap and
// non-blocking.
type Observer interface {
	ObserveStageRun(stage string, durationSeconds float64)
	ObserveCacheDeletion(stage string)
	ObserveIndexBuild(durationSeconds float64, added int)
	ObserveViewSize(size int)
}

type nopObserver struct{}

func (nopObserver) ObserveStageRun(string, float64) {}
func (nopObserver) ObserveCacheDeletion(string) {}
func (nopObserver) ObserveIndexBuild(float64, int) {}
func (nopObserver) ObserveViewSize(int) {}

// Stage positions in the pipeline.
const (
	stageSource = iota
	stageGrouping
	stageClassifier
	stageGroup
	stageSearch
	stageSort
	stageCount
)

// StageNames lists the stages in pipeline order.
var StageNames = []string{"source", "grouping", "classifier", "group", "search", "sort"}

func stageIndex(name string) (int, error) {
	for i, n := range StageNames {
		if n == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownStage, name)
}

// layer is the per-stage computation. filter must not modify input and must
// return a value removeFromCache may later modify in place, except where the
// layer passes a shared object through unchanged.
type layer interface {
	filter(p *Pipeline, input any) (any, error)
	// removeFromCache drops v from the cached output and reports whether
	// the stage must be recomputed instead.
	removeFromCache(p *Pipeline, input, output any, v *video.Video) bool
	reset()
}

type stage struct {
	name   string
	layer  layer
	dirty  bool
	input  any
	output any
}

func (s *stage) setInput(in any) {
	s.input = in
	s.dirty = true
}

// Pipeline is the ordered chain of stages behind a Viewport.
type Pipeline struct {
	db          Database
	stages      [stageCount]*stage
	observer    Observer
	naiveSearch bool
}

func newPipeline(db Database) *Pipeline {
	p := &Pipeline{db: db, observer: nopObserver{}}
	layers := [stageCount]layer{
		stageSource:     &sourceLayer{},
		stageGrouping:   &groupingLayer{},
		stageClassifier: &classifierLayer{},
		stageGroup:      &groupLayer{},
		stageSearch:     &searchLayer{},
		stageSort:       &sortLayer{},
	}
	for i, l := range layers {
		l.reset()
		p.stages[i] = &stage{name: StageNames[i], layer: l}
	}
	p.stages[stageSource].setInput(db)
	return p
}

func (p *Pipeline) source() *sourceLayer { return p.stages[stageSource].layer.(*sourceLayer) }
func (p *Pipeline) grouping() *groupingLayer { return p.stages[stageGrouping].layer.(*groupingLayer) }
func (p *Pipeline) classifier() *classifierLayer { return p.stages[stageClassifier].layer.(*classifierLayer) }
func (p *Pipeline) group() *groupLayer { return p.stages[stageGroup].layer.(*groupLayer) }
func (p *Pipeline) search() *searchLayer { return p.stages[stageSearch].layer.(*searchLayer) }
func (p *Pipeline) sort() *sortLayer { return p.stages[stageSort].layer.(*sortLayer) }

func (p *Pipeline) markDirty(i int) {
	p.stages[i].dirty = true
}

// Dirty reports whether any stage needs recomputation.
func (p *Pipeline) Dirty() bool {
	return p.dirtyFrom(0)
}

func (p *Pipeline) dirtyFrom(i int) bool {
	for ; i < stageCount; i++ {
		if p.stages[i].dirty {
			return true
		}
	}
	return false
}

// Run brings every stage up to date. A failing stage keeps its previous
// output and stays dirty, and no later stage is touched.
func (p *Pipeline) Run() error {
	for i, st := range p.stages {
		if !st.dirty {
			if !p.dirtyFrom(i + 1) {
				return nil
			}
			continue
		}
		start := time.Now()
		out, err := st.layer.filter(p, st.input)
		if err != nil {
			return fmt.Errorf("%s stage: %w", st.name, err)
		}
		elapsed := time.Since(start)
		st.output = out
		st.dirty = false
		p.observer.ObserveStageRun(st.name, elapsed.Seconds())
		logging.Debug("viewport: %s stage recomputed in %v", st.name, elapsed)
		if i+1 < stageCount {
			p.stages[i+1].setInput(out)
		}
	}
	return nil
}

// DeleteVideo removes v from every cached stage output. Dirty stages are
// skipped since their next computation reads the updated collection.
func (p *Pipeline) DeleteVideo(v *video.Video) {
	for _, st := range p.stages {
		if st.dirty || st.output == nil {
			continue
		}
		if st.layer.removeFromCache(p, st.input, st.output, v) {
			st.dirty = true
		}
		p.observer.ObserveCacheDeletion(st.name)
	}
}

func (p *Pipeline) output(i int) any {
	return p.stages[i].output
}

// termIndex returns the index built by the source stage, or nil when the
// pipeline searches without one.
func (p *Pipeline) termIndex() *indexer.Indexer {
	so, _ := p.output(stageSource).(*sourceOutput)
	if so == nil {
		return nil
	}
	return so.index
}
