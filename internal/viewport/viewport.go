package viewport

import (
	"fmt"
	"slices"

	"video-library/internal/logging"
	"video-library/internal/notify"
	"video-library/internal/video"
)

// Option configures a Viewport.
type Option func(*Pipeline)

// WithObserver reports pipeline activity to o.
func WithObserver(o Observer) Option {
	return func(p *Pipeline) {
		if o != nil {
			p.observer = o
		}
	}
}

// WithNaiveSearch makes the search stage scan candidates through the
// database instead of building a term index in the source stage.
func WithNaiveSearch() Option {
	return func(p *Pipeline) {
		p.naiveSearch = true
	}
}

// Subscriber is the notification source a Viewport listens to.
type Subscriber interface {
	Subscribe(fn func(notify.Event)) (unsubscribe func())
}

// Viewport is the parameterized view over a video collection.
type Viewport struct {
	pipe        *Pipeline
	unsubscribe func()
}

// New creates a Viewport with default parameters: readable videos, no
// grouping, no search, newest first.
func New(db Database, opts ...Option) *Viewport {
	p := newPipeline(db)
	for _, opt := range opts {
		opt(p)
	}
	return &Viewport{pipe: p}
}

// Listen applies collection notifications from s until Close.
func (vp *Viewport) Listen(s Subscriber) {
	if vp.unsubscribe != nil {
		vp.unsubscribe()
	}
	vp.unsubscribe = s.Subscribe(vp.HandleEvent)
}

// Close stops listening for notifications.
func (vp *Viewport) Close() {
	if vp.unsubscribe != nil {
		vp.unsubscribe()
		vp.unsubscribe = nil
	}
}

// HandleEvent keeps the caches in line with a collection change.
func (vp *Viewport) HandleEvent(ev notify.Event) {
	switch e := ev.(type) {
	case notify.VideoDeleted:
		vp.Delete(e.Video)
	case notify.VideosAdded:
		vp.pipe.markDirty(stageSource)
	case notify.FieldsModified:
		vp.invalidate(e.Fields, false)
	case notify.PropertiesModified:
		vp.invalidate(e.Names, true)
	}
}

func (vp *Viewport) invalidate(names []string, properties bool) {
	p := vp.pipe
	for _, name := range names {
		if !properties {
			if _, err := video.ParseFlag(name); err == nil {
				p.markDirty(stageSource)
			}
		}
		if def := p.grouping().def; def.Active() && def.IsProperty == properties && def.Field == name {
			p.markDirty(stageGrouping)
		}
		for _, f := range p.sort().sorting {
			if f.Name == name {
				p.markDirty(stageSort)
			}
		}
	}
	if properties {
		// Property values feed the search terms.
		if p.search().def.Active() {
			p.markDirty(stageSource)
		} else {
			p.source().staleTerms = true
		}
	}
}

// SetSources selects videos having all flags of any tuple.
func (vp *Viewport) SetSources(sources Sources) error {
	if _, err := ParseSources(sources.Strings()); err != nil {
		return err
	}
	l := vp.pipe.source()
	if l.sources.Equal(sources) {
		return nil
	}
	l.sources = sources.clone()
	vp.pipe.markDirty(stageSource)
	return nil
}

// Sources returns the current flag tuples.
func (vp *Viewport) Sources() Sources {
	return vp.pipe.source().sources.clone()
}

// SetGroups changes the grouping. A different grouping resets the
// classifier path and the selected group.
func (vp *Viewport) SetGroups(def GroupDef) error {
	def = def.normalized()
	if err := def.validate(vp.pipe.db); err != nil {
		return err
	}
	l := vp.pipe.grouping()
	if l.def == def {
		return nil
	}
	l.def = def
	vp.pipe.markDirty(stageGrouping)
	vp.setClassifierPath(nil)
	vp.SetGroup(0)
	return nil
}

// Groups returns the current grouping.
func (vp *Viewport) Groups() GroupDef {
	return vp.pipe.grouping().def
}

// SetClassifierPath sets the property values every video must carry. A new
// path selects the first group.
func (vp *Viewport) SetClassifierPath(path []video.Value) {
	if vp.setClassifierPath(path) {
		vp.SetGroup(0)
	}
}

func (vp *Viewport) setClassifierPath(path []video.Value) bool {
	l := vp.pipe.classifier()
	if equalPaths(l.path, path) {
		return false
	}
	l.path = slices.Clone(path)
	vp.pipe.markDirty(stageClassifier)
	return true
}

// ClassifierPath returns the current classifier path.
func (vp *Viewport) ClassifierPath() []video.Value {
	return slices.Clone(vp.pipe.classifier().path)
}

// ClassifierSelect appends the value of the group at position groupID to
// the classifier path.
func (vp *Viewport) ClassifierSelect(groupID int) error {
	if err := vp.pipe.Run(); err != nil {
		return err
	}
	ga, _ := vp.pipe.output(stageClassifier).(*GroupArray)
	if groupID < 0 || groupID >= ga.Len() {
		return fmt.Errorf("%w: group %d out of %d", ErrInvalidGroupDef, groupID, ga.Len())
	}
	value := ga.Groups.At(groupID).FieldValue
	if value == nil {
		return fmt.Errorf("%w: cannot classify by the empty value", ErrInvalidGroupDef)
	}
	if !ga.IsProperty || !vp.pipe.db.HasPropType(ga.Field, true) {
		return fmt.Errorf("%w: %q is not a multiple property", ErrInvalidGroupDef, ga.Field)
	}
	vp.SetClassifierPath(append(vp.ClassifierPath(), value))
	return nil
}

// ClassifierBack drops the last value of the classifier path.
func (vp *Viewport) ClassifierBack() {
	path := vp.pipe.classifier().path
	if len(path) > 0 {
		vp.SetClassifierPath(path[:len(path)-1])
	}
}

// SetGroup selects a group by position. Out of range ids are clamped on
// read.
func (vp *Viewport) SetGroup(id int) {
	l := vp.pipe.group()
	if l.groupID == id {
		return
	}
	l.groupID = id
	vp.pipe.markDirty(stageGroup)
}

// GroupID returns the selected group position, clamped to the groups of the
// last computation.
func (vp *Viewport) GroupID() int {
	ga, _ := vp.pipe.output(stageClassifier).(*GroupArray)
	if ga == nil {
		return vp.pipe.group().groupID
	}
	return vp.pipe.group().clamp(ga)
}

// SetSearch changes the text filter. Invalid queries are rejected before
// they reach the pipeline.
func (vp *Viewport) SetSearch(text, cond string) error {
	def, err := NewSearchDef(text, cond)
	if err != nil {
		return err
	}
	l := vp.pipe.search()
	if l.def == def {
		return nil
	}
	l.def = def
	vp.pipe.markDirty(stageSearch)
	if src := vp.pipe.source(); def.Active() && src.staleTerms {
		vp.pipe.markDirty(stageSource)
	}
	return nil
}

// Search returns the current text filter.
func (vp *Viewport) Search() SearchDef {
	return vp.pipe.search().def
}

// SetSort changes the ordering from tokens such as "-date". Fields may be
// built-in fields or property names.
func (vp *Viewport) SetSort(tokens []string) error {
	sorting, err := ParseSorting(tokens)
	if err != nil {
		return err
	}
	for _, f := range sorting {
		if !video.IsField(f.Name) && !vp.pipe.db.HasPropType(f.Name, false) && !vp.pipe.db.HasPropType(f.Name, true) {
			return fmt.Errorf("%w: unknown field %q", ErrInvalidSorting, f.Name)
		}
	}
	l := vp.pipe.sort()
	if l.sorting.Equal(sorting) {
		return nil
	}
	l.sorting = sorting
	vp.pipe.markDirty(stageSort)
	return nil
}

// Sorting returns the current ordering.
func (vp *Viewport) Sorting() VideoSorting {
	return slices.Clone(vp.pipe.sort().sorting)
}

// SortPolicy returns how the last sort treated unreadable videos.
func (vp *Viewport) SortPolicy() SortPolicy {
	return vp.pipe.sort().policy
}

// ResetParameters restores the named stages to their defaults. With no
// names every stage is reset.
func (vp *Viewport) ResetParameters(names ...string) error {
	stages, err := resolveStages(names)
	if err != nil {
		return err
	}
	for _, i := range stages {
		vp.pipe.stages[i].layer.reset()
		vp.pipe.markDirty(i)
	}
	return nil
}

// ForceUpdate marks the named stages dirty. With no names the whole
// pipeline is recomputed.
func (vp *Viewport) ForceUpdate(names ...string) error {
	stages, err := resolveStages(names)
	if err != nil {
		return err
	}
	for _, i := range stages {
		vp.pipe.markDirty(i)
	}
	return nil
}

func resolveStages(names []string) ([]int, error) {
	if len(names) == 0 {
		return []int{stageSource, stageGrouping, stageClassifier, stageGroup, stageSearch, stageSort}, nil
	}
	stages := make([]int, 0, len(names))
	for _, name := range names {
		i, err := stageIndex(name)
		if err != nil {
			return nil, err
		}
		stages = append(stages, i)
	}
	return stages, nil
}

// Delete removes v from every cached stage. The collection must already
// have dropped it.
func (vp *Viewport) Delete(v *video.Video) {
	if v == nil {
		return
	}
	logging.Debug("viewport: removing %s from caches", v.Filename)
	vp.pipe.DeleteVideo(v)
}

// ViewVideos returns the final ordered videos.
func (vp *Viewport) ViewVideos() ([]*video.Video, error) {
	if err := vp.pipe.Run(); err != nil {
		return nil, err
	}
	out, _ := vp.pipe.output(stageSort).(*VideoArray)
	if out == nil {
		return nil, nil
	}
	vp.pipe.observer.ObserveViewSize(out.Len())
	return slices.Clone(out.Values()), nil
}

// ViewIndices returns the ids of the final ordered videos.
func (vp *Viewport) ViewIndices() ([]int, error) {
	videos, err := vp.ViewVideos()
	if err != nil {
		return nil, err
	}
	ids := make([]int, len(videos))
	for i, v := range videos {
		ids[i] = v.ID
	}
	return ids, nil
}

// GroupSummaries describes the groups the group stage selects from.
func (vp *Viewport) GroupSummaries() ([]GroupSummary, error) {
	if err := vp.pipe.Run(); err != nil {
		return nil, err
	}
	ga, _ := vp.pipe.output(stageClassifier).(*GroupArray)
	return summarize(ga), nil
}

// SourceCount returns the number of videos the sources select.
func (vp *Viewport) SourceCount() (int, error) {
	if err := vp.pipe.Run(); err != nil {
		return 0, err
	}
	so, _ := vp.pipe.output(stageSource).(*sourceOutput)
	if so == nil {
		return 0, nil
	}
	return so.videos.Len(), nil
}

// Dirty reports whether the next read recomputes something.
func (vp *Viewport) Dirty() bool {
	return vp.pipe.Dirty()
}
