package indexer

import (
	"fmt"
	"strconv"
	"time"

	"video-library/internal/logging"
	"video-library/internal/video"
)

// Number of videos indexed between two progress notifications.
const progressBatch = 500

// Set is a set of video filenames.
type Set = map[string]struct{}

// NewSet builds a Set from filenames.
func NewSet(filenames ...string) Set {
	s := make(Set, len(filenames))
	for _, f := range filenames {
		s[f] = struct{}{}
	}
	return s
}

// Indexer is an inverted index from terms to video filenames. It is not safe
// for concurrent use.
type Indexer struct {
	termToFilenames map[string]Set
	filenameToTerms map[string][]string
	onProgress      func(done, total int)
}

// New creates an empty Indexer.
func New() *Indexer {
	return &Indexer{
		termToFilenames: make(map[string]Set),
		filenameToTerms: make(map[string][]string),
	}
}

// SetOnProgress registers a callback invoked every 500 videos during Build,
// and once at the end.
func (idx *Indexer) SetOnProgress(fn func(done, total int)) {
	idx.onProgress = fn
}

// FlagTerm is the synthetic term indexing a flag value.
func FlagTerm(f video.Flag, value bool) string {
	return string(f) + "=" + strconv.FormatBool(value)
}

// VideoTerms returns the deduplicated terms indexed for v: its free-text
// terms followed by one synthetic term per flag.
func VideoTerms(v *video.Video) []string {
	seen := make(map[string]struct{}, len(v.Terms)+len(video.AllFlags))
	terms := make([]string, 0, len(v.Terms)+len(video.AllFlags))
	add := func(term string) {
		if _, ok := seen[term]; !ok {
			seen[term] = struct{}{}
			terms = append(terms, term)
		}
	}
	for _, term := range v.Terms {
		add(term)
	}
	for _, f := range video.AllFlags {
		add(FlagTerm(f, v.Flag(f)))
	}
	return terms
}

// Len returns the number of indexed videos.
func (idx *Indexer) Len() int {
	return len(idx.filenameToTerms)
}

// TermCount returns the number of distinct terms.
func (idx *Indexer) TermCount() int {
	return len(idx.termToFilenames)
}

// IsIndexed reports whether filename is in the index.
func (idx *Indexer) IsIndexed(filename string) bool {
	_, ok := idx.filenameToTerms[filename]
	return ok
}

// Filenames returns every indexed filename.
func (idx *Indexer) Filenames() Set {
	s := make(Set, len(idx.filenameToTerms))
	for f := range idx.filenameToTerms {
		s[f] = struct{}{}
	}
	return s
}

// Bucket returns the filenames indexed under term. The set is owned by the
// index and must not be modified.
func (idx *Indexer) Bucket(term string) Set {
	return idx.termToFilenames[term]
}

// Build indexes every video not yet present in the index and returns how
// many were added.
func (idx *Indexer) Build(videos []*video.Video) int {
	start := time.Now()
	added := 0
	for i, v := range videos {
		if !idx.IsIndexed(v.Filename) {
			idx.AddVideo(v)
			added++
		}
		if (i+1)%progressBatch == 0 {
			idx.notify(i+1, len(videos))
		}
	}
	if len(videos)%progressBatch != 0 || len(videos) == 0 {
		idx.notify(len(videos), len(videos))
	}
	logging.Debug("Indexed %d new videos (%d total, %d terms) in %v", added, idx.Len(), idx.TermCount(), time.Since(start))
	return added
}

func (idx *Indexer) notify(done, total int) {
	logging.Debug("Indexing videos: %d/%d", done, total)
	if idx.onProgress != nil {
		idx.onProgress(done, total)
	}
}

// AddVideo indexes v. Adding a filename twice panics.
func (idx *Indexer) AddVideo(v *video.Video) {
	if idx.IsIndexed(v.Filename) {
		panic(fmt.Sprintf("indexer: %s already indexed", v.Filename))
	}
	terms := VideoTerms(v)
	idx.filenameToTerms[v.Filename] = terms
	for _, term := range terms {
		idx.addToBucket(term, v.Filename)
	}
}

// RemoveFilename drops filename from every bucket holding it. Buckets left
// empty are deleted. Unknown filenames are ignored.
func (idx *Indexer) RemoveFilename(filename string) {
	terms, ok := idx.filenameToTerms[filename]
	if !ok {
		return
	}
	for _, term := range terms {
		idx.removeFromBucket(term, filename)
	}
	delete(idx.filenameToTerms, filename)
}

// UpdateVideo re-indexes v, touching only the buckets of terms it gained or
// lost.
func (idx *Indexer) UpdateVideo(v *video.Video) {
	oldTerms, ok := idx.filenameToTerms[v.Filename]
	if !ok {
		idx.AddVideo(v)
		return
	}
	newTerms := VideoTerms(v)

	newSet := NewSet(newTerms...)
	oldSet := NewSet(oldTerms...)
	for _, term := range oldTerms {
		if _, keep := newSet[term]; !keep {
			idx.removeFromBucket(term, v.Filename)
		}
	}
	for _, term := range newTerms {
		if _, had := oldSet[term]; !had {
			idx.addToBucket(term, v.Filename)
		}
	}
	idx.filenameToTerms[v.Filename] = newTerms
}

func (idx *Indexer) addToBucket(term, filename string) {
	bucket, ok := idx.termToFilenames[term]
	if !ok {
		bucket = make(Set)
		idx.termToFilenames[term] = bucket
	}
	bucket[filename] = struct{}{}
}

func (idx *Indexer) removeFromBucket(term, filename string) {
	bucket, ok := idx.termToFilenames[term]
	if !ok {
		panic(fmt.Sprintf("indexer: term bucket %q missing for %s", term, filename))
	}
	if _, ok := bucket[filename]; !ok {
		panic(fmt.Sprintf("indexer: %s missing from term bucket %q", filename, term))
	}
	delete(bucket, filename)
	if len(bucket) == 0 {
		delete(idx.termToFilenames, term)
	}
}
