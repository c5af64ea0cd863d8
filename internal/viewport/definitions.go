package viewport

import (
	"fmt"
	"slices"
	"strings"

	"video-library/internal/indexer"
	"video-library/internal/video"
)

// GroupSorting selects how groups are ordered.
type GroupSorting string

const (
	GroupByField  GroupSorting = "field"
	GroupByLength GroupSorting = "length"
	GroupByCount  GroupSorting = "count"
)

// GroupDef configures the grouping stage: which attribute buckets videos
// and how the buckets are ordered. The zero value disables grouping.
type GroupDef struct {
	Field           string       `json:"field" toml:"field"`
	IsProperty      bool         `json:"isProperty" toml:"is_property"`
	Sorting         GroupSorting `json:"sorting" toml:"sorting"`
	Reverse         bool         `json:"reverse" toml:"reverse"`
	AllowSingletons bool         `json:"allowSingletons" toml:"allow_singletons"`
}

// Active reports whether the definition groups anything.
func (d GroupDef) Active() bool {
	return d.Field != ""
}

func (d GroupDef) normalized() GroupDef {
	d.Field = strings.TrimSpace(d.Field)
	if d.Sorting == "" {
		d.Sorting = GroupByField
	}
	if !d.Active() {
		return GroupDef{Sorting: GroupByField}
	}
	return d
}

func (d GroupDef) validate(db Database) error {
	switch d.Sorting {
	case GroupByField, GroupByLength, GroupByCount:
	default:
		return fmt.Errorf("%w: unknown group sorting %q", ErrInvalidGroupDef, d.Sorting)
	}
	if !d.Active() {
		return nil
	}
	if d.IsProperty {
		if !db.HasPropType(d.Field, false) && !db.HasPropType(d.Field, true) {
			return fmt.Errorf("%w: unknown property %q", ErrInvalidGroupDef, d.Field)
		}
		return nil
	}
	if !video.IsField(d.Field) {
		return fmt.Errorf("%w: unknown field %q", ErrInvalidGroupDef, d.Field)
	}
	return nil
}

// SearchDef is a text query and its evaluation mode.
type SearchDef struct {
	Text string       `json:"text"`
	Cond indexer.Cond `json:"cond"`
}

// NewSearchDef validates a query. An id query must hold a single integer.
func NewSearchDef(text, cond string) (SearchDef, error) {
	c, err := indexer.ParseCond(cond)
	if err != nil {
		return SearchDef{}, &QueryError{Text: text, Cond: cond, Err: err}
	}
	def := SearchDef{Text: strings.TrimSpace(text), Cond: c}
	if c == indexer.CondID && def.Active() {
		if _, err := indexer.ParseID(def.Terms()); err != nil {
			return SearchDef{}, &QueryError{Text: text, Cond: cond, Err: err}
		}
	}
	return def, nil
}

// Terms returns the normalized query terms.
func (d SearchDef) Terms() []string {
	return video.Tokenize(d.Text)
}

// Active reports whether the query filters anything.
func (d SearchDef) Active() bool {
	return len(d.Terms()) > 0
}

// SortField is one sort key.
type SortField struct {
	Name       string
	Descending bool
}

// VideoSorting is an ordered list of sort keys, most significant first.
type VideoSorting []SortField

// DefaultSorting orders the newest videos first.
func DefaultSorting() VideoSorting {
	return VideoSorting{{Name: video.FieldDate, Descending: true}}
}

// ParseSorting parses tokens such as "-date" or "+title". A bare name sorts
// ascending.
func ParseSorting(tokens []string) (VideoSorting, error) {
	sorting := make(VideoSorting, 0, len(tokens))
	seen := make(map[string]bool, len(tokens))
	for _, token := range tokens {
		token = strings.TrimSpace(token)
		field := SortField{Name: token}
		switch {
		case strings.HasPrefix(token, "-"):
			field = SortField{Name: token[1:], Descending: true}
		case strings.HasPrefix(token, "+"):
			field = SortField{Name: token[1:]}
		}
		field.Name = strings.TrimSpace(field.Name)
		if field.Name == "" {
			return nil, fmt.Errorf("%w: empty sort field in %q", ErrInvalidSorting, token)
		}
		if seen[field.Name] {
			return nil, fmt.Errorf("%w: field %q sorted twice", ErrInvalidSorting, field.Name)
		}
		seen[field.Name] = true
		sorting = append(sorting, field)
	}
	return sorting, nil
}

// Tokens renders the sorting back to its token form.
func (s VideoSorting) Tokens() []string {
	tokens := make([]string, len(s))
	for i, f := range s {
		if f.Descending {
			tokens[i] = "-" + f.Name
		} else {
			tokens[i] = "+" + f.Name
		}
	}
	return tokens
}

// Equal reports whether both sortings hold the same keys in the same order.
func (s VideoSorting) Equal(other VideoSorting) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Sources is a disjunction of flag conjunctions: a video is selected when it
// has every flag of at least one tuple.
type Sources [][]video.Flag

// DefaultSources selects readable videos.
func DefaultSources() Sources {
	return Sources{{video.FlagReadable}}
}

// ParseSources validates flag names and removes duplicate flags inside a
// tuple. Tuples must select disjoint sets of videos: every pair needs one
// flag whose complement the other requires.
func ParseSources(tuples [][]string) (Sources, error) {
	if len(tuples) == 0 {
		return nil, fmt.Errorf("%w: at least one flag tuple is required", ErrInvalidSource)
	}
	sources := make(Sources, 0, len(tuples))
	for _, tuple := range tuples {
		if len(tuple) == 0 {
			return nil, fmt.Errorf("%w: empty flag tuple", ErrInvalidSource)
		}
		flags := make([]video.Flag, 0, len(tuple))
		seen := make(map[video.Flag]bool, len(tuple))
		for _, name := range tuple {
			f, err := video.ParseFlag(name)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidSource, err)
			}
			if !seen[f] {
				seen[f] = true
				flags = append(flags, f)
			}
		}
		for _, prev := range sources {
			if !disjoint(prev, flags) {
				return nil, fmt.Errorf("%w: tuples %v and %v may select the same video", ErrInvalidSource, prev, flags)
			}
		}
		sources = append(sources, flags)
	}
	return sources, nil
}

// disjoint reports whether no video can satisfy both tuples. A tuple
// without the discarded flag only selects videos that are not discarded.
func disjoint(a, b []video.Flag) bool {
	if slices.Contains(a, video.FlagDiscarded) != slices.Contains(b, video.FlagDiscarded) {
		return true
	}
	for _, f := range a {
		if c, ok := f.Complement(); ok && slices.Contains(b, c) {
			return true
		}
	}
	return false
}

// Has reports whether any tuple requires f.
func (s Sources) Has(f video.Flag) bool {
	for _, tuple := range s {
		for _, flag := range tuple {
			if flag == f {
				return true
			}
		}
	}
	return false
}

// Strings renders the tuples as flag names.
func (s Sources) Strings() [][]string {
	out := make([][]string, len(s))
	for i, tuple := range s {
		out[i] = make([]string, len(tuple))
		for j, f := range tuple {
			out[i][j] = string(f)
		}
	}
	return out
}

// Equal compares tuples in order.
func (s Sources) Equal(other Sources) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if len(s[i]) != len(other[i]) {
			return false
		}
		for j := range s[i] {
			if s[i][j] != other[i][j] {
				return false
			}
		}
	}
	return true
}

func (s Sources) clone() Sources {
	out := make(Sources, len(s))
	for i, tuple := range s {
		out[i] = append([]video.Flag(nil), tuple...)
	}
	return out
}

func equalPaths(a, b []video.Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if video.CompareValues(a[i], b[i]) != 0 {
			return false
		}
	}
	return true
}
