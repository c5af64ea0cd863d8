package indexer

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"video-library/internal/video"
)

// ErrInvalidQuery marks user-facing query errors.
var ErrInvalidQuery = errors.New("invalid query")

// Cond is a search condition.
type Cond string

const (
	CondAnd   Cond = "and"
	CondOr    Cond = "or"
	CondExact Cond = "exact"
	CondID    Cond = "id"
)

// ParseCond validates a search condition name.
func ParseCond(name string) (Cond, error) {
	switch c := Cond(strings.ToLower(strings.TrimSpace(name))); c {
	case CondAnd, CondOr, CondExact, CondID:
		return c, nil
	default:
		return "", fmt.Errorf("%w: unknown search condition %q", ErrInvalidQuery, name)
	}
}

// QueryAnd returns the filenames of candidates present in every term bucket.
func (idx *Indexer) QueryAnd(candidates Set, terms []string) Set {
	result := make(Set, len(candidates))
	for f := range candidates {
		result[f] = struct{}{}
	}
	for _, term := range terms {
		bucket := idx.termToFilenames[term]
		if len(bucket) == 0 {
			return make(Set)
		}
		result = intersect(result, bucket)
		if len(result) == 0 {
			break
		}
	}
	return result
}

// QueryOr returns the filenames of candidates present in at least one term
// bucket.
func (idx *Indexer) QueryOr(candidates Set, terms []string) Set {
	result := make(Set)
	for _, term := range terms {
		for f := range idx.termToFilenames[term] {
			if _, ok := candidates[f]; ok {
				result[f] = struct{}{}
			}
		}
	}
	return result
}

// QueryFlags returns the candidates having every flag in flags set. The
// forced map pins further flags to explicit values; discarded=false applies
// unless forced or requested otherwise.
func (idx *Indexer) QueryFlags(candidates Set, flags []video.Flag, forced map[video.Flag]bool) Set {
	required := map[video.Flag]bool{video.FlagDiscarded: false}
	for f, value := range forced {
		required[f] = value
	}
	for _, f := range flags {
		required[f] = true
	}
	terms := make([]string, 0, len(required))
	for _, f := range video.AllFlags {
		if value, ok := required[f]; ok {
			terms = append(terms, FlagTerm(f, value))
		}
	}
	return idx.QueryAnd(candidates, terms)
}

func intersect(a, b Set) Set {
	if len(b) < len(a) {
		a, b = b, a
	}
	out := make(Set, len(a))
	for f := range a {
		if _, ok := b[f]; ok {
			out[f] = struct{}{}
		}
	}
	return out
}

// ParseID validates an id-mode query: exactly one integer term.
func ParseID(terms []string) (int, error) {
	if len(terms) != 1 {
		return 0, fmt.Errorf("%w: id search expects exactly one term, got %d", ErrInvalidQuery, len(terms))
	}
	id, err := strconv.Atoi(terms[0])
	if err != nil {
		return 0, fmt.Errorf("%w: id search term %q is not an integer", ErrInvalidQuery, terms[0])
	}
	return id, nil
}

// ContainsPhrase reports whether the space-joined terms appear in the
// space-joined terms of v.
func ContainsPhrase(v *video.Video, terms []string) bool {
	return strings.Contains(strings.Join(v.Terms, " "), strings.Join(terms, " "))
}

// Match evaluates a query against a single video without an index.
func Match(v *video.Video, terms []string, cond Cond) (bool, error) {
	switch cond {
	case CondAnd, CondExact:
		have := NewSet(v.Terms...)
		for _, term := range terms {
			if _, ok := have[term]; !ok {
				return false, nil
			}
		}
		if cond == CondExact {
			return ContainsPhrase(v, terms), nil
		}
		return true, nil
	case CondOr:
		have := NewSet(v.Terms...)
		for _, term := range terms {
			if _, ok := have[term]; ok {
				return true, nil
			}
		}
		return false, nil
	case CondID:
		id, err := ParseID(terms)
		if err != nil {
			return false, err
		}
		return v.ID == id, nil
	default:
		return false, fmt.Errorf("%w: unknown search condition %q", ErrInvalidQuery, cond)
	}
}
