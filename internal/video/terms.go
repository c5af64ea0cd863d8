package video

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// normalize strips diacritics and case-folds s.
func normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return cases.Fold().String(out)
}

// Tokenize splits text into normalized search terms, in order of appearance.
// Terms are maximal runs of letters and digits.
func Tokenize(text string) []string {
	return strings.FieldsFunc(normalize(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

// ComputeTerms derives the free-text terms of v from its filename, title
// and string property values.
func ComputeTerms(v *Video) []string {
	var b strings.Builder
	b.WriteString(v.Filename)
	if v.Title != "" {
		b.WriteByte(' ')
		b.WriteString(v.Title)
	}
	for _, name := range sortedPropertyNames(v) {
		for _, value := range v.Properties[name] {
			if s, ok := value.(string); ok {
				b.WriteByte(' ')
				b.WriteString(s)
			}
		}
	}
	return Tokenize(b.String())
}

func sortedPropertyNames(v *Video) []string {
	names := make([]string, 0, len(v.Properties))
	for name := range v.Properties {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
