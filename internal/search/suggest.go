package search

import (
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/mpcatalog/mpcatalog/internal/catalog"
)

// tagSource adapts a tag list to fuzzy.Source.
type tagSource []string

func (s tagSource) String(i int) string { return catalog.Fold(s[i]) }
func (s tagSource) Len() int            { return len(s) }

// SuggestTags ranks the recommended tags by fuzzy similarity to text and
// returns at most limit of them, best first. A limit of zero or less returns
// every match.
func SuggestTags(text string, recommended []string, limit int) []string {
	pattern := catalog.Fold(strings.TrimSpace(text))
	if pattern == "" || len(recommended) == 0 {
		return nil
	}

	matches := fuzzy.FindFrom(pattern, tagSource(recommended))
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}

	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = recommended[m.Index]
	}
	return out
}
