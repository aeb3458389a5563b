// Package search decides which catalog entries match a user's search text.
package search

import (
	"slices"
	"strings"

	"github.com/mpcatalog/mpcatalog/internal/catalog"
)

// Matches reports whether entry matches the search text. The match is
// case-insensitive and succeeds when any of these holds:
//
//   - the author contains the text
//   - the display name or the system name contains the text
//   - the text names tags the entry carries exactly: a comma separated
//     text requires every trimmed term to be a tag, otherwise the trimmed
//     text must itself be a tag
//
// Empty text matches every entry.
func Matches(entry *catalog.Entry, text string) bool {
	if entry == nil {
		return false
	}
	text = catalog.Fold(text)

	return matchesAuthor(entry, text) ||
		matchesName(entry, text) ||
		matchesTags(entry.Tags(), text)
}

// For returns a predicate matching entries against text, for use as
// catalog.ListFilter.Match.
func For(text string) func(*catalog.Entry) bool {
	return func(entry *catalog.Entry) bool {
		return Matches(entry, text)
	}
}

func matchesAuthor(entry *catalog.Entry, text string) bool {
	return strings.Contains(catalog.Fold(entry.Author), text)
}

func matchesName(entry *catalog.Entry, text string) bool {
	return strings.Contains(catalog.Fold(entry.DisplayName), text) ||
		strings.Contains(catalog.Fold(entry.SystemName), text)
}

// matchesTags expects text and tags already folded.
func matchesTags(tags []string, text string) bool {
	if tags == nil {
		return false
	}

	if !strings.Contains(text, ",") {
		return slices.Contains(tags, strings.TrimSpace(text))
	}

	for _, term := range strings.Split(text, ",") {
		if !slices.Contains(tags, strings.TrimSpace(term)) {
			return false
		}
	}
	return true
}
