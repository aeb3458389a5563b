package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSuggestTags(t *testing.T) {
	recommended := []string{"SQL", "Windows", "Exchange", "sqlserver", "dns"}

	t.Run("returns fuzzy matches in published spelling", func(t *testing.T) {
		got := SuggestTags("sq", recommended, 0)

		assert.Contains(t, got, "SQL")
		assert.Contains(t, got, "sqlserver")
		assert.NotContains(t, got, "dns")
	})

	t.Run("honours the limit", func(t *testing.T) {
		got := SuggestTags("s", recommended, 2)

		assert.Len(t, got, 2)
	})

	t.Run("ranks closer matches first", func(t *testing.T) {
		got := SuggestTags("win", recommended, 1)

		assert.Equal(t, []string{"Windows"}, got)
	})

	t.Run("empty text suggests nothing", func(t *testing.T) {
		assert.Nil(t, SuggestTags("  ", recommended, 0))
	})

	t.Run("no recommended tags suggests nothing", func(t *testing.T) {
		assert.Nil(t, SuggestTags("sql", nil, 0))
	})

	t.Run("no match returns empty", func(t *testing.T) {
		assert.Empty(t, SuggestTags("zzz", recommended, 0))
	})
}
