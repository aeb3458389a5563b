package catalog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewEntry(t *testing.T) {
	t.Run("normalizes tags to sorted lower case", func(t *testing.T) {
		entry := NewEntry(Fields{SystemName: "Contoso.SQL"}, []string{"b", "A", "c"})

		assert.Equal(t, []string{"a", "b", "c"}, entry.Tags())
	})

	t.Run("keeps nil tags nil", func(t *testing.T) {
		entry := NewEntry(Fields{SystemName: "Contoso.SQL"}, nil)

		assert.Nil(t, entry.Tags())
	})

	t.Run("keeps empty tags empty", func(t *testing.T) {
		entry := NewEntry(Fields{SystemName: "Contoso.SQL"}, []string{})

		assert.NotNil(t, entry.Tags())
		assert.Empty(t, entry.Tags())
	})

	t.Run("does not alias the input slice", func(t *testing.T) {
		in := []string{"Zeta", "alpha"}
		entry := NewEntry(Fields{}, in)

		in[0] = "changed"

		assert.Equal(t, []string{"alpha", "zeta"}, entry.Tags())
	})

	t.Run("returned tags are a copy", func(t *testing.T) {
		entry := NewEntry(Fields{}, []string{"sql"})

		entry.Tags()[0] = "changed"

		assert.Equal(t, []string{"sql"}, entry.Tags())
	})
}

func TestEntry_ShortDescription(t *testing.T) {
	t.Run("keeps descriptions up to 105 characters", func(t *testing.T) {
		desc := strings.Repeat("x", 105)
		entry := NewEntry(Fields{Description: desc}, nil)

		assert.Equal(t, desc, entry.ShortDescription())
	})

	t.Run("cuts longer descriptions to 100 characters", func(t *testing.T) {
		entry := NewEntry(Fields{Description: strings.Repeat("x", 106)}, nil)

		assert.Equal(t, strings.Repeat("x", 100)+"...", entry.ShortDescription())
	})
}

func TestEntry_Status(t *testing.T) {
	entry := func(version string) *Entry {
		return NewEntry(Fields{SystemName: "Contoso.SQL", Version: MustParseVersion(version)}, nil)
	}
	installed := func(version string) []InstalledPack {
		return []InstalledPack{{Name: "Contoso.SQL", Version: MustParseVersion(version)}}
	}

	t.Run("not installed", func(t *testing.T) {
		e := entry("1.0.0.0")

		assert.Equal(t, StatusNotInstalled, e.Status())
		assert.Equal(t, "Not Installed", e.InstalledVersion())
		assert.False(t, e.IsInstalled())
	})

	t.Run("installed at same version", func(t *testing.T) {
		e := entry("1.0.0.0")
		Annotate(map[string]*Entry{e.SystemName: e}, installed("1.0.0.0"), ByName)

		assert.Equal(t, StatusInstalled, e.Status())
		assert.Equal(t, "1.0.0.0", e.InstalledVersion())
	})

	t.Run("catalog version newer than installed", func(t *testing.T) {
		e := entry("1.0.1.0")
		Annotate(map[string]*Entry{e.SystemName: e}, installed("1.0.0.9"), ByName)

		assert.Equal(t, StatusUpdateAvailable, e.Status())
	})

	t.Run("installed version newer than catalog", func(t *testing.T) {
		e := entry("1.0")
		Annotate(map[string]*Entry{e.SystemName: e}, installed("2.0"), ByName)

		assert.Equal(t, StatusInstalled, e.Status())
	})
}

func TestFold(t *testing.T) {
	assert.Equal(t, "sql server", Fold("SQL Server"))
	assert.Equal(t, "", Fold(""))
}
