package spinner

import (
	"bytes"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpcatalog/mpcatalog/internal/catalog"
)

func TestStatusLine(t *testing.T) {
	tests := []struct {
		name string
		ev   catalog.Event
		want string
	}{
		{"resolving", catalog.Event{State: catalog.StateResolving}, "Locating catalog repository"},
		{"index", catalog.Event{State: catalog.StateFetchingIndex}, "Downloading catalog index"},
		{"details", catalog.Event{State: catalog.StateFetchingDetails, Count: 42}, "Downloading 42 management pack details"},
		{"tags", catalog.Event{State: catalog.StateFetchingTags}, "Downloading recommended tags"},
		{"committed", catalog.Event{State: catalog.StateCommitted, Count: 3}, ""},
		{"failed", catalog.Event{State: catalog.StateFailed}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusLine(tt.ev))
		})
	}
}

func TestSpinner_OnEvent(t *testing.T) {
	s := New(&bytes.Buffer{})

	s.OnEvent(catalog.Event{State: catalog.StateFetchingIndex})
	s.OnEvent(catalog.Event{State: catalog.StateCommitted})

	require.Len(t, s.lineCh, 1)
	assert.Equal(t, "Downloading catalog index", <-s.lineCh)
}

func TestSpinner_UpdateAfterStop(t *testing.T) {
	s := New(&bytes.Buffer{})
	s.Stop()
	s.Stop()

	for range cap(s.lineCh) + 1 {
		s.Update("late")
	}

	assert.LessOrEqual(t, len(s.lineCh), cap(s.lineCh))
}

func TestEnabled(t *testing.T) {
	assert.False(t, Enabled(&bytes.Buffer{}))
}

func TestModel(t *testing.T) {
	ch := make(chan string)
	m := newModel(ch, 20)

	next, _ := m.Update(lineMsg("Downloading catalog index"))
	view := next.(model).View()
	assert.Contains(t, view, "Downloading ca...")

	next, _ = next.Update(tea.WindowSizeMsg{Width: 80})
	assert.Contains(t, next.(model).View(), "Downloading catalog index")

	next, _ = next.Update(tea.QuitMsg{})
	assert.Empty(t, next.(model).View())
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxWidth int
		want     string
	}{
		{"fits", "short", 10, "short"},
		{"cut", "a longer status line", 10, "a longe..."},
		{"too narrow", "anything", 3, ""},
		{"multibyte", "Überwachung", 8, "Überw..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, truncate(tt.input, tt.maxWidth))
		})
	}
}
