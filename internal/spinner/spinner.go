// Package spinner renders populate progress as a single spinner line on the
// terminal. The line is replaced in place as the catalog moves through its
// states and is cleared when the spinner stops.
package spinner

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/mpcatalog/mpcatalog/internal/catalog"
)

// Spinner displays a spinner next to the latest status line.
// It implements catalog.Observer so it can be subscribed to a Store.
type Spinner struct {
	lineCh chan string
	done   chan struct{}
	stop   sync.Once
	output io.Writer
	width  int
}

// New creates a Spinner that writes to output. A nil output means os.Stderr.
func New(output io.Writer) *Spinner {
	if output == nil {
		output = os.Stderr
	}

	return &Spinner{
		lineCh: make(chan string, 16),
		done:   make(chan struct{}),
		output: output,
		width:  terminalWidth(output),
	}
}

// Enabled reports whether output is an interactive terminal.
func Enabled(output io.Writer) bool {
	f, ok := output.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Start runs the spinner until Stop is called. It blocks, so callers run it
// in a goroutine.
func (s *Spinner) Start() error {
	program := tea.NewProgram(newModel(s.lineCh, s.width),
		tea.WithOutput(s.output),
		tea.WithInput(nil),
		tea.WithoutSignalHandler(),
	)

	go func() {
		<-s.done
		program.Quit()
	}()

	_, err := program.Run()
	return err
}

// Stop quits the spinner and clears its line. It may be called before Start
// and more than once.
func (s *Spinner) Stop() {
	s.stop.Do(func() { close(s.done) })
}

// Update replaces the status line. Lines sent after Stop are dropped.
func (s *Spinner) Update(line string) {
	select {
	case s.lineCh <- line:
	case <-s.done:
	default:
		// Display is behind; drop the line.
	}
}

// OnEvent maps a catalog state transition to a status line.
func (s *Spinner) OnEvent(ev catalog.Event) {
	if line := StatusLine(ev); line != "" {
		s.Update(line)
	}
}

// StatusLine describes a catalog event for display. Terminal states return
// an empty line because the spinner is about to stop.
func StatusLine(ev catalog.Event) string {
	switch ev.State {
	case catalog.StateResolving:
		return "Locating catalog repository"
	case catalog.StateFetchingIndex:
		return "Downloading catalog index"
	case catalog.StateFetchingDetails:
		return fmt.Sprintf("Downloading %d management pack details", ev.Count)
	case catalog.StateFetchingTags:
		return "Downloading recommended tags"
	default:
		return ""
	}
}

func terminalWidth(output io.Writer) int {
	if f, ok := output.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
			return w
		}
	}
	return 80
}

// model is the bubbletea model for the spinner.
type model struct {
	spinner    spinner.Model
	statusLine string
	width      int
	lineCh     <-chan string
	quitting   bool
}

// lineMsg carries a new status line.
type lineMsg string

func newModel(lineCh <-chan string, width int) model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return model{
		spinner: s,
		width:   width,
		lineCh:  lineCh,
	}
}

//nolint:gocritic // hugeParam: tea.Model interface requires value receiver
func (m model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitForLine(m.lineCh))
}

//nolint:gocritic // hugeParam: tea.Model interface requires value receiver
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width

	case lineMsg:
		m.statusLine = string(msg)
		return m, waitForLine(m.lineCh)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.QuitMsg:
		m.quitting = true
	}

	return m, nil
}

//nolint:gocritic // hugeParam: tea.Model interface requires value receiver
func (m model) View() string {
	if m.quitting {
		return ""
	}

	// Spinner glyph plus one space.
	maxLineWidth := max(m.width-3, 10)
	return m.spinner.View() + " " + truncate(m.statusLine, maxLineWidth)
}

func waitForLine(lineCh <-chan string) tea.Cmd {
	return func() tea.Msg {
		return lineMsg(<-lineCh)
	}
}

// truncate shortens s to maxWidth runes, ending in "..." when cut.
func truncate(s string, maxWidth int) string {
	if maxWidth <= 3 {
		return ""
	}
	r := []rune(s)
	if len(r) <= maxWidth {
		return s
	}
	return string(r[:maxWidth-3]) + "..."
}
