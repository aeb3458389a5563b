// Package prompt provides interactive terminal prompts built on charmbracelet/huh.
package prompt

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
)

// Sentinel errors for prompt operations.
var (
	ErrCanceled  = errors.New("canceled by user")
	ErrNoOptions = errors.New("no options provided")
	ErrEmpty     = errors.New("value must not be empty")
)

// Prompter abstracts user interaction so commands can be tested without a
// terminal.
//
//go:generate go run github.com/matryer/moq@latest -pkg mocks -out mocks/prompter.go . Prompter
type Prompter interface {
	// Print writes a line to the user.
	Print(message string)

	// Confirm asks a yes/no question.
	Confirm(title, description string) (bool, error)

	// Secret reads a value without echo. Empty input is rejected.
	Secret(title string) (string, error)

	// Choice asks the user to pick one option and returns its 0-based index.
	Choice(title string, options []string) (int, error)
}

// HuhPrompter implements Prompter with huh forms.
type HuhPrompter struct {
	out        io.Writer
	accessible bool
}

// New creates a HuhPrompter writing to out. A nil out means os.Stdout.
// Accessible mode replaces the interactive widgets with plain line prompts,
// which is what non-terminal input needs.
func New(out io.Writer, accessible bool) *HuhPrompter {
	if out == nil {
		out = os.Stdout
	}
	return &HuhPrompter{out: out, accessible: accessible}
}

// Print writes message followed by a newline.
func (p *HuhPrompter) Print(message string) {
	fmt.Fprintln(p.out, message)
}

// Confirm asks a yes/no question.
func (p *HuhPrompter) Confirm(title, description string) (bool, error) {
	var confirmed bool

	field := huh.NewConfirm().
		Title(title).
		Description(description).
		Affirmative("Yes").
		Negative("No").
		Value(&confirmed)

	if err := p.run(field); err != nil {
		return false, fmt.Errorf("confirm prompt: %w", err)
	}
	return confirmed, nil
}

// Secret reads a masked value.
func (p *HuhPrompter) Secret(title string) (string, error) {
	var value string

	field := huh.NewInput().
		Title(title).
		EchoMode(huh.EchoModePassword).
		Validate(notEmpty).
		Value(&value)

	if err := p.run(field); err != nil {
		return "", fmt.Errorf("secret prompt: %w", err)
	}
	return strings.TrimSpace(value), nil
}

// Choice asks the user to pick one option.
func (p *HuhPrompter) Choice(title string, options []string) (int, error) {
	if len(options) == 0 {
		return 0, ErrNoOptions
	}

	var selected int
	field := huh.NewSelect[int]().
		Title(title).
		Options(indexOptions(options)...).
		Value(&selected)

	if err := p.run(field); err != nil {
		return 0, fmt.Errorf("choice prompt: %w", err)
	}
	return selected, nil
}

func (p *HuhPrompter) run(field huh.Field) error {
	err := huh.NewForm(huh.NewGroup(field)).
		WithAccessible(p.accessible).
		WithOutput(p.out).
		Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return ErrCanceled
	}
	return err
}

// indexOptions labels each option with its display text and its index.
func indexOptions(options []string) []huh.Option[int] {
	out := make([]huh.Option[int], len(options))
	for i, opt := range options {
		out[i] = huh.NewOption(opt, i)
	}
	return out
}

func notEmpty(s string) error {
	if strings.TrimSpace(s) == "" {
		return ErrEmpty
	}
	return nil
}
