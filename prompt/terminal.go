// Package prompt implements decision dialogs for the terminal.
package prompt

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	koerrors "github.com/caio-sobreiro/dicomko/errors"
	"github.com/caio-sobreiro/dicomko/interfaces"
)

// Terminal is an interactive Prompter backed by bubbletea programs.
type Terminal struct {
	in     io.Reader
	out    io.Writer
	styles styles
	logger *slog.Logger
}

// Option configures a Terminal
type Option func(*Terminal)

// WithInput reads key presses from r instead of stdin
func WithInput(r io.Reader) Option {
	return func(t *Terminal) {
		t.in = r
	}
}

// WithOutput renders dialogs to w instead of stdout
func WithOutput(w io.Writer) Option {
	return func(t *Terminal) {
		t.out = w
	}
}

// WithLogger sets the prompt logger
func WithLogger(logger *slog.Logger) Option {
	return func(t *Terminal) {
		t.logger = logger
	}
}

// NewTerminal creates a terminal prompter
func NewTerminal(opts ...Option) *Terminal {
	t := &Terminal{styles: defaultStyles()}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Terminal) log() *slog.Logger {
	if t.logger != nil {
		return t.logger
	}
	return slog.Default()
}

func (t *Terminal) run(ctx context.Context, model tea.Model) (tea.Model, error) {
	opts := []tea.ProgramOption{tea.WithContext(ctx)}
	if t.in != nil {
		opts = append(opts, tea.WithInput(t.in))
	}
	if t.out != nil {
		opts = append(opts, tea.WithOutput(t.out))
	}
	final, err := tea.NewProgram(model, opts...).Run()
	if err != nil {
		return nil, fmt.Errorf("prompt: %w", err)
	}
	return final, nil
}

// Choose shows options and returns the index picked. Escape returns
// ErrCancelled.
func (t *Terminal) Choose(ctx context.Context, message, title string, options []string) (int, error) {
	final, err := t.run(ctx, newChooseModel(message, title, options, t.styles))
	if err != nil {
		return -1, err
	}
	m := final.(chooseModel)
	if m.canceled || m.chosen < 0 {
		t.log().DebugContext(ctx, "Choice dialog dismissed", "title", title)
		return -1, koerrors.ErrCancelled
	}
	return m.chosen, nil
}

// Text asks for one line of text prefilled with defaultValue. Escape
// returns ErrCancelled.
func (t *Terminal) Text(ctx context.Context, message, title, defaultValue string) (string, error) {
	final, err := t.run(ctx, newTextModel(message, title, defaultValue, t.styles))
	if err != nil {
		return "", err
	}
	m := final.(textModel)
	if m.canceled || !m.submitted {
		t.log().DebugContext(ctx, "Text dialog dismissed", "title", title)
		return "", koerrors.ErrCancelled
	}
	return m.input.Value(), nil
}

var _ interfaces.Prompter = (*Terminal)(nil)
