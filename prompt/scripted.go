package prompt

import (
	"context"
	"log/slog"
	"sync"

	koerrors "github.com/caio-sobreiro/dicomko/errors"
	"github.com/caio-sobreiro/dicomko/interfaces"
)

// Scripted answers prompts from preset queues, for non-interactive runs.
// An exhausted queue answers with ErrCancelled, except that Text falls back
// to the offered default when AcceptDefaults is set.
type Scripted struct {
	mu             sync.Mutex
	choices        []int
	texts          []string
	AcceptDefaults bool
	Logger         *slog.Logger
}

// NewScripted returns a prompter that answers Choose with choices in order
// and Text with texts in order.
func NewScripted(choices []int, texts []string) *Scripted {
	return &Scripted{choices: choices, texts: texts}
}

func (s *Scripted) log() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

func (s *Scripted) Choose(ctx context.Context, message, title string, options []string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.choices) == 0 {
		return -1, koerrors.ErrCancelled
	}
	choice := s.choices[0]
	s.choices = s.choices[1:]
	if choice < 0 || choice >= len(options) {
		return -1, koerrors.ErrCancelled
	}
	s.log().InfoContext(ctx, "Answered dialog",
		"title", title,
		"message", message,
		"answer", options[choice])
	return choice, nil
}

func (s *Scripted) Text(ctx context.Context, message, title, defaultValue string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.texts) == 0 {
		if s.AcceptDefaults {
			return defaultValue, nil
		}
		return "", koerrors.ErrCancelled
	}
	text := s.texts[0]
	s.texts = s.texts[1:]
	s.log().DebugContext(ctx, "Answered text dialog", "title", title, "answer", text)
	return text, nil
}

var _ interfaces.Prompter = (*Scripted)(nil)
