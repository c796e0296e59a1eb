package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestInvariantError(t *testing.T) {
	err := NewInvariantError("2.25.1", "1.2.3.4", "1.2.3", "document does not reference study")

	if err.DocumentUID != "2.25.1" {
		t.Errorf("DocumentUID = %v, want 2.25.1", err.DocumentUID)
	}

	if !errors.Is(err, ErrInvariantViolation) {
		t.Error("InvariantError should unwrap to ErrInvariantViolation")
	}

	var target *InvariantError
	wrapped := fmt.Errorf("resolve: %w", err)
	if !errors.As(wrapped, &target) {
		t.Fatal("errors.As should find InvariantError through wrapping")
	}
	if target.StudyUID != "1.2.3" {
		t.Errorf("StudyUID = %v, want 1.2.3", target.StudyUID)
	}

	if err.Error() == "" {
		t.Error("Error message should not be empty")
	}
}

func TestStoreError(t *testing.T) {
	baseErr := errors.New("database is locked")
	err := NewStoreError("save references", baseErr)

	if err.Op != "save references" {
		t.Errorf("Op = %v, want save references", err.Op)
	}

	if !errors.Is(err, baseErr) {
		t.Error("StoreError should unwrap to base error")
	}

	if errors.Is(err, ErrCancelled) {
		t.Error("StoreError should not be a cancellation")
	}
}

func TestPromptError(t *testing.T) {
	baseErr := errors.New("no terminal")
	err := NewPromptError("Key Object Selection", baseErr)

	if !errors.Is(err, ErrCancelled) {
		t.Error("PromptError should unwrap to ErrCancelled")
	}
	if !errors.Is(err, baseErr) {
		t.Error("PromptError should unwrap to its cause")
	}
}

func TestIsCancelled(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"cancelled", ErrCancelled, true},
		{"wrapped cancelled", fmt.Errorf("build: %w", ErrCancelled), true},
		{"prompt failure", NewPromptError("t", errors.New("eof")), true},
		{"no target", ErrNoValidTarget, false},
		{"invariant", NewInvariantError("a", "b", "c", "d"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsCancelled(tt.err); got != tt.want {
				t.Errorf("IsCancelled() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSentinelMessages(t *testing.T) {
	sentinels := []error{
		ErrCancelled,
		ErrNoValidTarget,
		ErrInvalidSourceDocument,
		ErrEmptyFilterResult,
		ErrInvariantViolation,
		ErrNotFound,
	}
	seen := make(map[string]bool)
	for _, err := range sentinels {
		msg := err.Error()
		if seen[msg] {
			t.Errorf("duplicate sentinel message %q", msg)
		}
		seen[msg] = true
	}
}
