// Package errors provides the error taxonomy of key object selection and
// series filtering.
package errors

import (
	"errors"
	"fmt"
)

// Common errors
var (
	// ErrCancelled is returned when a decision or text prompt was dismissed.
	// Callers treat it as a no-op, never as a fault.
	ErrCancelled = errors.New("ko: cancelled by user")

	// ErrNoValidTarget is returned when an operation needs a current image or
	// series and the view has none.
	ErrNoValidTarget = errors.New("ko: no current image or series")

	// ErrInvalidSourceDocument is returned when a new document cannot be built
	// because the source carries no study attributes.
	ErrInvalidSourceDocument = errors.New("ko: source document has no study attributes")

	// ErrEmptyFilterResult marks a filter that admits no image. It is logged
	// and recovered locally by disabling the filter.
	ErrEmptyFilterResult = errors.New("ko: filter admits no image")

	// ErrInvariantViolation is the target of every InvariantError.
	ErrInvariantViolation = errors.New("ko: invariant violation")

	// ErrNotFound is returned by stores when a document is unknown.
	ErrNotFound = errors.New("ko: document not found")
)

// InvariantError reports a resolved document that is not a valid target for
// the image it was resolved for. It indicates a programming defect.
type InvariantError struct {
	DocumentUID string
	ImageUID    string
	StudyUID    string
	Msg         string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("invariant violated: %s (document: %s, image: %s, study: %s)",
		e.Msg, e.DocumentUID, e.ImageUID, e.StudyUID)
}

func (e *InvariantError) Unwrap() error {
	return ErrInvariantViolation
}

// NewInvariantError creates a new invariant error
func NewInvariantError(documentUID, imageUID, studyUID, msg string) *InvariantError {
	return &InvariantError{
		DocumentUID: documentUID,
		ImageUID:    imageUID,
		StudyUID:    studyUID,
		Msg:         msg,
	}
}

// StoreError represents a failure of the document store
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store error during %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new store error
func NewStoreError(op string, err error) *StoreError {
	return &StoreError{
		Op:  op,
		Err: err,
	}
}

// PromptError wraps a failure of the decision prompt capability. It unwraps
// to ErrCancelled as well as to the cause, since a failed prompt ends
// resolution the same way a dismissed one does.
type PromptError struct {
	Title string
	Err   error
}

func (e *PromptError) Error() string {
	return fmt.Sprintf("prompt %q failed: %v", e.Title, e.Err)
}

func (e *PromptError) Unwrap() []error {
	return []error{ErrCancelled, e.Err}
}

// NewPromptError creates a new prompt error
func NewPromptError(title string, err error) *PromptError {
	return &PromptError{
		Title: title,
		Err:   err,
	}
}

// IsCancelled reports whether err ends an operation as a benign no-op.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled)
}
