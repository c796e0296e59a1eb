package interfaces

import "context"

// EventKind names a committed state change.
type EventKind string

// Event describes a state change after it has been committed.
type Event struct {
	Kind      EventKind
	SeriesUID string
	// Source is the object the change happened on, usually a document.
	Source   any
	OldValue any
	NewValue any
}

// Notifier receives events for downstream consumers such as other views on
// the same series. Delivery is fire-and-forget: a failing consumer never
// rolls back the change that triggered it.
type Notifier interface {
	Notify(ctx context.Context, event Event)
}
