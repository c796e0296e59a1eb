// Package events provides a synchronous observer bus for committed key object
// and filter changes.
package events

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/caio-sobreiro/dicomko/interfaces"
)

// Event kinds published by the selection engine.
const (
	// ReferenceChanged fires after an image reference was added to or removed
	// from a document. OldValue and NewValue hold the reference counts.
	ReferenceChanged interfaces.EventKind = "reference-changed"

	// SelectionChanged fires after a view committed a different document.
	SelectionChanged interfaces.EventKind = "selection-changed"

	// DocumentCreated fires after a new document was registered.
	DocumentCreated interfaces.EventKind = "document-created"
)

// Handler consumes an event. A returned error is logged and otherwise ignored.
type Handler func(ctx context.Context, event interfaces.Event) error

// Bus dispatches events to the handlers subscribed to their kind.
//
// Handlers run synchronously on the publishing goroutine, in subscription
// order. Errors and panics from a handler are logged and never reach the
// publisher or the remaining handlers.
//
// Example usage:
//
//	bus := events.NewBus()
//	bus.Subscribe(events.ReferenceChanged, func(ctx context.Context, e interfaces.Event) error {
//		return view.Refresh(ctx)
//	})
type Bus struct {
	mu       sync.RWMutex
	handlers map[interfaces.EventKind][]Handler
	all      []Handler
	logger   *slog.Logger
}

// Option configures a Bus
type Option func(*Bus)

// WithLogger sets the logger used to report failing handlers
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bus) {
		b.logger = logger
	}
}

// NewBus creates an empty bus
func NewBus(opts ...Option) *Bus {
	b := &Bus{
		handlers: make(map[interfaces.EventKind][]Handler),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Bus) log() *slog.Logger {
	if b.logger != nil {
		return b.logger
	}
	return slog.Default()
}

// Subscribe registers handler for events of kind.
func (b *Bus) Subscribe(kind interfaces.EventKind, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[kind] = append(b.handlers[kind], handler)
}

// SubscribeAll registers handler for every event kind.
func (b *Bus) SubscribeAll(handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.all = append(b.all, handler)
}

// HasSubscribers returns true if at least one handler would receive kind.
func (b *Bus) HasSubscribers(kind interfaces.EventKind) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers[kind]) > 0 || len(b.all) > 0
}

// Notify implements interfaces.Notifier.
func (b *Bus) Notify(ctx context.Context, event interfaces.Event) {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.handlers[event.Kind])+len(b.all))
	handlers = append(handlers, b.handlers[event.Kind]...)
	handlers = append(handlers, b.all...)
	b.mu.RUnlock()

	if len(handlers) == 0 {
		b.log().DebugContext(ctx, "No subscribers for event",
			"kind", event.Kind,
			"series_uid", event.SeriesUID)
		return
	}

	for i, handler := range handlers {
		if err := b.dispatch(ctx, handler, event); err != nil {
			b.log().WarnContext(ctx, "Event handler failed",
				"kind", event.Kind,
				"series_uid", event.SeriesUID,
				"handler", i,
				"error", err)
		}
	}
}

func (b *Bus) dispatch(ctx context.Context, handler Handler, event interfaces.Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return handler(ctx, event)
}
