package events

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/caio-sobreiro/dicomko/interfaces"
)

func TestBus_NotifyDispatchesByKind(t *testing.T) {
	bus := NewBus()

	var got []string
	bus.Subscribe(ReferenceChanged, func(ctx context.Context, e interfaces.Event) error {
		got = append(got, "reference:"+e.SeriesUID)
		return nil
	})
	bus.Subscribe(SelectionChanged, func(ctx context.Context, e interfaces.Event) error {
		got = append(got, "selection:"+e.SeriesUID)
		return nil
	})
	bus.SubscribeAll(func(ctx context.Context, e interfaces.Event) error {
		got = append(got, "all:"+string(e.Kind))
		return nil
	})

	bus.Notify(context.Background(), interfaces.Event{Kind: ReferenceChanged, SeriesUID: "1.2"})

	want := []string{"reference:1.2", "all:reference-changed"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("dispatched = %v, want %v", got, want)
	}
}

func TestBus_HandlerFailuresAreIsolated(t *testing.T) {
	tests := []struct {
		name    string
		handler Handler
		wantLog string
	}{
		{
			name: "error",
			handler: func(ctx context.Context, e interfaces.Event) error {
				return errors.New("view closed")
			},
			wantLog: "view closed",
		},
		{
			name: "panic",
			handler: func(ctx context.Context, e interfaces.Event) error {
				panic("boom")
			},
			wantLog: "handler panicked: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			bus := NewBus(WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))

			called := false
			bus.Subscribe(DocumentCreated, tt.handler)
			bus.Subscribe(DocumentCreated, func(ctx context.Context, e interfaces.Event) error {
				called = true
				return nil
			})

			bus.Notify(context.Background(), interfaces.Event{Kind: DocumentCreated})

			if !called {
				t.Error("handler after the failing one was not called")
			}
			if !strings.Contains(buf.String(), tt.wantLog) {
				t.Errorf("log = %q, want it to contain %q", buf.String(), tt.wantLog)
			}
		})
	}
}

func TestBus_HasSubscribers(t *testing.T) {
	bus := NewBus()
	if bus.HasSubscribers(ReferenceChanged) {
		t.Error("empty bus reports subscribers")
	}

	bus.Subscribe(ReferenceChanged, func(ctx context.Context, e interfaces.Event) error { return nil })
	if !bus.HasSubscribers(ReferenceChanged) {
		t.Error("HasSubscribers(ReferenceChanged) = false after Subscribe")
	}
	if bus.HasSubscribers(SelectionChanged) {
		t.Error("HasSubscribers(SelectionChanged) = true without subscription")
	}

	// Notify with no subscribers must not panic
	bus.Notify(context.Background(), interfaces.Event{Kind: SelectionChanged})
}

func TestBus_ImplementsNotifier(t *testing.T) {
	var _ interfaces.Notifier = NewBus()
}
