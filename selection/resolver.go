package selection

import (
	"context"
	"log/slog"

	koerrors "github.com/caio-sobreiro/dicomko/errors"
	"github.com/caio-sobreiro/dicomko/events"
	"github.com/caio-sobreiro/dicomko/interfaces"
	"github.com/caio-sobreiro/dicomko/keyobject"
	"github.com/caio-sobreiro/dicomko/series"
)

// Resolver decides which document receives a reference to the image shown
// in a view, asking the user where the answer is ambiguous.
//
// Resolution registers the documents it creates but never changes the
// reference set of an existing document.
type Resolver struct {
	registry *keyobject.Registry
	builder  *keyobject.Builder
	prompter interfaces.Prompter
	notifier interfaces.Notifier
	title    string
	logger   *slog.Logger
}

// NewResolver creates a resolver
func NewResolver(registry *keyobject.Registry, builder *keyobject.Builder, prompter interfaces.Prompter, opts ...Option) *Resolver {
	o := newOptions(opts)
	return &Resolver{
		registry: registry,
		builder:  builder,
		prompter: prompter,
		notifier: o.notifier,
		title:    o.title,
		logger:   o.logger,
	}
}

// Resolve returns the document that should receive a reference to img.
//
// Returns ErrNoValidTarget without an image or series, ErrCancelled when
// the user dismisses a prompt, and an *InvariantError if a document taken
// as valid is not a valid target for img.
func (r *Resolver) Resolve(ctx context.Context, img *series.Image, s *series.Series, selected *keyobject.Document) (*keyobject.Document, error) {
	if img == nil || s == nil {
		return nil, koerrors.ErrNoValidTarget
	}

	in := Inputs{Selected: selected != nil}
	var found *keyobject.Document
	if selected == nil {
		var err error
		found, err = r.registry.FindValid(ctx, s.UID, img)
		if err != nil {
			return nil, err
		}
		in.Found = found != nil
	} else {
		in.Editable = selected.Editable()
		in.Valid = selected.ValidFor(img)
	}

	outcome := Decide(in)
	action := outcome.Action
	if outcome.Decision != NoDecision {
		var err error
		action, err = r.ask(ctx, outcome.Decision)
		if err != nil {
			return nil, err
		}
	}

	r.logger.DebugContext(ctx, "Resolved key object action",
		"series_uid", s.UID,
		"sop_instance_uid", img.SOPInstanceUID,
		"decision", outcome.Decision.String(),
		"action", action.String())

	switch action {
	case ActionReuseSelected:
		return checkValid(selected, img)
	case ActionUseSelected:
		return selected, nil
	case ActionUseFound:
		return checkValid(found, img)
	case ActionCreateFromCopy:
		doc, err := r.builder.BuildCopy(ctx, selected)
		if err != nil {
			return nil, err
		}
		return r.register(ctx, s, doc)
	default:
		doc, err := r.builder.Build(ctx, img)
		if err != nil {
			return nil, err
		}
		return r.register(ctx, s, doc)
	}
}

// register adds a newly built document to the registry. The registry may
// hand back an equivalent document it already holds.
func (r *Resolver) register(ctx context.Context, s *series.Series, doc *keyobject.Document) (*keyobject.Document, error) {
	registered, err := r.registry.Register(ctx, s.UID, doc)
	if err != nil {
		return nil, err
	}
	if registered == doc && r.notifier != nil {
		r.notifier.Notify(ctx, interfaces.Event{
			Kind:      events.DocumentCreated,
			SeriesUID: s.UID,
			Source:    doc,
			NewValue:  doc.UID(),
		})
	}
	return registered, nil
}

// ask presents decision point d. Any answer other than one of its options,
// including a failed prompt, is a cancellation.
func (r *Resolver) ask(ctx context.Context, d DecisionPoint) (Action, error) {
	p := prompts[d]
	index, err := r.prompter.Choose(ctx, p.message, r.title, d.Labels())
	if err != nil {
		if koerrors.IsCancelled(err) {
			return 0, err
		}
		r.logger.WarnContext(ctx, "Decision prompt failed", "decision", d.String(), "error", err)
		return 0, koerrors.NewPromptError(r.title, err)
	}
	if index < 0 || index >= len(p.choices) {
		return 0, koerrors.ErrCancelled
	}
	return p.choices[index].action, nil
}

func checkValid(doc *keyobject.Document, img *series.Image) (*keyobject.Document, error) {
	if doc == nil || !doc.ValidFor(img) {
		uid := ""
		if doc != nil {
			uid = doc.UID()
		}
		return nil, koerrors.NewInvariantError(uid, img.SOPInstanceUID, img.StudyInstanceUID,
			"document taken as valid target is not editable or references another study")
	}
	return doc, nil
}
