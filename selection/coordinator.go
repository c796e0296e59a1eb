package selection

import (
	"context"
	"errors"
	"log/slog"

	koerrors "github.com/caio-sobreiro/dicomko/errors"
	"github.com/caio-sobreiro/dicomko/events"
	"github.com/caio-sobreiro/dicomko/interfaces"
	"github.com/caio-sobreiro/dicomko/keyobject"
	"github.com/caio-sobreiro/dicomko/series"
)

// Coordinator turns resolved documents into reference changes and filter
// updates on views.
//
// Operations on views of the same series are serialized and prompts block
// the series lane until they are answered. Notifier handlers run inside the
// lane and must not call back into the coordinator for the same series.
type Coordinator struct {
	resolver *Resolver
	registry *keyobject.Registry
	notifier interfaces.Notifier
	lanes    *lanes
	logger   *slog.Logger
}

// NewCoordinator creates a coordinator
func NewCoordinator(resolver *Resolver, registry *keyobject.Registry, opts ...Option) *Coordinator {
	o := newOptions(opts)
	return &Coordinator{
		resolver: resolver,
		registry: registry,
		notifier: o.notifier,
		lanes:    newLanes(),
		logger:   o.logger,
	}
}

func (c *Coordinator) notify(ctx context.Context, event interfaces.Event) {
	if c.notifier != nil {
		c.notifier.Notify(ctx, event)
	}
}

// SetKeyObjectReference records (selected) or removes the reference to the
// image shown in v and reports whether anything changed.
//
// When resolution yields a document other than the selected one, that
// document becomes the selection and no reference is touched: the caller
// toggles again once the selection is established. Cancellations, missing
// targets and store failures report false without an error; only invariant
// violations are returned as errors.
func (c *Coordinator) SetKeyObjectReference(ctx context.Context, selected bool, v *View) (bool, error) {
	if v == nil || v.Series() == nil || v.Image() == nil {
		c.logger.DebugContext(ctx, "Reference toggle skipped", "error", koerrors.ErrNoValidTarget)
		return false, nil
	}
	s := v.Series()

	release, err := c.lanes.acquire(ctx, s.UID)
	if err != nil {
		c.logger.DebugContext(ctx, "Reference toggle abandoned", "series_uid", s.UID, "error", err)
		return false, nil
	}
	defer release()

	img := v.Image()
	current := v.State().Selected

	resolved, err := c.resolver.Resolve(ctx, img, s, current)
	switch {
	case err == nil:
	case koerrors.IsCancelled(err):
		c.logger.DebugContext(ctx, "Key object resolution cancelled", "series_uid", s.UID)
		return false, nil
	case errors.Is(err, koerrors.ErrInvariantViolation):
		c.logger.ErrorContext(ctx, "Key object resolution broke target invariant",
			"series_uid", s.UID,
			"error", err)
		return false, err
	default:
		c.logger.WarnContext(ctx, "Key object resolution failed",
			"series_uid", s.UID,
			"error", err)
		return false, nil
	}

	if resolved != current {
		c.updateFilter(ctx, v, filterRequest{selection: resolved, hasSelection: true})
		return true, nil
	}

	if !resolved.SetReference(img, selected) {
		return false, nil
	}
	if err := c.registry.SaveReferences(ctx, resolved); err != nil {
		resolved.SetReference(img, !selected)
		c.logger.WarnContext(ctx, "Failed to persist reference change",
			"series_uid", s.UID,
			"ko_uid", resolved.UID(),
			"sop_instance_uid", img.SOPInstanceUID,
			"error", err)
		return false, nil
	}

	c.logger.InfoContext(ctx, "Key object reference changed",
		"series_uid", s.UID,
		"ko_uid", resolved.UID(),
		"sop_instance_uid", img.SOPInstanceUID,
		"selected", selected)

	oldCount, newCount := resolved.Len()-1, resolved.Len()
	if !selected {
		oldCount, newCount = resolved.Len()+1, resolved.Len()
	}
	c.notify(ctx, interfaces.Event{
		Kind:      events.ReferenceChanged,
		SeriesUID: s.UID,
		Source:    resolved,
		OldValue:  oldCount,
		NewValue:  newCount,
	})

	// A removal can hide the shown image behind an active filter
	if st := v.State(); !selected && st.Filter != nil {
		c.updateFilter(ctx, v, filterRequest{})
	}
	return true, nil
}

type filterRequest struct {
	selection    *keyobject.Document
	hasSelection bool
	onlyNewest   bool
	enable       *bool
}

// FilterOption adjusts an UpdateFilter call
type FilterOption func(*filterRequest)

// WithSelection commits doc as the selected document; nil selects none.
// Without it the current selection is kept.
func WithSelection(doc *keyobject.Document) FilterOption {
	return func(r *filterRequest) {
		r.selection = doc
		r.hasSelection = true
	}
}

// OnlyNewest ignores a WithSelection document strictly older than the one
// currently selected.
func OnlyNewest() FilterOption {
	return func(r *filterRequest) {
		r.onlyNewest = true
	}
}

// WithFilter turns filtering on or off. Without it the view keeps its
// current setting, off by default.
func WithFilter(enabled bool) FilterOption {
	return func(r *filterRequest) {
		r.enable = &enabled
	}
}

// UpdateFilter applies a selection and filter change to v, moves the view to
// the nearest visible image when the shown one gets hidden, and returns the
// active index (-1 when the view shows nothing).
func (c *Coordinator) UpdateFilter(ctx context.Context, v *View, opts ...FilterOption) int {
	if v == nil || v.Series() == nil {
		return -1
	}
	var req filterRequest
	for _, opt := range opts {
		opt(&req)
	}

	release, err := c.lanes.acquire(ctx, v.Series().UID)
	if err != nil {
		c.logger.DebugContext(ctx, "Filter update abandoned", "series_uid", v.Series().UID, "error", err)
		return v.State().Index
	}
	defer release()

	return c.updateFilter(ctx, v, req)
}

func (c *Coordinator) updateFilter(ctx context.Context, v *View, req filterRequest) int {
	s := v.Series()
	st := v.State()
	previous := st.Selected

	if req.hasSelection {
		if req.onlyNewest && previous != nil && req.selection != nil && previous.NewerThan(req.selection) {
			c.logger.DebugContext(ctx, "Ignoring stale key object selection",
				"series_uid", s.UID,
				"current_ko_uid", previous.UID(),
				"stale_ko_uid", req.selection.UID())
			return st.Index
		}
		st.Selected = req.selection
	}

	enabled := st.FilterSet && st.FilterEnabled
	if req.enable != nil {
		enabled = *req.enable
		st.FilterEnabled, st.FilterSet = enabled, true
	}

	st.Filter = nil
	if enabled && st.Selected != nil {
		st.Filter = st.Selected.SOPInstanceUIDFilter()
	}

	img := v.Image()
	if img == nil {
		st.Index = -1
		v.commit(st, nil)
		c.present(ctx, v, st, nil)
		return -1
	}

	index := s.IndexOf(img, st.Filter, v.order)
	if enabled && st.Selected != nil && index < 0 {
		if s.Size(st.Filter) > 0 {
			index = c.nearest(v, img, st.Filter)
		} else {
			c.logger.InfoContext(ctx, "Disabling key object filter",
				"series_uid", s.UID,
				"ko_uid", st.Selected.UID(),
				"reason", koerrors.ErrEmptyFilterResult)
			st.Filter = nil
			st.FilterEnabled, st.FilterSet = false, true
			index = s.IndexOf(img, nil, v.order)
		}
	}
	st.Index = index

	shown := img
	if !v.presenter.IsFocused() {
		if next := s.At(index, st.Filter, v.order); next != nil {
			shown = next
		}
	}
	v.commit(st, shown)
	c.present(ctx, v, st, shown)

	if st.Selected != previous {
		c.notify(ctx, interfaces.Event{
			Kind:      events.SelectionChanged,
			SeriesUID: s.UID,
			Source:    v,
			OldValue:  previous,
			NewValue:  st.Selected,
		})
	}
	return index
}

// nearest finds the visible image closest to img. Without an order key for
// img the first visible image is used.
func (c *Coordinator) nearest(v *View, img *series.Image, filter series.Predicate) int {
	order := v.order
	if order == nil {
		order = series.BySliceLocation
	}
	location, ok := order.Key(img)
	if !ok {
		return 0
	}
	index := v.series.NearestIndex(location+v.stackOffset, v.tileOffset, filter, order)
	if index < 0 {
		return 0
	}
	return index
}

// present pushes st to the presenter. A focused view only gets new scroll
// bounds; the user may be navigating it.
func (c *Coordinator) present(ctx context.Context, v *View, st State, shown *series.Image) {
	enabled := st.Filter != nil
	if v.presenter.IsFocused() {
		v.presenter.SetScrollBounds(1, v.series.Size(st.Filter), st.Index+1)
	} else if shown != nil {
		v.presenter.ShowImage(shown)
	}
	v.presenter.RefreshFilterIndicator(enabled)

	c.logger.DebugContext(ctx, "Filter updated",
		"series_uid", v.series.UID,
		"filter_enabled", enabled,
		"index", st.Index)
}

// CurrentSelection returns the document selected in v, or nil
func (c *Coordinator) CurrentSelection(v *View) *keyobject.Document {
	if v == nil {
		return nil
	}
	return v.State().Selected
}

// CurrentFilterState returns the filter flag of v and whether it was ever set
func (c *Coordinator) CurrentFilterState(v *View) (enabled, set bool) {
	if v == nil {
		return false, false
	}
	st := v.State()
	return st.FilterEnabled, st.FilterSet
}

// Choice is an entry of the selection list of a view
type Choice struct {
	Label    string
	Document *keyobject.Document
}

// NoneLabel labels the entry selecting no document
const NoneLabel = "None"

// SelectionChoices lists the documents v can select: a "None" entry
// followed by every document registered for its series.
func (c *Coordinator) SelectionChoices(ctx context.Context, v *View) ([]Choice, error) {
	choices := []Choice{{Label: NoneLabel}}
	if v == nil || v.Series() == nil {
		return choices, nil
	}
	docs, err := c.registry.ForSeries(ctx, v.Series().UID)
	if err != nil {
		return choices, err
	}
	for _, doc := range docs {
		choices = append(choices, Choice{Label: doc.String(), Document: doc})
	}
	return choices, nil
}
