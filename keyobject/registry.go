package keyobject

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/agnivade/levenshtein"

	koerrors "github.com/caio-sobreiro/dicomko/errors"
	"github.com/caio-sobreiro/dicomko/series"
)

// Store persists documents and their reference sets.
type Store interface {
	Register(ctx context.Context, doc *Document) error
	ListForSeries(ctx context.Context, seriesUID string) ([]*Document, error)
	// UnderlyingDocument returns the identity of the persisted document
	// behind doc, used to deduplicate registrations.
	UnderlyingDocument(doc *Document) string
	SaveReferences(ctx context.Context, doc *Document) error
}

// Registry holds the documents known for each series.
//
// Documents of a series are loaded from the Store on first access and kept
// in registration order, which is the order candidates are searched in.
type Registry struct {
	mu       sync.Mutex
	store    Store
	clock    Clock
	bySeries map[string][]*Document
	loaded   map[string]bool
	logger   *slog.Logger
}

// Option configures a Registry
type Option func(*Registry)

// WithStore persists registrations and reference changes through store
func WithStore(store Store) Option {
	return func(r *Registry) {
		r.store = store
	}
}

// WithClock sets the clock observed when stored documents are loaded
func WithClock(clock Clock) Option {
	return func(r *Registry) {
		r.clock = clock
	}
}

// WithLogger sets the registry logger
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// NewRegistry creates an empty registry
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		bySeries: make(map[string][]*Document),
		loaded:   make(map[string]bool),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.clock == nil {
		r.clock = NewCounterClock()
	}
	return r
}

func (r *Registry) log() *slog.Logger {
	if r.logger != nil {
		return r.logger
	}
	return slog.Default()
}

// Clock returns the clock documents are versioned with
func (r *Registry) Clock() Clock {
	return r.clock
}

// ForSeries returns the documents registered against seriesUID in
// registration order.
func (r *Registry) ForSeries(ctx context.Context, seriesUID string) ([]*Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.loadLocked(ctx, seriesUID); err != nil {
		return nil, err
	}
	docs := r.bySeries[seriesUID]
	out := make([]*Document, len(docs))
	copy(out, docs)
	return out, nil
}

func (r *Registry) loadLocked(ctx context.Context, seriesUID string) error {
	if r.store == nil || r.loaded[seriesUID] {
		return nil
	}

	stored, err := r.store.ListForSeries(ctx, seriesUID)
	if err != nil {
		return koerrors.NewStoreError("list documents", err)
	}
	for _, doc := range stored {
		r.clock.Observe(doc.Version())
		doc.setSeriesUID(seriesUID)
		if r.indexLocked(seriesUID, r.identity(doc)) < 0 {
			r.bySeries[seriesUID] = append(r.bySeries[seriesUID], doc)
		}
	}
	r.loaded[seriesUID] = true

	r.log().DebugContext(ctx, "Loaded key object documents",
		"series_uid", seriesUID,
		"document_count", len(stored))
	return nil
}

func (r *Registry) identity(doc *Document) string {
	if r.store != nil {
		if id := r.store.UnderlyingDocument(doc); id != "" {
			return id
		}
	}
	return doc.UID()
}

func (r *Registry) indexLocked(seriesUID, identity string) int {
	for i, doc := range r.bySeries[seriesUID] {
		if r.identity(doc) == identity {
			return i
		}
	}
	return -1
}

// Register adds doc to the documents of seriesUID and persists it.
//
// If a document with the same underlying identity is already registered,
// that document is returned instead and nothing is stored.
func (r *Registry) Register(ctx context.Context, seriesUID string, doc *Document) (*Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.loadLocked(ctx, seriesUID); err != nil {
		return nil, err
	}

	identity := r.identity(doc)
	if i := r.indexLocked(seriesUID, identity); i >= 0 {
		r.log().DebugContext(ctx, "Document already registered",
			"series_uid", seriesUID,
			"ko_uid", identity)
		return r.bySeries[seriesUID][i], nil
	}

	doc.setSeriesUID(seriesUID)
	if r.store != nil {
		if err := r.store.Register(ctx, doc); err != nil {
			return nil, koerrors.NewStoreError("register document", err)
		}
	}
	r.bySeries[seriesUID] = append(r.bySeries[seriesUID], doc)

	r.log().InfoContext(ctx, "Registered key object document",
		"series_uid", seriesUID,
		"ko_uid", doc.UID(),
		"description", doc.Description(),
		"editable", doc.Editable())
	return doc, nil
}

// SaveReferences persists the current reference set of doc.
func (r *Registry) SaveReferences(ctx context.Context, doc *Document) error {
	if r.store == nil {
		return nil
	}
	if err := r.store.SaveReferences(ctx, doc); err != nil {
		return koerrors.NewStoreError("save references", err)
	}
	return nil
}

// FindValid returns the first document of seriesUID that can receive a
// reference to img, or nil.
//
// Editable documents already referencing img's study are preferred over
// empty editable documents. Within each group registration order decides.
func (r *Registry) FindValid(ctx context.Context, seriesUID string, img *series.Image) (*Document, error) {
	if img == nil {
		return nil, nil
	}
	docs, err := r.ForSeries(ctx, seriesUID)
	if err != nil {
		return nil, err
	}

	for _, doc := range docs {
		if doc.Editable() && doc.ReferencesStudy(img.StudyInstanceUID) {
			return doc, nil
		}
	}
	for _, doc := range docs {
		if doc.Editable() && doc.IsEmpty() {
			return doc, nil
		}
	}
	return nil, nil
}

// Lookup finds a document of seriesUID by SOP Instance UID or, failing that,
// by the description closest to query. Descriptions further than a third of
// the query length (at least two edits) away do not match.
func (r *Registry) Lookup(ctx context.Context, seriesUID, query string) (*Document, bool) {
	docs, err := r.ForSeries(ctx, seriesUID)
	if err != nil {
		r.log().WarnContext(ctx, "Failed to list documents for lookup",
			"series_uid", seriesUID,
			"error", err)
		return nil, false
	}

	query = strings.TrimSpace(query)
	for _, doc := range docs {
		if doc.UID() == query {
			return doc, true
		}
	}

	maxDistance := max(2, len(query)/3)
	var best *Document
	bestDistance := maxDistance + 1
	for _, doc := range docs {
		d := levenshtein.ComputeDistance(strings.ToLower(query), strings.ToLower(doc.Description()))
		if d < bestDistance {
			best, bestDistance = doc, d
		}
	}
	return best, best != nil
}
