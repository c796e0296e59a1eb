package keyobject

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caio-sobreiro/dicomko/dicom"
	koerrors "github.com/caio-sobreiro/dicomko/errors"
	"github.com/caio-sobreiro/dicomko/interfaces"
	"github.com/caio-sobreiro/dicomko/types"
)

// Defaults of the description prompt
const (
	DefaultDescription = "new KO selection"
	DefaultDialogTitle = "Key Object Selection"

	descriptionMessage = "Set a description for the new Key Object Selection"
)

// Source yields the study context a new document is created in: an image,
// or a document being copied.
type Source interface {
	Attributes() *dicom.Dataset
}

// Builder creates new editable documents after asking for a description.
type Builder struct {
	prompter    interfaces.Prompter
	clock       Clock
	description string
	title       string
	now         func() time.Time
	logger      *slog.Logger
}

// BuilderOption configures a Builder
type BuilderOption func(*Builder)

// WithDefaultDescription sets the description suggested to the user
func WithDefaultDescription(description string) BuilderOption {
	return func(b *Builder) {
		b.description = description
	}
}

// WithDialogTitle sets the title of the description prompt
func WithDialogTitle(title string) BuilderOption {
	return func(b *Builder) {
		b.title = title
	}
}

// WithTimeSource sets the function providing content dates
func WithTimeSource(now func() time.Time) BuilderOption {
	return func(b *Builder) {
		b.now = now
	}
}

// WithBuilderLogger sets the builder logger
func WithBuilderLogger(logger *slog.Logger) BuilderOption {
	return func(b *Builder) {
		b.logger = logger
	}
}

// NewBuilder creates a builder asking descriptions through prompter and
// versioning documents with clock.
func NewBuilder(prompter interfaces.Prompter, clock Clock, opts ...BuilderOption) *Builder {
	b := &Builder{
		prompter:    prompter,
		clock:       clock,
		description: DefaultDescription,
		title:       DefaultDialogTitle,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.clock == nil {
		b.clock = NewCounterClock()
	}
	return b
}

func (b *Builder) log() *slog.Logger {
	if b.logger != nil {
		return b.logger
	}
	return slog.Default()
}

// Build asks for a description and creates an empty editable document in
// the study of src.
//
// Returns ErrInvalidSourceDocument if src carries no study attributes and
// ErrCancelled if the prompt is dismissed or left empty.
func (b *Builder) Build(ctx context.Context, src Source) (*Document, error) {
	if src == nil {
		return nil, koerrors.ErrInvalidSourceDocument
	}
	source := src.Attributes()
	if source == nil || source.GetString(dicom.TagStudyInstanceUID) == "" {
		return nil, koerrors.ErrInvalidSourceDocument
	}

	description, err := b.prompter.Text(ctx, descriptionMessage, b.title, b.description)
	if err != nil {
		if koerrors.IsCancelled(err) {
			return nil, err
		}
		return nil, koerrors.NewPromptError(b.title, err)
	}
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, fmt.Errorf("empty description: %w", koerrors.ErrCancelled)
	}

	now := b.now()
	ds := dicom.NewDataset()
	ds.CopyFrom(source, dicom.PatientStudyTags...)
	ds.AddElement(dicom.TagSOPClassUID, dicom.VR_UI, types.KeyObjectSelectionDocumentStorage)
	ds.AddElement(dicom.TagSOPInstanceUID, dicom.VR_UI, types.NewUID())
	ds.AddElement(dicom.TagSeriesInstanceUID, dicom.VR_UI, types.NewUID())
	ds.AddElement(dicom.TagModality, dicom.VR_CS, "KO")
	ds.AddElement(dicom.TagSeriesDescription, dicom.VR_LO, description)
	ds.AddElement(dicom.TagSeriesNumber, dicom.VR_IS, "999")
	ds.AddElement(dicom.TagInstanceNumber, dicom.VR_IS, "1")
	ds.AddElement(dicom.TagInstanceCreationDate, dicom.VR_DA, now.Format("20060102"))
	ds.AddElement(dicom.TagInstanceCreationTime, dicom.VR_TM, now.Format("150405"))
	ds.AddElement(dicom.TagContentDate, dicom.VR_DA, now.Format("20060102"))
	ds.AddElement(dicom.TagContentTime, dicom.VR_TM, now.Format("150405"))

	doc := NewDocument(ds, WithVersion(b.clock.Next()), WithCreatedAt(now))

	b.log().InfoContext(ctx, "Created key object document",
		"ko_uid", doc.UID(),
		"study_uid", doc.StudyInstanceUID(),
		"description", description)
	return doc, nil
}

// BuildCopy creates an editable document from original, carrying over its
// references. It is the way to continue working on a read-only document.
func (b *Builder) BuildCopy(ctx context.Context, original *Document) (*Document, error) {
	if original == nil {
		return nil, koerrors.ErrInvalidSourceDocument
	}
	doc, err := b.Build(ctx, original)
	if err != nil {
		return nil, err
	}
	WithReferences(original.References()...)(doc)

	b.log().DebugContext(ctx, "Copied references into new document",
		"ko_uid", doc.UID(),
		"source_ko_uid", original.UID(),
		"reference_count", doc.Len())
	return doc, nil
}
