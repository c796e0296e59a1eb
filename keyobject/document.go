// Package keyobject models Key Object Selection documents: the per-series
// registry, the builder creating new documents, and manifest import/export.
package keyobject

import (
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/caio-sobreiro/dicomko/dicom"
	"github.com/caio-sobreiro/dicomko/series"
)

// Reference is one image referenced by a document
type Reference struct {
	SOPInstanceUID    string `yaml:"sop_instance_uid"`
	SOPClassUID       string `yaml:"sop_class_uid,omitempty"`
	StudyInstanceUID  string `yaml:"study_instance_uid"`
	SeriesInstanceUID string `yaml:"series_instance_uid,omitempty"`
}

// ReferenceTo returns the reference recording img.
func ReferenceTo(img *series.Image) Reference {
	return Reference{
		SOPInstanceUID:    img.SOPInstanceUID,
		SOPClassUID:       img.SOPClassUID,
		StudyInstanceUID:  img.StudyInstanceUID,
		SeriesInstanceUID: img.SeriesInstanceUID,
	}
}

// Document is a Key Object Selection document.
//
// The SOP Instance UID of its dataset is its identity. Only editable
// documents accept reference changes through SetReference.
type Document struct {
	mu         sync.RWMutex
	dataset    *dicom.Dataset
	seriesUID  string
	editable   bool
	version    uint64
	createdAt  time.Time
	references map[string]Reference
}

// DocumentOption configures a Document
type DocumentOption func(*Document)

// ReadOnly marks the document as not editable, as for externally authored
// documents.
func ReadOnly() DocumentOption {
	return func(d *Document) {
		d.editable = false
	}
}

// WithVersion sets the ordering version compared by the staleness guard.
func WithVersion(version uint64) DocumentOption {
	return func(d *Document) {
		d.version = version
	}
}

// WithCreatedAt sets the creation time shown to users.
func WithCreatedAt(t time.Time) DocumentOption {
	return func(d *Document) {
		d.createdAt = t
	}
}

// WithSeriesUID sets the series the document is registered against.
func WithSeriesUID(uid string) DocumentOption {
	return func(d *Document) {
		d.seriesUID = uid
	}
}

// WithReferences preloads the reference set, bypassing editability. Used
// when restoring stored or imported documents.
func WithReferences(refs ...Reference) DocumentOption {
	return func(d *Document) {
		for _, ref := range refs {
			d.references[ref.SOPInstanceUID] = ref
		}
	}
}

// NewDocument wraps a KO dataset. Documents are editable unless ReadOnly is
// given.
func NewDocument(ds *dicom.Dataset, opts ...DocumentOption) *Document {
	if ds == nil {
		ds = dicom.NewDataset()
	}
	d := &Document{
		dataset:    ds,
		editable:   true,
		references: make(map[string]Reference),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// UID returns the SOP Instance UID of the document
func (d *Document) UID() string {
	return d.dataset.GetString(dicom.TagSOPInstanceUID)
}

// Description returns the series description given at creation
func (d *Document) Description() string {
	return d.dataset.GetString(dicom.TagSeriesDescription)
}

// StudyInstanceUID returns the study the document was created in
func (d *Document) StudyInstanceUID() string {
	return d.dataset.GetString(dicom.TagStudyInstanceUID)
}

// Attributes returns the document dataset. It implements Source, so a
// document can seed a copy of itself.
func (d *Document) Attributes() *dicom.Dataset {
	return d.dataset
}

func (d *Document) SeriesUID() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.seriesUID
}

func (d *Document) setSeriesUID(uid string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seriesUID = uid
}

func (d *Document) Editable() bool {
	return d.editable
}

func (d *Document) Version() uint64 {
	return d.version
}

func (d *Document) CreatedAt() time.Time {
	return d.createdAt
}

// IsEmpty reports whether the document references no image
func (d *Document) IsEmpty() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.references) == 0
}

// Len returns the number of referenced images
func (d *Document) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.references)
}

// Contains reports whether the image with sopInstanceUID is referenced
func (d *Document) Contains(sopInstanceUID string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.references[sopInstanceUID]
	return ok
}

// ReferencesStudy reports whether any reference belongs to studyInstanceUID
func (d *Document) ReferencesStudy(studyInstanceUID string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, ref := range d.references {
		if ref.StudyInstanceUID == studyInstanceUID {
			return true
		}
	}
	return false
}

// References returns the references sorted by SOP Instance UID
func (d *Document) References() []Reference {
	d.mu.RLock()
	defer d.mu.RUnlock()
	refs := make([]Reference, 0, len(d.references))
	for _, ref := range d.references {
		refs = append(refs, ref)
	}
	slices.SortFunc(refs, func(a, b Reference) int {
		return strings.Compare(a.SOPInstanceUID, b.SOPInstanceUID)
	})
	return refs
}

// ReferencedSOPInstanceUIDs returns the referenced image UIDs, sorted
func (d *Document) ReferencedSOPInstanceUIDs() []string {
	refs := d.References()
	uids := make([]string, len(refs))
	for i, ref := range refs {
		uids[i] = ref.SOPInstanceUID
	}
	return uids
}

// ReferencedStudyInstanceUIDs returns the distinct studies touched by the
// references, sorted
func (d *Document) ReferencedStudyInstanceUIDs() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	var uids []string
	for _, ref := range d.references {
		if !slices.Contains(uids, ref.StudyInstanceUID) {
			uids = append(uids, ref.StudyInstanceUID)
		}
	}
	slices.Sort(uids)
	return uids
}

// ValidFor reports whether the document may receive a new reference to img:
// it is editable and either empty or already referencing img's study.
func (d *Document) ValidFor(img *series.Image) bool {
	if img == nil || !d.editable {
		return false
	}
	return d.IsEmpty() || d.ReferencesStudy(img.StudyInstanceUID)
}

// SetReference adds (selected) or removes img from the reference set and
// reports whether the set changed. Read-only documents never change.
func (d *Document) SetReference(img *series.Image, selected bool) bool {
	if img == nil || !d.editable {
		return false
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	_, present := d.references[img.SOPInstanceUID]
	switch {
	case selected && !present:
		d.references[img.SOPInstanceUID] = ReferenceTo(img)
		return true
	case !selected && present:
		delete(d.references, img.SOPInstanceUID)
		return true
	}
	return false
}

// SOPInstanceUIDFilter returns a predicate admitting the referenced images.
// The predicate follows later reference changes.
func (d *Document) SOPInstanceUIDFilter() series.Predicate {
	return series.PredicateFunc(func(img *series.Image) bool {
		return d.Contains(img.SOPInstanceUID)
	})
}

// NewerThan reports whether d is strictly more recent than other.
func (d *Document) NewerThan(other *Document) bool {
	return d.version > other.version
}

func (d *Document) String() string {
	if desc := d.Description(); desc != "" {
		return desc
	}
	return d.UID()
}
