package keyobject

import (
	"context"
	"errors"
	"testing"

	"github.com/caio-sobreiro/dicomko/dicom"
	"github.com/caio-sobreiro/dicomko/series"
)

// mockPrompter implements interfaces.Prompter
type mockPrompter struct {
	text      string
	textErr   error
	textCalls int
	lastTitle string
}

func (m *mockPrompter) Choose(ctx context.Context, message, title string, options []string) (int, error) {
	return 0, errors.New("unexpected choice prompt")
}

func (m *mockPrompter) Text(ctx context.Context, message, title, defaultValue string) (string, error) {
	m.textCalls++
	m.lastTitle = title
	if m.textErr != nil {
		return "", m.textErr
	}
	if m.text == "" {
		return defaultValue, nil
	}
	return m.text, nil
}

// mockStore implements Store in memory
type mockStore struct {
	docs       map[string][]*Document
	registered []*Document
	saved      []string
	listErr    error
	saveErr    error
	listCalls  int
}

func newMockStore() *mockStore {
	return &mockStore{docs: make(map[string][]*Document)}
}

func (m *mockStore) Register(ctx context.Context, doc *Document) error {
	m.registered = append(m.registered, doc)
	return nil
}

func (m *mockStore) ListForSeries(ctx context.Context, seriesUID string) ([]*Document, error) {
	m.listCalls++
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.docs[seriesUID], nil
}

func (m *mockStore) UnderlyingDocument(doc *Document) string {
	return doc.UID()
}

func (m *mockStore) SaveReferences(ctx context.Context, doc *Document) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = append(m.saved, doc.UID())
	return nil
}

func newImage(t *testing.T, uid, study string) *series.Image {
	t.Helper()
	ds := dicom.NewDataset()
	ds.AddElement(dicom.TagSOPInstanceUID, dicom.VR_UI, uid)
	ds.AddElement(dicom.TagStudyInstanceUID, dicom.VR_UI, study)
	ds.AddElement(dicom.TagSeriesInstanceUID, dicom.VR_UI, study+".1")
	ds.AddElement(dicom.TagPatientName, dicom.VR_PN, "DOE^JANE")
	img, err := series.NewImage(ds)
	if err != nil {
		t.Fatalf("NewImage() error = %v", err)
	}
	return img
}

func newDoc(uid, description string, opts ...DocumentOption) *Document {
	ds := dicom.NewDataset()
	ds.AddElement(dicom.TagSOPInstanceUID, dicom.VR_UI, uid)
	ds.AddElement(dicom.TagStudyInstanceUID, dicom.VR_UI, "S1")
	ds.AddElement(dicom.TagSeriesDescription, dicom.VR_LO, description)
	return NewDocument(ds, opts...)
}

var errBoom = errors.New("boom")
