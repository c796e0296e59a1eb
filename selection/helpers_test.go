package selection

import (
	"context"
	"strconv"
	"testing"

	"github.com/caio-sobreiro/dicomko/dicom"
	koerrors "github.com/caio-sobreiro/dicomko/errors"
	"github.com/caio-sobreiro/dicomko/interfaces"
	"github.com/caio-sobreiro/dicomko/keyobject"
	"github.com/caio-sobreiro/dicomko/series"
)

// mockPrompter implements interfaces.Prompter with scripted answers
type mockPrompter struct {
	choices     []int // answers to Choose; -1 cancels
	text        string
	textErr     error
	chooseCalls []string
	textCalls   int
}

func (m *mockPrompter) Choose(ctx context.Context, message, title string, options []string) (int, error) {
	m.chooseCalls = append(m.chooseCalls, message)
	if len(m.choices) == 0 {
		return 0, koerrors.ErrCancelled
	}
	answer := m.choices[0]
	m.choices = m.choices[1:]
	if answer < 0 {
		return 0, koerrors.ErrCancelled
	}
	return answer, nil
}

func (m *mockPrompter) Text(ctx context.Context, message, title, defaultValue string) (string, error) {
	m.textCalls++
	if m.textErr != nil {
		return "", m.textErr
	}
	if m.text != "" {
		return m.text, nil
	}
	return defaultValue, nil
}

// mockPresenter implements Presenter and records calls
type mockPresenter struct {
	focused    bool
	bounds     [3]int
	shown      []*series.Image
	indicators []bool
}

func (m *mockPresenter) IsFocused() bool { return m.focused }

func (m *mockPresenter) SetScrollBounds(min, max, value int) {
	m.bounds = [3]int{min, max, value}
}

func (m *mockPresenter) ShowImage(img *series.Image) {
	m.shown = append(m.shown, img)
}

func (m *mockPresenter) RefreshFilterIndicator(enabled bool) {
	m.indicators = append(m.indicators, enabled)
}

// mockNotifier implements interfaces.Notifier
type mockNotifier struct {
	events []interfaces.Event
}

func (m *mockNotifier) Notify(ctx context.Context, event interfaces.Event) {
	m.events = append(m.events, event)
}

func (m *mockNotifier) kinds() []interfaces.EventKind {
	kinds := make([]interfaces.EventKind, len(m.events))
	for i, e := range m.events {
		kinds[i] = e.Kind
	}
	return kinds
}

// mockStore implements keyobject.Store
type mockStore struct {
	saveErr error
	saves   int
}

func (m *mockStore) Register(ctx context.Context, doc *keyobject.Document) error { return nil }

func (m *mockStore) ListForSeries(ctx context.Context, seriesUID string) ([]*keyobject.Document, error) {
	return nil, nil
}

func (m *mockStore) UnderlyingDocument(doc *keyobject.Document) string { return doc.UID() }

func (m *mockStore) SaveReferences(ctx context.Context, doc *keyobject.Document) error {
	m.saves++
	return m.saveErr
}

type fixture struct {
	series      *series.Series
	registry    *keyobject.Registry
	prompter    *mockPrompter
	presenter   *mockPresenter
	notifier    *mockNotifier
	store       *mockStore
	resolver    *Resolver
	coordinator *Coordinator
}

// newFixture builds a five image series in study S1 at locations 0..40
func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		series:    series.New("series-1"),
		prompter:  &mockPrompter{},
		presenter: &mockPresenter{},
		notifier:  &mockNotifier{},
		store:     &mockStore{},
	}
	for i := 0; i < 5; i++ {
		f.series.Add(newImage(t, "I"+strconv.Itoa(i*10), "S1", float64(i*10)))
	}
	clock := keyobject.NewCounterClock()
	f.registry = keyobject.NewRegistry(keyobject.WithStore(f.store), keyobject.WithClock(clock))
	builder := keyobject.NewBuilder(f.prompter, clock)
	f.resolver = NewResolver(f.registry, builder, f.prompter, WithNotifier(f.notifier))
	f.coordinator = NewCoordinator(f.resolver, f.registry, WithNotifier(f.notifier))
	return f
}

func (f *fixture) view(opts ...ViewOption) *View {
	return NewView(f.series, f.presenter, opts...)
}

func (f *fixture) image(t *testing.T, uid string) *series.Image {
	t.Helper()
	img, ok := f.series.Lookup(uid)
	if !ok {
		t.Fatalf("image %s not in series", uid)
	}
	return img
}

// register adds a document in study S1 to the fixture registry
func (f *fixture) register(t *testing.T, uid string, opts ...keyobject.DocumentOption) *keyobject.Document {
	t.Helper()
	ds := dicom.NewDataset()
	ds.AddElement(dicom.TagSOPInstanceUID, dicom.VR_UI, uid)
	ds.AddElement(dicom.TagStudyInstanceUID, dicom.VR_UI, "S1")
	ds.AddElement(dicom.TagSeriesDescription, dicom.VR_LO, uid)
	doc, err := f.registry.Register(context.Background(), f.series.UID, keyobject.NewDocument(ds, opts...))
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	return doc
}

func newImage(t *testing.T, uid, study string, location float64) *series.Image {
	t.Helper()
	ds := dicom.NewDataset()
	ds.AddElement(dicom.TagSOPInstanceUID, dicom.VR_UI, uid)
	ds.AddElement(dicom.TagStudyInstanceUID, dicom.VR_UI, study)
	ds.AddElement(dicom.TagSeriesInstanceUID, dicom.VR_UI, "series-1")
	ds.AddElement(dicom.TagImagePositionPatient, dicom.VR_DS, "0\\0\\"+strconv.FormatFloat(location, 'f', -1, 64))
	img, err := series.NewImage(ds)
	if err != nil {
		t.Fatalf("NewImage() error = %v", err)
	}
	return img
}

func refTo(uid, study string) keyobject.Reference {
	return keyobject.Reference{SOPInstanceUID: uid, StudyInstanceUID: study}
}
