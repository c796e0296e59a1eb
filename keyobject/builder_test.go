package keyobject

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/caio-sobreiro/dicomko/dicom"
	koerrors "github.com/caio-sobreiro/dicomko/errors"
	"github.com/caio-sobreiro/dicomko/types"
)

func TestBuilder_Build(t *testing.T) {
	prompter := &mockPrompter{}
	fixed := time.Date(2024, 3, 5, 14, 30, 15, 0, time.UTC)
	b := NewBuilder(prompter, NewCounterClock(), WithTimeSource(func() time.Time { return fixed }))

	img := newImage(t, "I1", "S1")
	doc, err := b.Build(context.Background(), img)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if prompter.textCalls != 1 || prompter.lastTitle != DefaultDialogTitle {
		t.Errorf("prompt calls = %d title = %q", prompter.textCalls, prompter.lastTitle)
	}
	if !doc.Editable() || !doc.IsEmpty() {
		t.Error("new document should be editable and empty")
	}
	if doc.Description() != DefaultDescription {
		t.Errorf("Description() = %q, want %q", doc.Description(), DefaultDescription)
	}
	if doc.Version() != 1 {
		t.Errorf("Version() = %d, want 1", doc.Version())
	}
	if !doc.CreatedAt().Equal(fixed) {
		t.Errorf("CreatedAt() = %v, want %v", doc.CreatedAt(), fixed)
	}

	ds := doc.Attributes()
	checks := map[dicom.Tag]string{
		dicom.TagSOPClassUID:       types.KeyObjectSelectionDocumentStorage,
		dicom.TagStudyInstanceUID:  "S1",
		dicom.TagPatientName:       "DOE^JANE",
		dicom.TagModality:          "KO",
		dicom.TagContentDate:       "20240305",
		dicom.TagContentTime:       "143015",
		dicom.TagSeriesDescription: DefaultDescription,
	}
	for tag, want := range checks {
		if got := ds.GetString(tag); got != want {
			t.Errorf("%s = %q, want %q", tag, got, want)
		}
	}
	if ds.GetString(dicom.TagSeriesInstanceUID) == img.SeriesInstanceUID {
		t.Error("document must live in its own series")
	}
	if ds.GetString(dicom.TagSOPInstanceUID) == "" {
		t.Error("document has no SOP Instance UID")
	}
}

func TestBuilder_BuildFailures(t *testing.T) {
	noStudy := dicom.NewDataset()
	noStudy.AddElement(dicom.TagSOPInstanceUID, dicom.VR_UI, "x")

	tests := []struct {
		name      string
		prompter  *mockPrompter
		src       Source
		wantErr   error
		wantCalls int
	}{
		{"nil source", &mockPrompter{}, nil, koerrors.ErrInvalidSourceDocument, 0},
		{"source without study", &mockPrompter{}, NewDocument(noStudy), koerrors.ErrInvalidSourceDocument, 0},
		{"cancelled", &mockPrompter{textErr: koerrors.ErrCancelled}, newDoc("ko", "d"), koerrors.ErrCancelled, 1},
		{"blank text", &mockPrompter{text: "   "}, newDoc("ko", "d"), koerrors.ErrCancelled, 1},
		{"prompt failure", &mockPrompter{textErr: errBoom}, newDoc("ko", "d"), koerrors.ErrCancelled, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuilder(tt.prompter, nil)
			doc, err := b.Build(context.Background(), tt.src)
			if doc != nil {
				t.Error("Build() returned a document on failure")
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Build() error = %v, want %v", err, tt.wantErr)
			}
			if tt.prompter.textCalls != tt.wantCalls {
				t.Errorf("prompt calls = %d, want %d", tt.prompter.textCalls, tt.wantCalls)
			}
		})
	}
}

func TestBuilder_BuildCopy(t *testing.T) {
	b := NewBuilder(&mockPrompter{text: "copy of external"}, NewCounterClock())
	original := newDoc("ro", "external", ReadOnly(),
		WithReferences(Reference{SOPInstanceUID: "I1", StudyInstanceUID: "S1"}))

	doc, err := b.BuildCopy(context.Background(), original)
	if err != nil {
		t.Fatalf("BuildCopy() error = %v", err)
	}
	if !doc.Editable() {
		t.Error("copy should be editable")
	}
	if doc.UID() == original.UID() {
		t.Error("copy should have its own identity")
	}
	if !doc.Contains("I1") {
		t.Error("copy should carry the original references")
	}
	if doc.Description() != "copy of external" {
		t.Errorf("Description() = %q", doc.Description())
	}
	if original.Len() != 1 || original.Editable() {
		t.Error("original document was modified")
	}
}
