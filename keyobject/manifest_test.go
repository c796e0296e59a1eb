package keyobject

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestManifest_ExportImport(t *testing.T) {
	created := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	doc := newDoc("2.25.7", "lung nodules", WithCreatedAt(created), WithSeriesUID("series-1"),
		WithReferences(
			Reference{SOPInstanceUID: "I2", StudyInstanceUID: "S1"},
			Reference{SOPInstanceUID: "I1", StudyInstanceUID: "S1"},
		))

	var buf bytes.Buffer
	if err := ExportManifest(&buf, []*Document{doc}); err != nil {
		t.Fatalf("ExportManifest() error = %v", err)
	}
	if !strings.Contains(buf.String(), "sop_instance_uid: \"2.25.7\"") && !strings.Contains(buf.String(), "sop_instance_uid: 2.25.7") {
		t.Errorf("manifest does not contain the document UID:\n%s", buf.String())
	}

	docs, err := ImportManifest(&buf)
	if err != nil {
		t.Fatalf("ImportManifest() error = %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("ImportManifest() returned %d documents, want 1", len(docs))
	}

	imported := docs[0]
	if imported.Editable() {
		t.Error("imported documents must be read-only")
	}
	if imported.UID() != "2.25.7" || imported.Description() != "lung nodules" {
		t.Errorf("imported = %s %q", imported.UID(), imported.Description())
	}
	if imported.SeriesUID() != "series-1" {
		t.Errorf("SeriesUID() = %q", imported.SeriesUID())
	}
	if got := imported.ReferencedSOPInstanceUIDs(); len(got) != 2 || got[0] != "I1" {
		t.Errorf("references = %v, want [I1 I2]", got)
	}
	if !imported.CreatedAt().Equal(created) {
		t.Errorf("CreatedAt() = %v, want %v", imported.CreatedAt(), created)
	}
}

func TestImportManifest_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"not yaml", "::::"},
		{"wrong version", "version: 7\ndocuments: []\n"},
		{"missing uid", "version: 1\ndocuments:\n  - description: x\n    study_instance_uid: S1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ImportManifest(strings.NewReader(tt.input)); err == nil {
				t.Error("expected error")
			}
		})
	}
}
