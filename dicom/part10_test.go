package dicom

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/caio-sobreiro/dicomko/types"
)

// createValidPart10File creates a minimal valid DICOM Part 10 file for testing
func createValidPart10File() []byte {
	var data []byte

	// 128-byte preamble (all zeros)
	data = append(data, make([]byte, 128)...)
	data = append(data, []byte("DICM")...)

	// Transfer Syntax UID (0002,0010) - using short VR format
	data = append(data, 0x02, 0x00, 0x10, 0x00)
	data = append(data, 'U', 'I')
	tsUID := "1.2.840.10008.1.2.1\x00"
	data = binary.LittleEndian.AppendUint16(data, uint16(len(tsUID)))
	data = append(data, []byte(tsUID)...)

	// Patient Name (0010,0010)
	data = append(data, 0x10, 0x00, 0x10, 0x00)
	data = append(data, 'P', 'N')
	patientName := "TEST^PATIENT"
	data = binary.LittleEndian.AppendUint16(data, uint16(len(patientName)))
	data = append(data, []byte(patientName)...)

	return data
}

func TestStripPart10Header_ValidFile(t *testing.T) {
	body, transferSyntax, err := StripPart10Header(createValidPart10File())
	if err != nil {
		t.Fatalf("StripPart10Header() error = %v", err)
	}

	expectedTag := []byte{0x10, 0x00, 0x10, 0x00}
	if len(body) < 4 || !bytes.Equal(body[0:4], expectedTag) {
		t.Errorf("Expected dataset to start with tag 0010,0010, got % x", body[:min(4, len(body))])
	}
	if transferSyntax != types.ExplicitVRLittleEndian {
		t.Errorf("transfer syntax = %q, want %q", transferSyntax, types.ExplicitVRLittleEndian)
	}
}

func TestStripPart10Header_Errors(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		wantErr string
	}{
		{"too short", []byte{0x01, 0x02, 0x03}, "too short"},
		{"missing DICM", make([]byte, 200), "DICM"},
		{"meta only", createValidPart10File()[:132+8+20], "failed to find dataset"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := StripPart10Header(tt.data)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestHasPart10Header(t *testing.T) {
	if !HasPart10Header(createValidPart10File()) {
		t.Error("HasPart10Header() = false for valid file")
	}
	if HasPart10Header(make([]byte, 10)) {
		t.Error("HasPart10Header() = true for short data")
	}
}

func TestWriteAndReadPart10(t *testing.T) {
	tests := []struct {
		name           string
		transferSyntax string
	}{
		{"explicit", types.ExplicitVRLittleEndian},
		{"implicit", types.ImplicitVRLittleEndian},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds := NewDataset()
			ds.AddElement(TagSOPClassUID, VR_UI, types.KeyObjectSelectionDocumentStorage)
			ds.AddElement(TagSOPInstanceUID, VR_UI, "2.25.1234")
			ds.AddElement(TagStudyInstanceUID, VR_UI, "1.2.3")
			ds.AddElement(TagSeriesDescription, VR_LO, "teaching file")

			var buf bytes.Buffer
			if err := WritePart10(&buf, ds, tt.transferSyntax); err != nil {
				t.Fatalf("WritePart10() error = %v", err)
			}

			parsed, transferSyntax, err := ReadPart10(buf.Bytes())
			if err != nil {
				t.Fatalf("ReadPart10() error = %v", err)
			}
			if transferSyntax != tt.transferSyntax {
				t.Errorf("transfer syntax = %q, want %q", transferSyntax, tt.transferSyntax)
			}
			for _, tag := range []Tag{TagSOPClassUID, TagSOPInstanceUID, TagStudyInstanceUID, TagSeriesDescription} {
				if parsed.GetString(tag) != ds.GetString(tag) {
					t.Errorf("%s = %q, want %q", tag, parsed.GetString(tag), ds.GetString(tag))
				}
			}
			if parsed.Has(TagMediaStorageSOPInstanceUID) {
				t.Error("file meta information leaked into the dataset")
			}
		})
	}
}

func TestWritePart10_RequiresSOPUIDs(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePart10(&buf, NewDataset(), ""); err == nil {
		t.Error("expected error for dataset without SOP UIDs")
	}
}

func TestReadPart10File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "image.dcm")
	if err := os.WriteFile(path, createValidPart10File(), 0o600); err != nil {
		t.Fatal(err)
	}

	ds, err := ReadPart10File(path)
	if err != nil {
		t.Fatalf("ReadPart10File() error = %v", err)
	}
	if got := ds.GetString(TagPatientName); got != "TEST^PATIENT" {
		t.Errorf("PatientName = %q", got)
	}

	if _, err := ReadPart10File(filepath.Join(t.TempDir(), "missing.dcm")); err == nil {
		t.Error("expected error for missing file")
	}
}
