package types

import "testing"

func TestGetSOPClassInfo(t *testing.T) {
	tests := []struct {
		name     string
		uid      string
		wantName string
		wantCat  string
	}{
		{
			name:     "CT Image Storage",
			uid:      CTImageStorage,
			wantName: "CT Image Storage",
			wantCat:  CategoryImage,
		},
		{
			name:     "MR Image Storage",
			uid:      MRImageStorage,
			wantName: "MR Image Storage",
			wantCat:  CategoryImage,
		},
		{
			name:     "Key Object Selection",
			uid:      KeyObjectSelectionDocumentStorage,
			wantName: "Key Object Selection Document Storage",
			wantCat:  CategoryKeyObject,
		},
		{
			name:     "Presentation State",
			uid:      GrayscaleSoftcopyPresentationStateStorage,
			wantName: "Grayscale Softcopy Presentation State Storage",
			wantCat:  CategoryPresentation,
		},
		{
			name:     "Unknown SOP Class",
			uid:      "1.2.3.4.5.6.7.8.9",
			wantName: "Unknown",
			wantCat:  CategoryUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := GetSOPClassInfo(tt.uid)
			if info.Name != tt.wantName {
				t.Errorf("GetSOPClassInfo(%s).Name = %s, want %s", tt.uid, info.Name, tt.wantName)
			}
			if info.Category != tt.wantCat {
				t.Errorf("GetSOPClassInfo(%s).Category = %s, want %s", tt.uid, info.Category, tt.wantCat)
			}
			if info.UID != tt.uid {
				t.Errorf("GetSOPClassInfo(%s).UID = %s, want %s", tt.uid, info.UID, tt.uid)
			}
		})
	}
}

func TestIsImageSOPClass(t *testing.T) {
	tests := []struct {
		name string
		uid  string
		want bool
	}{
		{"CT Image Storage", CTImageStorage, true},
		{"Secondary Capture", SecondaryCaptureImageStorage, true},
		{"PET Image Storage", PETImageStorage, true},
		{"Key Object", KeyObjectSelectionDocumentStorage, false},
		{"Encapsulated PDF", EncapsulatedPDFStorage, false},
		{"Unknown", "1.2.3.4", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsImageSOPClass(tt.uid); got != tt.want {
				t.Errorf("IsImageSOPClass(%s) = %v, want %v", tt.uid, got, tt.want)
			}
		})
	}
}

func TestIsKeyObjectSOPClass(t *testing.T) {
	if !IsKeyObjectSOPClass(KeyObjectSelectionDocumentStorage) {
		t.Error("Key object selection class not recognised")
	}
	if IsKeyObjectSOPClass(BasicTextSRStorage) {
		t.Error("Basic text SR reported as key object")
	}
}
