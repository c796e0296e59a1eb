package keyobject

import (
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/caio-sobreiro/dicomko/dicom"
	"github.com/caio-sobreiro/dicomko/types"
)

// ManifestVersion is the manifest format written by ExportManifest
const ManifestVersion = 1

// Manifest is the YAML exchange form of a set of documents
type Manifest struct {
	Version   int                `yaml:"version"`
	Documents []ManifestDocument `yaml:"documents"`
}

// ManifestDocument is one document of a manifest
type ManifestDocument struct {
	SOPInstanceUID   string      `yaml:"sop_instance_uid"`
	SeriesUID        string      `yaml:"series_uid"`
	StudyInstanceUID string      `yaml:"study_instance_uid"`
	PatientID        string      `yaml:"patient_id,omitempty"`
	PatientName      string      `yaml:"patient_name,omitempty"`
	Description      string      `yaml:"description"`
	Editable         bool        `yaml:"editable"`
	CreatedAt        time.Time   `yaml:"created_at,omitempty"`
	References       []Reference `yaml:"references"`
}

// ExportManifest writes docs as a YAML manifest
func ExportManifest(w io.Writer, docs []*Document) error {
	m := Manifest{Version: ManifestVersion}
	for _, doc := range docs {
		ds := doc.Attributes()
		m.Documents = append(m.Documents, ManifestDocument{
			SOPInstanceUID:   doc.UID(),
			SeriesUID:        doc.SeriesUID(),
			StudyInstanceUID: doc.StudyInstanceUID(),
			PatientID:        ds.GetString(dicom.TagPatientID),
			PatientName:      ds.GetString(dicom.TagPatientName),
			Description:      doc.Description(),
			Editable:         doc.Editable(),
			CreatedAt:        doc.CreatedAt(),
			References:       doc.References(),
		})
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&m); err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	return enc.Close()
}

// ImportManifest reads a YAML manifest. Imported documents are externally
// authored and therefore read-only, whatever the manifest says.
func ImportManifest(r io.Reader) ([]*Document, error) {
	var m Manifest
	if err := yaml.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("failed to decode manifest: %w", err)
	}
	if m.Version != ManifestVersion {
		return nil, fmt.Errorf("unsupported manifest version %d", m.Version)
	}

	docs := make([]*Document, 0, len(m.Documents))
	for i, md := range m.Documents {
		if md.SOPInstanceUID == "" || md.StudyInstanceUID == "" {
			return nil, fmt.Errorf("manifest document %d: missing SOP Instance UID or Study Instance UID", i)
		}

		ds := dicom.NewDataset()
		ds.AddElement(dicom.TagSOPClassUID, dicom.VR_UI, types.KeyObjectSelectionDocumentStorage)
		ds.AddElement(dicom.TagSOPInstanceUID, dicom.VR_UI, md.SOPInstanceUID)
		ds.AddElement(dicom.TagStudyInstanceUID, dicom.VR_UI, md.StudyInstanceUID)
		ds.AddElement(dicom.TagModality, dicom.VR_CS, "KO")
		ds.AddElement(dicom.TagSeriesDescription, dicom.VR_LO, md.Description)
		if md.PatientID != "" {
			ds.AddElement(dicom.TagPatientID, dicom.VR_LO, md.PatientID)
		}
		if md.PatientName != "" {
			ds.AddElement(dicom.TagPatientName, dicom.VR_PN, md.PatientName)
		}

		docs = append(docs, NewDocument(ds,
			ReadOnly(),
			WithSeriesUID(md.SeriesUID),
			WithCreatedAt(md.CreatedAt),
			WithReferences(md.References...),
		))
	}
	return docs, nil
}
