package series

import (
	"fmt"
	"strconv"
	"time"

	"github.com/caio-sobreiro/dicomko/dicom"
	"github.com/caio-sobreiro/dicomko/types"
)

// SyntheticSpec describes a generated axial series.
type SyntheticSpec struct {
	Name        string
	PatientName string
	PatientID   string
	Slices      int
	Spacing     float64
	Origin      float64
	Date        time.Time
}

// Synthetic generates the datasets of a CT series with evenly spaced slices.
// UIDs derive from spec.Name, so the same spec always yields the same study,
// series and instance identifiers.
func Synthetic(spec SyntheticSpec) []*dicom.Dataset {
	if spec.Spacing == 0 {
		spec.Spacing = 1
	}
	if spec.Date.IsZero() {
		spec.Date = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	}
	studyUID := types.UIDFromName(spec.Name + "/study")
	seriesUID := types.UIDFromName(spec.Name + "/series")
	frameUID := types.UIDFromName(spec.Name + "/frame")

	datasets := make([]*dicom.Dataset, 0, spec.Slices)
	for i := 0; i < spec.Slices; i++ {
		z := spec.Origin + float64(i)*spec.Spacing

		ds := dicom.NewDataset()
		ds.AddElement(dicom.TagSOPClassUID, dicom.VR_UI, types.CTImageStorage)
		ds.AddElement(dicom.TagSOPInstanceUID, dicom.VR_UI, types.UIDFromName(fmt.Sprintf("%s/%d", spec.Name, i)))
		ds.AddElement(dicom.TagStudyDate, dicom.VR_DA, spec.Date.Format("20060102"))
		ds.AddElement(dicom.TagStudyTime, dicom.VR_TM, spec.Date.Format("150405"))
		ds.AddElement(dicom.TagModality, dicom.VR_CS, "CT")
		ds.AddElement(dicom.TagStudyDescription, dicom.VR_LO, spec.Name)
		ds.AddElement(dicom.TagSeriesDescription, dicom.VR_LO, "Axial "+strconv.FormatFloat(spec.Spacing, 'f', -1, 64)+"mm")
		ds.AddElement(dicom.TagPatientName, dicom.VR_PN, spec.PatientName)
		ds.AddElement(dicom.TagPatientID, dicom.VR_LO, spec.PatientID)
		ds.AddElement(dicom.TagStudyInstanceUID, dicom.VR_UI, studyUID)
		ds.AddElement(dicom.TagSeriesInstanceUID, dicom.VR_UI, seriesUID)
		ds.AddElement(dicom.TagSeriesNumber, dicom.VR_IS, "1")
		ds.AddElement(dicom.TagInstanceNumber, dicom.VR_IS, strconv.Itoa(i+1))
		ds.AddElement(dicom.TagImagePositionPatient, dicom.VR_DS, "0\\0\\"+strconv.FormatFloat(z, 'f', -1, 64))
		ds.AddElement(dicom.TagImageOrientation, dicom.VR_DS, "1\\0\\0\\0\\1\\0")
		ds.AddElement(dicom.TagFrameOfReferenceUID, dicom.VR_UI, frameUID)
		ds.AddElement(dicom.TagSliceLocation, dicom.VR_DS, strconv.FormatFloat(z, 'f', -1, 64))
		ds.AddElement(dicom.TagRows, dicom.VR_US, uint16(1))
		ds.AddElement(dicom.TagColumns, dicom.VR_US, uint16(1))
		ds.AddElement(dicom.TagBitsAllocated, dicom.VR_US, uint16(16))
		ds.AddElement(dicom.TagPixelData, dicom.VR_OW, []byte{0x00, 0x00})
		datasets = append(datasets, ds)
	}
	return datasets
}

// FromDatasets builds a series from generated or loaded datasets.
func FromDatasets(uid string, datasets []*dicom.Dataset) (*Series, error) {
	s := New(uid)
	for _, ds := range datasets {
		img, err := NewImage(ds)
		if err != nil {
			return nil, err
		}
		if s.UID == "" {
			s.UID = img.SeriesInstanceUID
		}
		s.Add(img)
	}
	return s, nil
}
