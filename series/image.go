// Package series provides an ordered, filterable view over the images of a
// DICOM series.
package series

import (
	"fmt"

	"github.com/caio-sobreiro/dicomko/dicom"
)

// Image is a single instance of a series. Identity attributes are read once
// from the dataset and never change.
type Image struct {
	SOPInstanceUID    string
	SOPClassUID       string
	StudyInstanceUID  string
	SeriesInstanceUID string
	InstanceNumber    int
	Position          [3]float64
	HasPosition       bool

	dataset *dicom.Dataset
}

// NewImage builds an Image from a parsed dataset.
//
// The dataset must carry a SOP Instance UID and a Study Instance UID. Image
// Position (Patient) is optional; images without it are skipped by nearest
// lookups.
func NewImage(ds *dicom.Dataset) (*Image, error) {
	if ds == nil {
		return nil, fmt.Errorf("image dataset is nil")
	}

	img := &Image{
		SOPInstanceUID:    ds.GetString(dicom.TagSOPInstanceUID),
		SOPClassUID:       ds.GetString(dicom.TagSOPClassUID),
		StudyInstanceUID:  ds.GetString(dicom.TagStudyInstanceUID),
		SeriesInstanceUID: ds.GetString(dicom.TagSeriesInstanceUID),
		dataset:           ds,
	}
	if img.SOPInstanceUID == "" {
		return nil, fmt.Errorf("image has no SOP Instance UID")
	}
	if img.StudyInstanceUID == "" {
		return nil, fmt.Errorf("image %s has no Study Instance UID", img.SOPInstanceUID)
	}

	if n, ok := ds.GetInt(dicom.TagInstanceNumber); ok {
		img.InstanceNumber = n
	}
	if pos, ok := ds.GetFloats(dicom.TagImagePositionPatient); ok && len(pos) == 3 {
		img.Position = [3]float64{pos[0], pos[1], pos[2]}
		img.HasPosition = true
	}

	return img, nil
}

// Location projects the slice position onto a scalar: the sum of its three
// components.
func (i *Image) Location() float64 {
	return i.Position[0] + i.Position[1] + i.Position[2]
}

// Attributes returns the dataset the image was read from.
func (i *Image) Attributes() *dicom.Dataset {
	return i.dataset
}

func (i *Image) String() string {
	return fmt.Sprintf("image %s (instance %d)", i.SOPInstanceUID, i.InstanceNumber)
}
