// Package types contains DICOM UID constants and helpers shared by the
// dataset codec, the series index and the key object packages.
package types

// DICOM SOP Class UIDs as defined in DICOM Part 4, Annex B
// https://dicom.nema.org/medical/dicom/current/output/chtml/part04/sect_B.5.html

// Image Storage SOP Classes that can be referenced by a key object selection.
const (
	ComputedRadiographyImageStorage        = "1.2.840.10008.5.1.4.1.1.1"
	DigitalXRayImageStorageForPresentation = "1.2.840.10008.5.1.4.1.1.1.1"
	CTImageStorage                         = "1.2.840.10008.5.1.4.1.1.2"
	EnhancedCTImageStorage                 = "1.2.840.10008.5.1.4.1.1.2.1"
	UltrasoundMultiFrameImageStorage       = "1.2.840.10008.5.1.4.1.1.3.1"
	MRImageStorage                         = "1.2.840.10008.5.1.4.1.1.4"
	EnhancedMRImageStorage                 = "1.2.840.10008.5.1.4.1.1.4.1"
	UltrasoundImageStorage                 = "1.2.840.10008.5.1.4.1.1.6.1"
	SecondaryCaptureImageStorage           = "1.2.840.10008.5.1.4.1.1.7"
	XRayAngiographicImageStorage           = "1.2.840.10008.5.1.4.1.1.12.1"
	NuclearMedicineImageStorage            = "1.2.840.10008.5.1.4.1.1.20"
	PETImageStorage                        = "1.2.840.10008.5.1.4.1.1.128"
	RTImageStorage                         = "1.2.840.10008.5.1.4.1.1.481.1"
)

// Document SOP Classes.
const (
	// KeyObjectSelectionDocumentStorage identifies key object selection (KO) documents.
	KeyObjectSelectionDocumentStorage = "1.2.840.10008.5.1.4.1.1.88.59"

	GrayscaleSoftcopyPresentationStateStorage = "1.2.840.10008.5.1.4.1.1.11.1"
	BasicTextSRStorage                        = "1.2.840.10008.5.1.4.1.1.88.11"
	EnhancedSRStorage                         = "1.2.840.10008.5.1.4.1.1.88.22"
	EncapsulatedPDFStorage                    = "1.2.840.10008.5.1.4.1.1.104.1"
)

// SOP class categories.
const (
	CategoryImage        = "Image"
	CategoryKeyObject    = "Key Object"
	CategoryPresentation = "Presentation State"
	CategoryReport       = "Structured Report"
	CategoryDocument     = "Document"
	CategoryUnknown      = "Unknown"
)

// SOPClassInfo provides human-readable information about a SOP Class UID
type SOPClassInfo struct {
	UID      string
	Name     string
	Category string
}

// GetSOPClassInfo returns information about a SOP Class UID
func GetSOPClassInfo(uid string) *SOPClassInfo {
	info, ok := sopClassRegistry[uid]
	if !ok {
		return &SOPClassInfo{
			UID:      uid,
			Name:     "Unknown",
			Category: CategoryUnknown,
		}
	}
	return &info
}

// IsImageSOPClass returns true if instances of the class can be displayed as
// frames of a series and therefore referenced by a key object selection.
func IsImageSOPClass(uid string) bool {
	return GetSOPClassInfo(uid).Category == CategoryImage
}

// IsKeyObjectSOPClass returns true if the UID is the key object selection document class.
func IsKeyObjectSOPClass(uid string) bool {
	return uid == KeyObjectSelectionDocumentStorage
}

var sopClassRegistry = map[string]SOPClassInfo{
	ComputedRadiographyImageStorage:        {ComputedRadiographyImageStorage, "Computed Radiography Image Storage", CategoryImage},
	DigitalXRayImageStorageForPresentation: {DigitalXRayImageStorageForPresentation, "Digital X-Ray Image Storage - For Presentation", CategoryImage},
	CTImageStorage:                         {CTImageStorage, "CT Image Storage", CategoryImage},
	EnhancedCTImageStorage:                 {EnhancedCTImageStorage, "Enhanced CT Image Storage", CategoryImage},
	UltrasoundMultiFrameImageStorage:       {UltrasoundMultiFrameImageStorage, "Ultrasound Multi-frame Image Storage", CategoryImage},
	MRImageStorage:                         {MRImageStorage, "MR Image Storage", CategoryImage},
	EnhancedMRImageStorage:                 {EnhancedMRImageStorage, "Enhanced MR Image Storage", CategoryImage},
	UltrasoundImageStorage:                 {UltrasoundImageStorage, "Ultrasound Image Storage", CategoryImage},
	SecondaryCaptureImageStorage:           {SecondaryCaptureImageStorage, "Secondary Capture Image Storage", CategoryImage},
	XRayAngiographicImageStorage:           {XRayAngiographicImageStorage, "X-Ray Angiographic Image Storage", CategoryImage},
	NuclearMedicineImageStorage:            {NuclearMedicineImageStorage, "Nuclear Medicine Image Storage", CategoryImage},
	PETImageStorage:                        {PETImageStorage, "PET Image Storage", CategoryImage},
	RTImageStorage:                         {RTImageStorage, "RT Image Storage", CategoryImage},

	KeyObjectSelectionDocumentStorage:         {KeyObjectSelectionDocumentStorage, "Key Object Selection Document Storage", CategoryKeyObject},
	GrayscaleSoftcopyPresentationStateStorage: {GrayscaleSoftcopyPresentationStateStorage, "Grayscale Softcopy Presentation State Storage", CategoryPresentation},
	BasicTextSRStorage:                        {BasicTextSRStorage, "Basic Text SR Storage", CategoryReport},
	EnhancedSRStorage:                         {EnhancedSRStorage, "Enhanced SR Storage", CategoryReport},
	EncapsulatedPDFStorage:                    {EncapsulatedPDFStorage, "Encapsulated PDF Storage", CategoryDocument},
}
