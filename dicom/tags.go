package dicom

// Data element tags used by the series index and key object documents.
var (
	// File Meta Information
	TagFileMetaInformationGroupLength = Tag{0x0002, 0x0000}
	TagFileMetaInformationVersion     = Tag{0x0002, 0x0001}
	TagMediaStorageSOPClassUID        = Tag{0x0002, 0x0002}
	TagMediaStorageSOPInstanceUID     = Tag{0x0002, 0x0003}
	TagTransferSyntaxUID              = Tag{0x0002, 0x0010}
	TagImplementationClassUID         = Tag{0x0002, 0x0012}
	TagImplementationVersionName      = Tag{0x0002, 0x0013}

	// SOP Common / General Study / General Series
	TagSpecificCharacterSet     = Tag{0x0008, 0x0005}
	TagInstanceCreationDate     = Tag{0x0008, 0x0012}
	TagInstanceCreationTime     = Tag{0x0008, 0x0013}
	TagSOPClassUID              = Tag{0x0008, 0x0016}
	TagSOPInstanceUID           = Tag{0x0008, 0x0018}
	TagStudyDate                = Tag{0x0008, 0x0020}
	TagContentDate              = Tag{0x0008, 0x0023}
	TagStudyTime                = Tag{0x0008, 0x0030}
	TagContentTime              = Tag{0x0008, 0x0033}
	TagAccessionNumber          = Tag{0x0008, 0x0050}
	TagModality                 = Tag{0x0008, 0x0060}
	TagManufacturer             = Tag{0x0008, 0x0070}
	TagReferringPhysicianName   = Tag{0x0008, 0x0090}
	TagStudyDescription         = Tag{0x0008, 0x1030}
	TagSeriesDescription        = Tag{0x0008, 0x103E}
	TagReferencedSeriesSequence = Tag{0x0008, 0x1115}
	TagReferencedSOPClassUID    = Tag{0x0008, 0x1150}
	TagReferencedSOPInstanceUID = Tag{0x0008, 0x1155}
	TagReferencedSOPSequence    = Tag{0x0008, 0x1199}

	// Patient
	TagPatientName      = Tag{0x0010, 0x0010}
	TagPatientID        = Tag{0x0010, 0x0020}
	TagPatientBirthDate = Tag{0x0010, 0x0030}
	TagPatientSex       = Tag{0x0010, 0x0040}

	// Relationship / Image Plane
	TagStudyInstanceUID     = Tag{0x0020, 0x000D}
	TagSeriesInstanceUID    = Tag{0x0020, 0x000E}
	TagStudyID              = Tag{0x0020, 0x0010}
	TagSeriesNumber         = Tag{0x0020, 0x0011}
	TagInstanceNumber       = Tag{0x0020, 0x0013}
	TagImagePositionPatient = Tag{0x0020, 0x0032}
	TagImageOrientation     = Tag{0x0020, 0x0037}
	TagFrameOfReferenceUID  = Tag{0x0020, 0x0052}
	TagSliceLocation        = Tag{0x0020, 0x1041}
	TagRows                 = Tag{0x0028, 0x0010}
	TagColumns              = Tag{0x0028, 0x0011}
	TagBitsAllocated        = Tag{0x0028, 0x0100}
	TagPixelData            = Tag{0x7FE0, 0x0010}
)

// PatientStudyTags are the Patient and General Study module attributes a new
// document inherits from the instance it is created from.
var PatientStudyTags = []Tag{
	TagSpecificCharacterSet,
	TagPatientName,
	TagPatientID,
	TagPatientBirthDate,
	TagPatientSex,
	TagStudyInstanceUID,
	TagStudyDate,
	TagStudyTime,
	TagStudyID,
	TagStudyDescription,
	TagAccessionNumber,
	TagReferringPhysicianName,
}
