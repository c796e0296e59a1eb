package types

// DICOM Transfer Syntax UIDs as defined in DICOM Part 5, Section 8.
// Only the uncompressed syntaxes are decoded by the dataset codec; the
// remaining entries exist so Part 10 headers can be reported accurately.
const (
	// ImplicitVRLittleEndian - Default Transfer Syntax for DICOM
	ImplicitVRLittleEndian = "1.2.840.10008.1.2"

	// ExplicitVRLittleEndian - used when writing key object headers
	ExplicitVRLittleEndian = "1.2.840.10008.1.2.1"

	// ExplicitVRBigEndian - retired
	ExplicitVRBigEndian = "1.2.840.10008.1.2.2"

	DeflatedExplicitVRLittleEndian = "1.2.840.10008.1.2.1.99"
	JPEGBaseline8Bit               = "1.2.840.10008.1.2.4.50"
	JPEGLosslessSV1                = "1.2.840.10008.1.2.4.70"
	JPEG2000Lossless               = "1.2.840.10008.1.2.4.90"
	RLELossless                    = "1.2.840.10008.1.2.5"
)

// TransferSyntaxInfo provides information about a transfer syntax
type TransferSyntaxInfo struct {
	UID          string
	Name         string
	IsCompressed bool
	IsRetired    bool
}

// GetTransferSyntaxInfo returns information about a transfer syntax UID
func GetTransferSyntaxInfo(uid string) *TransferSyntaxInfo {
	info, ok := transferSyntaxRegistry[uid]
	if !ok {
		return &TransferSyntaxInfo{
			UID:  uid,
			Name: "Unknown",
		}
	}
	return &info
}

// IsCompressed returns true if the transfer syntax uses compression
func IsCompressed(uid string) bool {
	return GetTransferSyntaxInfo(uid).IsCompressed
}

// IsDecodable reports whether the dataset codec can parse headers encoded with uid.
// Compressed syntaxes only compress pixel data, so their headers are
// explicit VR little endian and remain readable.
func IsDecodable(uid string) bool {
	switch uid {
	case ExplicitVRBigEndian, DeflatedExplicitVRLittleEndian:
		return false
	}
	_, ok := transferSyntaxRegistry[uid]
	return ok
}

var transferSyntaxRegistry = map[string]TransferSyntaxInfo{
	ImplicitVRLittleEndian:         {ImplicitVRLittleEndian, "Implicit VR Little Endian", false, false},
	ExplicitVRLittleEndian:         {ExplicitVRLittleEndian, "Explicit VR Little Endian", false, false},
	ExplicitVRBigEndian:            {ExplicitVRBigEndian, "Explicit VR Big Endian", false, true},
	DeflatedExplicitVRLittleEndian: {DeflatedExplicitVRLittleEndian, "Deflated Explicit VR Little Endian", true, false},
	JPEGBaseline8Bit:               {JPEGBaseline8Bit, "JPEG Baseline (Process 1)", true, false},
	JPEGLosslessSV1:                {JPEGLosslessSV1, "JPEG Lossless, Non-Hierarchical, First-Order Prediction", true, false},
	JPEG2000Lossless:               {JPEG2000Lossless, "JPEG 2000 Lossless Only", true, false},
	RLELossless:                    {RLELossless, "RLE Lossless", true, false},
}
