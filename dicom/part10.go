package dicom

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/caio-sobreiro/dicomko/types"
)

const (
	preambleLength = 128
	part10Prefix   = "DICM"

	// ImplementationClassUID identifies files written by this module.
	ImplementationClassUID = "2.25.87145873245398125938592740561393011517"
	// ImplementationVersionName is written into the file meta information.
	ImplementationVersionName = "DICOMKO_1"
)

// StripPart10Header removes the DICOM Part 10 preamble and File Meta Information
// to extract just the dataset.
//
// DICOM Part 10 files contain:
//   - 128 byte preamble
//   - 4 byte "DICM" prefix
//   - File Meta Information elements (group 0x0002)
//   - Dataset (the actual DICOM data)
//
// Returns the dataset bytes and the transfer syntax declared in the meta information.
func StripPart10Header(data []byte) ([]byte, string, error) {
	if len(data) < preambleLength+4 {
		return nil, "", fmt.Errorf("data too short to be DICOM Part 10 (need at least 132 bytes, got %d)", len(data))
	}
	if string(data[preambleLength:preambleLength+4]) != part10Prefix {
		return nil, "", fmt.Errorf("not a valid DICOM Part 10 file (missing DICM prefix at offset 128)")
	}

	// File meta information is always explicit VR little endian
	offset := preambleLength + 4
	var transferSyntaxUID string
	for {
		h, ok := readHeader(data, offset, true)
		if !ok || h.tag.Group != 0x0002 {
			break
		}
		end := h.valueOffset + int(h.length)
		if end > len(data) {
			break
		}
		if h.tag == TagTransferSyntaxUID {
			transferSyntaxUID, _ = parseElementValue(VR_UI, data[h.valueOffset:end]).(string)
		}
		offset = end
	}

	if transferSyntaxUID != "" {
		slog.Debug("Found Transfer Syntax UID in File Meta Information",
			"transfer_syntax", transferSyntaxUID,
			"dataset_start_offset", offset)
	}

	if offset >= len(data) {
		return nil, "", fmt.Errorf("failed to find dataset after File Meta Information")
	}

	return data[offset:], transferSyntaxUID, nil
}

// HasPart10Header checks if the data starts with a DICOM Part 10 header.
//
// Returns true if the data contains the 128-byte preamble followed by "DICM".
func HasPart10Header(data []byte) bool {
	if len(data) < preambleLength+4 {
		return false
	}
	return string(data[preambleLength:preambleLength+4]) == part10Prefix
}

// ReadPart10 parses a Part 10 file held in memory and returns its dataset
// together with the transfer syntax used to decode it.
func ReadPart10(data []byte) (*Dataset, string, error) {
	body, transferSyntaxUID, err := StripPart10Header(data)
	if err != nil {
		return nil, "", err
	}
	if transferSyntaxUID == "" {
		transferSyntaxUID = TransferSyntaxExplicitVRLittleEndian
	}
	if types.IsCompressed(transferSyntaxUID) {
		// only the header is read, pixel data stays encapsulated
		slog.Debug("Reading header of compressed file",
			"transfer_syntax", types.GetTransferSyntaxInfo(transferSyntaxUID).Name)
	}
	dataset, err := ParseDatasetWithTransferSyntax(body, transferSyntaxUID)
	if err != nil {
		return nil, "", err
	}
	return dataset, transferSyntaxUID, nil
}

// ReadPart10File reads and parses the Part 10 file at path.
func ReadPart10File(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read DICOM file: %w", err)
	}
	dataset, _, err := ReadPart10(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return dataset, nil
}

// WritePart10 writes dataset as a Part 10 file using the given transfer syntax.
// The SOP Class and SOP Instance UIDs of the dataset become the media storage UIDs.
func WritePart10(w io.Writer, dataset *Dataset, transferSyntaxUID string) error {
	sopClassUID := dataset.GetString(TagSOPClassUID)
	sopInstanceUID := dataset.GetString(TagSOPInstanceUID)
	if sopClassUID == "" || sopInstanceUID == "" {
		return fmt.Errorf("dataset is missing SOP Class or SOP Instance UID")
	}
	if transferSyntaxUID == "" {
		transferSyntaxUID = types.ExplicitVRLittleEndian
	}

	body, err := EncodeDatasetWithTransferSyntax(dataset, transferSyntaxUID)
	if err != nil {
		return err
	}

	meta := NewDataset()
	meta.AddElement(TagFileMetaInformationVersion, VR_OB, []byte{0x00, 0x01})
	meta.AddElement(TagMediaStorageSOPClassUID, VR_UI, sopClassUID)
	meta.AddElement(TagMediaStorageSOPInstanceUID, VR_UI, sopInstanceUID)
	meta.AddElement(TagTransferSyntaxUID, VR_UI, transferSyntaxUID)
	meta.AddElement(TagImplementationClassUID, VR_UI, ImplementationClassUID)
	meta.AddElement(TagImplementationVersionName, VR_SH, ImplementationVersionName)
	metaBytes := meta.EncodeDataset()

	groupLength := NewDataset()
	groupLength.AddElement(TagFileMetaInformationGroupLength, VR_UL, uint32(len(metaBytes)))

	var buf bytes.Buffer
	buf.Write(make([]byte, preambleLength))
	buf.WriteString(part10Prefix)
	buf.Write(groupLength.EncodeDataset())
	buf.Write(metaBytes)
	buf.Write(body)

	_, err = w.Write(buf.Bytes())
	return err
}
