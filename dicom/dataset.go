package dicom

import (
	"encoding/binary"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/caio-sobreiro/dicomko/types"
)

// VR (Value Representation) constants
const (
	VR_AE = "AE" // Application Entity
	VR_AS = "AS" // Age String
	VR_AT = "AT" // Attribute Tag
	VR_CS = "CS" // Code String
	VR_DA = "DA" // Date
	VR_DS = "DS" // Decimal String
	VR_DT = "DT" // Date Time
	VR_FL = "FL" // Floating Point Single
	VR_FD = "FD" // Floating Point Double
	VR_IS = "IS" // Integer String
	VR_LO = "LO" // Long String
	VR_LT = "LT" // Long Text
	VR_OB = "OB" // Other Byte
	VR_OD = "OD" // Other Double
	VR_OF = "OF" // Other Float
	VR_OL = "OL" // Other Long
	VR_OV = "OV" // Other Very Long
	VR_OW = "OW" // Other Word
	VR_PN = "PN" // Person Name
	VR_SH = "SH" // Short String
	VR_SL = "SL" // Signed Long
	VR_SQ = "SQ" // Sequence of Items
	VR_SS = "SS" // Signed Short
	VR_ST = "ST" // Short Text
	VR_SV = "SV" // Signed Very Long
	VR_TM = "TM" // Time
	VR_UC = "UC" // Unlimited Characters
	VR_UI = "UI" // Unique Identifier
	VR_UL = "UL" // Unsigned Long
	VR_UN = "UN" // Unknown
	VR_UR = "UR" // Universal Resource
	VR_US = "US" // Unsigned Short
	VR_UT = "UT" // Unlimited Text
	VR_UV = "UV" // Unsigned Very Long
)

// Common transfer syntax UIDs
const (
	TransferSyntaxImplicitVRLittleEndian = types.ImplicitVRLittleEndian
	TransferSyntaxExplicitVRLittleEndian = types.ExplicitVRLittleEndian
)

const undefinedLength = 0xFFFFFFFF

// Item and delimiter tags of encoded sequences.
var (
	tagItem                 = Tag{0xFFFE, 0xE000}
	tagItemDelimitation     = Tag{0xFFFE, 0xE00D}
	tagSequenceDelimitation = Tag{0xFFFE, 0xE0DD}
)

// Tag represents a DICOM tag (group, element)
type Tag struct {
	Group   uint16
	Element uint16
}

// String returns the tag as a string in (GGGG,EEEE) format
func (t Tag) String() string {
	return fmt.Sprintf("(%04x,%04x)", t.Group, t.Element)
}

// Element represents a DICOM data element
type Element struct {
	Tag   Tag
	VR    string
	Value interface{}
}

// Dataset represents a collection of DICOM elements
type Dataset struct {
	Elements map[Tag]*Element
}

// NewDataset creates a new empty dataset
func NewDataset() *Dataset {
	return &Dataset{
		Elements: make(map[Tag]*Element),
	}
}

// AddElement adds an element to the dataset
func (d *Dataset) AddElement(tag Tag, vr string, value interface{}) {
	d.Elements[tag] = &Element{
		Tag:   tag,
		VR:    vr,
		Value: value,
	}
}

// GetElement returns an element by tag
func (d *Dataset) GetElement(tag Tag) (*Element, bool) {
	element, exists := d.Elements[tag]
	return element, exists
}

// Has reports whether the dataset carries a non-empty value for tag.
func (d *Dataset) Has(tag Tag) bool {
	return d.GetString(tag) != ""
}

// GetString returns a string value for a tag
func (d *Dataset) GetString(tag Tag) string {
	if element, exists := d.Elements[tag]; exists {
		if str, ok := element.Value.(string); ok {
			return strings.TrimSpace(str)
		}
	}
	return ""
}

// GetStrings returns a slice of string values for a tag
func (d *Dataset) GetStrings(tag Tag) []string {
	if element, exists := d.Elements[tag]; exists {
		switch v := element.Value.(type) {
		case string:
			// Split by backslash for multiple values
			parts := strings.Split(v, "\\")
			result := make([]string, len(parts))
			for i, part := range parts {
				result[i] = strings.TrimSpace(part)
			}
			return result
		case []string:
			return v
		}
	}
	return nil
}

// GetFloats parses a multi-valued decimal string (DS) element.
// Returns false if the element is missing or any value is not a number.
func (d *Dataset) GetFloats(tag Tag) ([]float64, bool) {
	values := d.GetStrings(tag)
	if len(values) == 0 {
		return nil, false
	}
	out := make([]float64, 0, len(values))
	for _, v := range values {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, false
		}
		out = append(out, f)
	}
	return out, true
}

// GetInt parses an integer string (IS) element.
func (d *Dataset) GetInt(tag Tag) (int, bool) {
	value := d.GetString(tag)
	if value == "" {
		return 0, false
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, false
	}
	return n, true
}

// CopyFrom copies the listed elements of src into d, skipping tags src lacks.
func (d *Dataset) CopyFrom(src *Dataset, tags ...Tag) {
	if src == nil {
		return
	}
	for _, tag := range tags {
		if element, ok := src.Elements[tag]; ok {
			d.AddElement(tag, element.VR, element.Value)
		}
	}
}

// Clone returns a shallow copy of the dataset; element values are shared.
func (d *Dataset) Clone() *Dataset {
	clone := NewDataset()
	for tag, element := range d.Elements {
		clone.AddElement(tag, element.VR, element.Value)
	}
	return clone
}

// sortedTags returns the dataset tags in ascending order (DICOM requires tag ordering)
func (d *Dataset) sortedTags() []Tag {
	tags := make([]Tag, 0, len(d.Elements))
	for tag := range d.Elements {
		tags = append(tags, tag)
	}
	slices.SortFunc(tags, func(a, b Tag) int {
		if a.Group != b.Group {
			return int(a.Group) - int(b.Group)
		}
		return int(a.Element) - int(b.Element)
	})
	return tags
}

// ParseDataset parses a DICOM dataset from raw bytes (Explicit VR Little Endian)
func ParseDataset(data []byte) (*Dataset, error) {
	return parseDataset(data, true), nil
}

// ParseDatasetWithTransferSyntax parses a dataset using the provided transfer syntax.
func ParseDatasetWithTransferSyntax(data []byte, transferSyntaxUID string) (*Dataset, error) {
	switch transferSyntaxUID {
	case TransferSyntaxImplicitVRLittleEndian:
		return parseDataset(data, false), nil
	case "", TransferSyntaxExplicitVRLittleEndian:
		return parseDataset(data, true), nil
	}
	if !types.IsDecodable(transferSyntaxUID) {
		return nil, fmt.Errorf("unsupported transfer syntax: %s", transferSyntaxUID)
	}
	return parseDataset(data, true), nil
}

type elementHeader struct {
	tag         Tag
	vr          string
	length      uint32
	valueOffset int
}

// readHeader decodes the element header at offset.
func readHeader(data []byte, offset int, explicit bool) (elementHeader, bool) {
	// Need at least 8 bytes for tag + VR + length
	if offset+8 > len(data) {
		return elementHeader{}, false
	}
	tag := Tag{
		Group:   binary.LittleEndian.Uint16(data[offset : offset+2]),
		Element: binary.LittleEndian.Uint16(data[offset+2 : offset+4]),
	}

	// Items and delimiters never carry a VR
	if !explicit || tag.Group == 0xFFFE {
		return elementHeader{
			tag:         tag,
			vr:          determineVR(tag),
			length:      binary.LittleEndian.Uint32(data[offset+4 : offset+8]),
			valueOffset: offset + 8,
		}, true
	}

	vr := string(data[offset+4 : offset+6])
	if isLongVR(vr) {
		// Long VR: Tag (4) + VR (2) + Reserved (2) + Length (4) = 12 bytes header
		if offset+12 > len(data) {
			return elementHeader{}, false
		}
		return elementHeader{
			tag:         tag,
			vr:          vr,
			length:      binary.LittleEndian.Uint32(data[offset+8 : offset+12]),
			valueOffset: offset + 12,
		}, true
	}

	// Short VR: Tag (4) + VR (2) + Length (2) = 8 bytes header
	return elementHeader{
		tag:         tag,
		vr:          vr,
		length:      uint32(binary.LittleEndian.Uint16(data[offset+6 : offset+8])),
		valueOffset: offset + 8,
	}, true
}

func parseDataset(data []byte, explicit bool) *Dataset {
	dataset := NewDataset()

	offset := 0
	for offset < len(data) {
		h, ok := readHeader(data, offset, explicit)
		if !ok {
			break
		}

		// Undefined-length sequences and encapsulated pixel data are skipped
		if h.length == undefinedLength {
			next, ok := skipSequence(data, h.valueOffset, explicit)
			if !ok {
				break
			}
			offset = next
			continue
		}

		end := h.valueOffset + int(h.length)
		if end > len(data) {
			break
		}
		dataset.AddElement(h.tag, h.vr, parseElementValue(h.vr, data[h.valueOffset:end]))

		// Move to next element (including padding if odd length)
		offset = end
		if h.length%2 == 1 {
			offset++
		}
	}

	return dataset
}

// skipSequence returns the offset just past the sequence delimitation item
// of an undefined-length sequence whose first item starts at offset.
func skipSequence(data []byte, offset int, explicit bool) (int, bool) {
	for {
		h, ok := readHeader(data, offset, false)
		if !ok {
			return 0, false
		}
		switch h.tag {
		case tagSequenceDelimitation:
			return h.valueOffset, true
		case tagItem:
			if h.length == undefinedLength {
				next, ok := skipItem(data, h.valueOffset, explicit)
				if !ok {
					return 0, false
				}
				offset = next
				continue
			}
			offset = h.valueOffset + int(h.length)
		default:
			return 0, false
		}
	}
}

// skipItem returns the offset just past the item delimitation of an undefined-length item.
func skipItem(data []byte, offset int, explicit bool) (int, bool) {
	for {
		h, ok := readHeader(data, offset, explicit)
		if !ok {
			return 0, false
		}
		if h.tag == tagItemDelimitation {
			return h.valueOffset, true
		}
		if h.length == undefinedLength {
			next, ok := skipSequence(data, h.valueOffset, explicit)
			if !ok {
				return 0, false
			}
			offset = next
			continue
		}
		offset = h.valueOffset + int(h.length)
	}
}

// parseElementValue parses the value based on the VR and raw data
func parseElementValue(vr string, data []byte) interface{} {
	switch vr {
	case VR_US:
		if len(data) >= 2 {
			return binary.LittleEndian.Uint16(data)
		}
	case VR_UL:
		if len(data) >= 4 {
			return binary.LittleEndian.Uint32(data)
		}
	case VR_OB, VR_OW, VR_OD, VR_OF, VR_OL, VR_OV, VR_SQ, VR_UN:
		value := make([]byte, len(data))
		copy(value, data)
		return value
	}

	if len(data) == 0 {
		return ""
	}

	// Remove null padding
	value := string(data)
	if idx := strings.IndexByte(value, 0); idx != -1 {
		value = value[:idx]
	}

	return strings.TrimSpace(value)
}

func isLongVR(vr string) bool {
	switch vr {
	case VR_OB, VR_OD, VR_OF, VR_OL, VR_OW, VR_OV, VR_SQ, VR_SV, VR_UC, VR_UN, VR_UR, VR_UT, VR_UV:
		return true
	}
	return false
}

// determineVR determines the VR based on the tag (simplified mapping)
func determineVR(tag Tag) string {
	switch tag {
	case TagFileMetaInformationGroupLength:
		return VR_UL
	case TagFileMetaInformationVersion, TagPixelData:
		return VR_OB
	case TagSpecificCharacterSet, TagModality, TagPatientSex:
		return VR_CS
	case TagMediaStorageSOPClassUID, TagMediaStorageSOPInstanceUID, TagTransferSyntaxUID,
		TagImplementationClassUID, TagSOPClassUID, TagSOPInstanceUID, TagStudyInstanceUID,
		TagSeriesInstanceUID, TagFrameOfReferenceUID, TagReferencedSOPClassUID,
		TagReferencedSOPInstanceUID:
		return VR_UI
	case TagInstanceCreationDate, TagStudyDate, TagContentDate, TagPatientBirthDate:
		return VR_DA
	case TagInstanceCreationTime, TagStudyTime, TagContentTime:
		return VR_TM
	case TagAccessionNumber, TagStudyID, TagImplementationVersionName:
		return VR_SH
	case TagManufacturer, TagStudyDescription, TagSeriesDescription, TagPatientID:
		return VR_LO
	case TagReferringPhysicianName, TagPatientName:
		return VR_PN
	case TagSeriesNumber, TagInstanceNumber:
		return VR_IS
	case TagImagePositionPatient, TagImageOrientation, TagSliceLocation:
		return VR_DS
	case TagRows, TagColumns, TagBitsAllocated:
		return VR_US
	case TagReferencedSeriesSequence, TagReferencedSOPSequence:
		return VR_SQ
	default:
		return VR_UN // Unknown
	}
}

// EncodeDataset encodes a dataset to bytes (Explicit VR Little Endian)
func (d *Dataset) EncodeDataset() []byte {
	var result []byte

	for _, tag := range d.sortedTags() {
		element := d.Elements[tag]

		// Tag (4 bytes - Little Endian)
		result = binary.LittleEndian.AppendUint16(result, tag.Group)
		result = binary.LittleEndian.AppendUint16(result, tag.Element)

		// VR (2 bytes - ASCII)
		result = append(result, []byte(element.VR)...)

		valueBytes := encodeElementValue(element)

		if isLongVR(element.VR) {
			// Long VR format: VR (2 bytes) + Reserved (2 bytes) + Length (4 bytes)
			result = append(result, 0x00, 0x00)
			result = binary.LittleEndian.AppendUint32(result, uint32(len(valueBytes)))
		} else {
			// Short VR format: VR (2 bytes) + Length (2 bytes)
			if len(valueBytes) > 65534 {
				valueBytes = valueBytes[:65534]
			}
			result = binary.LittleEndian.AppendUint16(result, uint16(len(valueBytes)))
		}

		result = append(result, valueBytes...)
	}

	return result
}

// EncodeDatasetWithTransferSyntax encodes a dataset using the provided transfer syntax.
func EncodeDatasetWithTransferSyntax(dataset *Dataset, transferSyntaxUID string) ([]byte, error) {
	if dataset == nil {
		return nil, nil
	}

	switch transferSyntaxUID {
	case "", TransferSyntaxExplicitVRLittleEndian:
		return dataset.EncodeDataset(), nil
	case TransferSyntaxImplicitVRLittleEndian:
		return encodeImplicitVRDataset(dataset), nil
	default:
		return nil, fmt.Errorf("unsupported transfer syntax for encoding: %s", transferSyntaxUID)
	}
}

func encodeImplicitVRDataset(dataset *Dataset) []byte {
	var result []byte

	for _, tag := range dataset.sortedTags() {
		element := dataset.Elements[tag]

		result = binary.LittleEndian.AppendUint16(result, tag.Group)
		result = binary.LittleEndian.AppendUint16(result, tag.Element)

		valueBytes := encodeElementValue(element)
		result = binary.LittleEndian.AppendUint32(result, uint32(len(valueBytes)))
		result = append(result, valueBytes...)
	}

	return result
}

// encodeElementValue encodes an element value to bytes, padded to even length
func encodeElementValue(element *Element) []byte {
	var value []byte
	switch v := element.Value.(type) {
	case string:
		value = []byte(strings.TrimRight(v, "\x00"))
	case []string:
		value = []byte(strings.TrimRight(strings.Join(v, "\\"), "\x00"))
	case []byte:
		value = v
	case int:
		value = []byte(strconv.Itoa(v))
	case float64:
		value = []byte(strconv.FormatFloat(v, 'f', -1, 64))
	case uint16:
		value = binary.LittleEndian.AppendUint16(nil, v)
	case uint32:
		value = binary.LittleEndian.AppendUint32(nil, v)
	case nil:
		value = nil
	default:
		value = []byte(fmt.Sprintf("%v", v))
	}

	// DICOM requires even lengths: UIDs and binary values pad with NUL, text with space
	if len(value)%2 == 1 {
		padding := byte(0x20)
		switch element.VR {
		case VR_UI, VR_OB, VR_UN:
			padding = 0x00
		}
		value = append(value, padding)
	}
	return value
}
