package types

import (
	"math/big"

	"github.com/google/uuid"
)

// UUIDDerivedRoot is the UID root for UIDs derived from a UUID (DICOM Part 5, B.2).
const UUIDDerivedRoot = "2.25"

// NewUID returns a fresh globally unique DICOM UID of the form 2.25.<uuid as integer>.
func NewUID() string {
	return UIDFromUUID(uuid.New())
}

// UIDFromUUID converts a UUID to its 2.25 DICOM UID representation.
func UIDFromUUID(id uuid.UUID) string {
	n := new(big.Int).SetBytes(id[:])
	return UUIDDerivedRoot + "." + n.String()
}

// UIDFromName derives a stable UID from name, useful for synthetic series that
// must produce the same identifiers on every run.
func UIDFromName(name string) string {
	return UIDFromUUID(uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)))
}
