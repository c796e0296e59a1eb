package series

import (
	"cmp"
	"fmt"
)

// Order sorts the images of a series and maps each image onto the scalar
// used by nearest-index lookups.
type Order interface {
	Name() string
	Compare(a, b *Image) int
	// Key returns the scalar position of img, or false if img has none.
	Key(img *Image) (float64, bool)
}

// Built-in orders.
var (
	// BySliceLocation orders images by Location. Images without a position
	// sort after the others by instance number.
	BySliceLocation Order = sliceLocationOrder{}

	// ByInstanceNumber orders images by Instance Number.
	ByInstanceNumber Order = instanceNumberOrder{}
)

// ParseOrder returns the built-in order with the given name.
func ParseOrder(name string) (Order, error) {
	switch name {
	case "", BySliceLocation.Name():
		return BySliceLocation, nil
	case ByInstanceNumber.Name():
		return ByInstanceNumber, nil
	}
	return nil, fmt.Errorf("unknown series order: %q", name)
}

type sliceLocationOrder struct{}

func (sliceLocationOrder) Name() string { return "slice-location" }

func (sliceLocationOrder) Compare(a, b *Image) int {
	switch {
	case a.HasPosition && !b.HasPosition:
		return -1
	case !a.HasPosition && b.HasPosition:
		return 1
	case a.HasPosition && b.HasPosition:
		if c := cmp.Compare(a.Location(), b.Location()); c != 0 {
			return c
		}
	}
	return cmp.Compare(a.InstanceNumber, b.InstanceNumber)
}

func (sliceLocationOrder) Key(img *Image) (float64, bool) {
	if !img.HasPosition {
		return 0, false
	}
	return img.Location(), true
}

type instanceNumberOrder struct{}

func (instanceNumberOrder) Name() string { return "instance-number" }

func (instanceNumberOrder) Compare(a, b *Image) int {
	return cmp.Compare(a.InstanceNumber, b.InstanceNumber)
}

func (instanceNumberOrder) Key(img *Image) (float64, bool) {
	return float64(img.InstanceNumber), true
}
