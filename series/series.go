package series

import (
	"math"
	"slices"
	"sync"
)

// Series is an ordered collection of images sharing a Series Instance UID.
//
// Every query takes the visibility predicate and the order explicitly, so a
// single Series can back several views with different filters. A nil order
// means BySliceLocation.
type Series struct {
	UID string

	mu     sync.RWMutex
	images []*Image
	sorted map[string][]*Image
}

// New creates a series holding images
func New(uid string, images ...*Image) *Series {
	s := &Series{UID: uid}
	for _, img := range images {
		s.Add(img)
	}
	return s
}

// Add appends img to the series. Adding an image whose SOP Instance UID is
// already present replaces it.
func (s *Series) Add(img *Image) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sorted = nil
	for i, existing := range s.images {
		if existing.SOPInstanceUID == img.SOPInstanceUID {
			s.images[i] = img
			return
		}
	}
	s.images = append(s.images, img)
}

// Lookup returns the image with the given SOP Instance UID
func (s *Series) Lookup(sopInstanceUID string) (*Image, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, img := range s.images {
		if img.SOPInstanceUID == sopInstanceUID {
			return img, true
		}
	}
	return nil, false
}

// ordered returns the images sorted by order. The result is cached per
// order and must not be modified.
func (s *Series) ordered(order Order) []*Image {
	if order == nil {
		order = BySliceLocation
	}

	s.mu.RLock()
	cached, ok := s.sorted[order.Name()]
	s.mu.RUnlock()
	if ok {
		return cached
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if cached, ok := s.sorted[order.Name()]; ok {
		return cached
	}
	images := slices.Clone(s.images)
	slices.SortStableFunc(images, order.Compare)
	if s.sorted == nil {
		s.sorted = make(map[string][]*Image)
	}
	s.sorted[order.Name()] = images
	return images
}

// Images returns the visible images in order.
func (s *Series) Images(p Predicate, order Order) []*Image {
	all := s.ordered(order)
	out := make([]*Image, 0, len(all))
	for _, img := range all {
		if accepts(p, img) {
			out = append(out, img)
		}
	}
	return out
}

// Size returns the number of images admitted by p.
func (s *Series) Size(p Predicate) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p == nil {
		return len(s.images)
	}
	n := 0
	for _, img := range s.images {
		if p.Accept(img) {
			n++
		}
	}
	return n
}

// At returns the image at index among the visible images, or nil if index is
// out of range.
func (s *Series) At(index int, p Predicate, order Order) *Image {
	if index < 0 {
		return nil
	}
	for _, img := range s.ordered(order) {
		if !accepts(p, img) {
			continue
		}
		if index == 0 {
			return img
		}
		index--
	}
	return nil
}

// IndexOf returns the index of img among the visible images, or -1 if img is
// not part of the series or p hides it.
func (s *Series) IndexOf(img *Image, p Predicate, order Order) int {
	if img == nil {
		return -1
	}
	index := 0
	for _, candidate := range s.ordered(order) {
		if !accepts(p, candidate) {
			continue
		}
		if candidate.SOPInstanceUID == img.SOPInstanceUID {
			return index
		}
		index++
	}
	return -1
}

// NearestIndex returns the index, among the images admitted by p, of the
// image whose order key is closest to location.
//
// Ties keep the image that comes first in order. Images without a key are
// skipped. A positive tileOffset is added to the result while it stays inside
// the visible range, for mosaic layouts where one position spans several
// slots. Returns -1 if no visible image has a key.
func (s *Series) NearestIndex(location float64, tileOffset int, p Predicate, order Order) int {
	if order == nil {
		order = BySliceLocation
	}
	images := s.Images(p, order)

	nearest := -1
	best := math.Inf(1)
	for i, img := range images {
		key, ok := order.Key(img)
		if !ok {
			continue
		}
		distance := math.Abs(key - location)
		if distance < best {
			nearest, best = i, distance
			if distance == 0 {
				break
			}
		}
	}

	if nearest < 0 {
		return -1
	}
	if tileOffset > 0 && nearest+tileOffset < len(images) {
		return nearest + tileOffset
	}
	return nearest
}
