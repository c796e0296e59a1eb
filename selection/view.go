package selection

import (
	"sync"

	"github.com/caio-sobreiro/dicomko/keyobject"
	"github.com/caio-sobreiro/dicomko/series"
)

// Presenter receives the presentation effects of filter updates.
type Presenter interface {
	// IsFocused reports whether the view is the one the user is working in.
	IsFocused() bool
	// SetScrollBounds updates the navigation control of a focused view.
	// value is one-based.
	SetScrollBounds(min, max, value int)
	// ShowImage displays img in an unfocused view.
	ShowImage(img *series.Image)
	// RefreshFilterIndicator redraws the "filter active" indicator.
	RefreshFilterIndicator(enabled bool)
}

// State is the selection state of one view.
type State struct {
	// Selected is the document references are recorded into, nil for none.
	Selected *keyobject.Document
	// FilterEnabled is meaningful only when FilterSet is true.
	FilterEnabled bool
	FilterSet     bool
	// Filter restricts the visible images, nil for the whole series.
	Filter series.Predicate
	// Index is the active image among the visible ones, -1 for none.
	Index int
}

// View is a display of one series, owning its selection state.
type View struct {
	mu          sync.RWMutex
	series      *series.Series
	image       *series.Image
	state       State
	presenter   Presenter
	order       series.Order
	stackOffset float64
	tileOffset  int
}

// ViewOption configures a View
type ViewOption func(*View)

// WithOrder sets the order images are navigated in
func WithOrder(order series.Order) ViewOption {
	return func(v *View) {
		v.order = order
	}
}

// WithStackOffset shifts the location used to find the nearest visible image
func WithStackOffset(offset float64) ViewOption {
	return func(v *View) {
		v.stackOffset = offset
	}
}

// WithTileOffset sets the slot offset of a mosaic layout
func WithTileOffset(offset int) ViewOption {
	return func(v *View) {
		v.tileOffset = offset
	}
}

// NewView creates a view on s showing its first image. A nil presenter
// behaves as an unfocused view that draws nothing.
func NewView(s *series.Series, presenter Presenter, opts ...ViewOption) *View {
	v := &View{
		series:    s,
		presenter: presenter,
		order:     series.BySliceLocation,
		state:     State{Index: -1},
	}
	for _, opt := range opts {
		opt(v)
	}
	if v.presenter == nil {
		v.presenter = nopPresenter{}
	}
	if s != nil {
		if img := s.At(0, nil, v.order); img != nil {
			v.image = img
			v.state.Index = 0
		}
	}
	return v
}

// Series returns the series shown by the view
func (v *View) Series() *series.Series {
	return v.series
}

// Order returns the navigation order of the view
func (v *View) Order() series.Order {
	return v.order
}

// Image returns the image currently shown
func (v *View) Image() *series.Image {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.image
}

// State returns a copy of the selection state
func (v *View) State() State {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.state
}

// Navigate shows the visible image at index and reports whether it exists.
func (v *View) Navigate(index int) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	img := v.series.At(index, v.state.Filter, v.order)
	if img == nil {
		return false
	}
	v.image = img
	v.state.Index = index
	return true
}

// Visible returns the images the current filter admits, in order
func (v *View) Visible() []*series.Image {
	v.mu.RLock()
	filter := v.state.Filter
	v.mu.RUnlock()
	return v.series.Images(filter, v.order)
}

func (v *View) commit(state State, img *series.Image) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state = state
	v.image = img
}

type nopPresenter struct{}

func (nopPresenter) IsFocused() bool                    { return false }
func (nopPresenter) SetScrollBounds(min, max, value int) {}
func (nopPresenter) ShowImage(img *series.Image)         {}
func (nopPresenter) RefreshFilterIndicator(enabled bool) {}
