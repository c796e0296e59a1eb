package series

// Predicate decides whether an image is visible. A nil Predicate admits
// every image.
type Predicate interface {
	Accept(img *Image) bool
}

// PredicateFunc adapts a function to Predicate
type PredicateFunc func(img *Image) bool

// Accept implements Predicate
func (f PredicateFunc) Accept(img *Image) bool {
	return f(img)
}

func accepts(p Predicate, img *Image) bool {
	return p == nil || p.Accept(img)
}
