package keyobject

import "sync/atomic"

// Clock hands out monotonic document versions. Versions order documents for
// the "most recent" comparison without depending on wall-clock time.
type Clock interface {
	Next() uint64
	// Observe moves the clock past a version seen elsewhere, such as one
	// loaded from a store.
	Observe(version uint64)
}

// CounterClock is a Clock backed by an atomic counter
type CounterClock struct {
	n atomic.Uint64
}

// NewCounterClock returns a clock whose first version is 1
func NewCounterClock() *CounterClock {
	return &CounterClock{}
}

func (c *CounterClock) Next() uint64 {
	return c.n.Add(1)
}

func (c *CounterClock) Observe(version uint64) {
	for {
		current := c.n.Load()
		if version <= current || c.n.CompareAndSwap(current, version) {
			return
		}
	}
}
