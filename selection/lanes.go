package selection

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// lanes serializes operations per series. Operations on different series
// run concurrently.
type lanes struct {
	mu       sync.Mutex
	bySeries map[string]*semaphore.Weighted
}

func newLanes() *lanes {
	return &lanes{bySeries: make(map[string]*semaphore.Weighted)}
}

// acquire blocks until the lane of seriesUID is free or ctx is done.
func (l *lanes) acquire(ctx context.Context, seriesUID string) (func(), error) {
	l.mu.Lock()
	sem, ok := l.bySeries[seriesUID]
	if !ok {
		sem = semaphore.NewWeighted(1)
		l.bySeries[seriesUID] = sem
	}
	l.mu.Unlock()

	if err := sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	return func() { sem.Release(1) }, nil
}
