package tracking

import (
	"context"
	"sync"
	"sync/atomic"
)

// Tracker counts requests that have been admitted but not yet completed, and lets a caller
// wait until there are none left.
//
// Begin must be called before the work is handed off to another goroutine, so that Drain
// never misses work that is about to start.
type Tracker struct {
	wg          sync.WaitGroup
	outstanding atomic.Int64
}

func NewTracker() *Tracker {
	return &Tracker{}
}

func (t *Tracker) Begin() {
	t.outstanding.Add(1)
	t.wg.Add(1)
}

// Panics if called more times than Begin
func (t *Tracker) End() {
	if t.outstanding.Add(-1) < 0 {
		panic("tracking: End called without matching Begin")
	}
	t.wg.Done()
}

func (t *Tracker) Outstanding() int64 {
	return t.outstanding.Load()
}

// Block until all begun work has ended
func (t *Tracker) Drain() {
	t.wg.Wait()
}

// Like Drain, but gives up when ctx is done. The outstanding work keeps running.
func (t *Tracker) DrainContext(ctx context.Context) error {
	drained := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(drained)
	}()

	select {
	case <-drained:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
