// Package barrier implements a reusable, cyclic barrier for the fixed-width
// worker pool that drives the clustering engine's iteration loop. It is the
// Go stand-in for the itk::Barrier primitive the original filter coordinates
// its threads with: all T participants must arrive at Wait before any of
// them is released, and the barrier can be waited on again for the next
// phase without re-creating it.
package barrier

import "sync"

// Barrier releases all Width participants only once Width of them have
// called Wait. It is safe to call Wait repeatedly, cycle after cycle, from
// the same set of goroutines.
type Barrier struct {
	mu       sync.Mutex
	cond     *sync.Cond
	width    int
	arrived  int
	gen      int
	canceled bool
}

// New creates a barrier for exactly width participants. width must be >= 1.
func New(width int) *Barrier {
	b := &Barrier{width: width}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// Wait blocks until Width goroutines (across the lifetime of this call, not
// cumulatively) have called Wait, then releases all of them together. It
// reports whether the barrier was canceled while this goroutine was
// waiting; callers should treat a canceled wait as "stop, do not proceed to
// the next phase".
func (b *Barrier) Wait() (canceled bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.canceled {
		return true
	}

	gen := b.gen
	b.arrived++

	if b.arrived == b.width {
		b.arrived = 0
		b.gen++
		b.cond.Broadcast()
		return b.canceled
	}

	for gen == b.gen && !b.canceled {
		b.cond.Wait()
	}
	return b.canceled
}

// Cancel releases every goroutine currently blocked in Wait (and every
// future call to Wait) with canceled=true. Cancel is idempotent.
func (b *Barrier) Cancel() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.canceled = true
	b.cond.Broadcast()
}
