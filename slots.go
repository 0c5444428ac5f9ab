package psconv

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// SlotAllocator is a counting semaphore bounding concurrent engine
// invocations. Waiters are not promised any particular admission order.
type SlotAllocator struct {
	sem      *semaphore.Weighted
	capacity int64
	inUse    atomic.Int64
	peak     atomic.Int64
}

// NewSlotAllocator creates an allocator with the given capacity.
// Capacities below 1 are raised to 1.
func NewSlotAllocator(capacity int) *SlotAllocator {
	if capacity < 1 {
		capacity = 1
	}
	return &SlotAllocator{
		sem:      semaphore.NewWeighted(int64(capacity)),
		capacity: int64(capacity),
	}
}

// Acquire blocks until a slot is free or ctx is done. On failure it returns
// the context error and the allocator is left unchanged.
func (a *SlotAllocator) Acquire(ctx context.Context) error {
	// semaphore.Weighted may grant a free slot to an already-cancelled
	// context; refuse here so a dead caller never holds a slot.
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := a.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	a.admit()
	return nil
}

// TryAcquire takes a slot without blocking and reports whether it did.
func (a *SlotAllocator) TryAcquire() bool {
	if !a.sem.TryAcquire(1) {
		return false
	}
	a.admit()
	return true
}

// Release returns a slot. Releasing more slots than were acquired panics.
func (a *SlotAllocator) Release() {
	if a.inUse.Add(-1) < 0 {
		a.inUse.Add(1)
		panic("psconv: slot released without matching acquire")
	}
	a.sem.Release(1)
}

func (a *SlotAllocator) admit() {
	n := a.inUse.Add(1)
	for {
		p := a.peak.Load()
		if n <= p || a.peak.CompareAndSwap(p, n) {
			return
		}
	}
}

// Capacity returns the total number of slots.
func (a *SlotAllocator) Capacity() int { return int(a.capacity) }

// InUse returns the number of slots currently held.
func (a *SlotAllocator) InUse() int { return int(a.inUse.Load()) }

// Available returns the number of free slots.
func (a *SlotAllocator) Available() int { return int(a.capacity - a.inUse.Load()) }

// Peak returns the highest number of slots ever held at once.
func (a *SlotAllocator) Peak() int { return int(a.peak.Load()) }
