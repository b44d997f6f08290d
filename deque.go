// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sched

import "code.hybscloud.com/atomix"

// Deque is a fixed-capacity work-stealing double-ended queue.
//
// Based on the Chase-Lev algorithm (SPAA 2005). One goroutine owns the
// deque: only the owner may Push and Pop, operating LIFO on the bottom
// end. Any other goroutine may Steal from the top end, so thieves take
// the oldest unit first.
//
// top and bottom increase monotonically; bottom-top is the logical size.
// Both are uint64 cells compared through int64 casts so the transient
// bottom-below-top states of Pop order correctly.
//
// Capacity is fixed at construction. Push reports ErrWouldBlock at
// capacity; the caller decides whether to spill to a shared queue or call
// Grow. Grow is an explicit owner-side operation and must never run
// concurrently with Steal.
type Deque[T any] struct {
	_      pad
	top    atomix.Uint64 // steal end, contended
	_      padShort
	bottom atomix.Uint64 // owner end, single writer
	_      padShort
	buffer []T
	mask   uint64
}

// NewDeque creates a deque with the given capacity.
// Capacity rounds up to the next power of 2.
func NewDeque[T any](capacity int) *Deque[T] {
	if capacity < 2 {
		panic("sched: capacity must be >= 2")
	}
	n := uint64(roundToPow2(capacity))
	return &Deque[T]{
		buffer: make([]T, n),
		mask:   n - 1,
	}
}

// Push adds an element at the bottom (owner only).
// Returns ErrWouldBlock if the deque is at capacity.
func (d *Deque[T]) Push(elem *T) error {
	b := d.bottom.LoadRelaxed()
	t := d.top.LoadAcquire()
	if b-t > d.mask {
		return ErrWouldBlock
	}
	d.buffer[b&d.mask] = *elem
	// Release publish: a thief that acquire-loads the new bottom is
	// guaranteed to observe the slot write above.
	d.bottom.StoreRelease(b + 1)
	return nil
}

// Pop removes and returns the most recently pushed element (owner only).
// Returns ErrWouldBlock if the deque is empty, or ErrContended if a thief
// won the race for the last element.
func (d *Deque[T]) Pop() (T, error) {
	// RMW decrement: the full barrier orders the bottom publication
	// before the top load below, standing in for the seq-cst fence of
	// the original algorithm.
	b := d.bottom.AddAcqRel(^uint64(0))
	t := d.top.LoadAcquire()

	if int64(t) > int64(b) {
		// Already empty; restore bottom.
		d.bottom.StoreRelease(b + 1)
		var zero T
		return zero, ErrWouldBlock
	}

	elem := d.buffer[b&d.mask]
	if int64(t) == int64(b) {
		// Last element: tie-break against concurrent thieves.
		won := d.top.CompareAndSwapAcqRel(t, t+1)
		d.bottom.StoreRelease(b + 1)
		if !won {
			var zero T
			return zero, ErrContended
		}
		// The slot is not cleared here: a losing thief may still be
		// reading it speculatively. It is overwritten by a later Push.
		return elem, nil
	}

	// More than one element left: the bottom end is uncontested.
	var zero T
	d.buffer[b&d.mask] = zero
	return elem, nil
}

// Steal removes and returns the oldest element (any goroutine but the
// owner). Returns ErrWouldBlock if the deque appears empty, or
// ErrContended if another thief or the owner's Pop won the race — the
// source may still hold work, try again or move to the next candidate.
func (d *Deque[T]) Steal() (T, error) {
	t := d.top.LoadAcquire()
	b := d.bottom.LoadAcquire()
	if int64(t) >= int64(b) {
		var zero T
		return zero, ErrWouldBlock
	}
	// Read the slot before claiming it. The owner cannot overwrite this
	// slot until top advances past it (Push rejects at capacity), so the
	// value read here is the one the CAS claims.
	elem := d.buffer[t&d.mask]
	if !d.top.CompareAndSwapAcqRel(t, t+1) {
		var zero T
		return zero, ErrContended
	}
	return elem, nil
}

// Cap returns the deque capacity.
func (d *Deque[T]) Cap() int {
	return int(d.mask + 1)
}

// Grow replaces the buffer with one of at least the given capacity,
// preserving the logical content and indices.
//
// Grow is owner-only and must be externally quiesced: no concurrent
// Steal, Push, or Pop may run while it executes. It is the explicit
// resize operation for callers that prefer growing over spilling.
func (d *Deque[T]) Grow(capacity int) {
	n := uint64(roundToPow2(capacity))
	if n <= d.mask+1 {
		return
	}
	buf := make([]T, n)
	t := d.top.LoadAcquire()
	b := d.bottom.LoadRelaxed()
	for i := t; int64(i) < int64(b); i++ {
		buf[i&(n-1)] = d.buffer[i&d.mask]
	}
	d.buffer = buf
	d.mask = n - 1
}
