// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sched

import "time"

// WorkUnit is one schedulable item: an opaque payload plus the callback
// that executes it.
//
// A WorkUnit is immutable once submitted. Ownership follows the unit:
// whichever structure currently holds it (queue, deque, or batch) owns it,
// and the executing worker owns it from the moment it is obtained until
// Run returns. Cancellation is not supported at this layer; once obtained,
// a unit runs to completion. Implement cooperative cancellation inside Run.
type WorkUnit struct {
	// Payload is an opaque reference passed through to Run.
	Payload any

	// CtxLen is the execution context buffer size in bytes. The dispatcher
	// materializes a pool-backed buffer of this size before running the
	// unit and returns it to the pool afterwards. Zero means the unit
	// needs no context.
	CtxLen int

	// Run executes the unit. ctx is valid only for the duration of the
	// call; the buffer is recycled after Run returns.
	Run func(payload any, ctx []byte)
}

// Clock returns a monotonic timestamp in nanoseconds. The zero origin is
// arbitrary; only differences are meaningful.
type Clock func() int64

var processStart = time.Now()

// MonotonicClock is the default Clock, anchored at process start.
func MonotonicClock() int64 {
	return int64(time.Since(processStart))
}

// Producer is the interface for submitting units.
//
// The element is passed by pointer to avoid copying large structs. The
// queue stores a copy of the pointed-to value, so the original can be
// modified after Enqueue returns.
type Producer[T any] interface {
	// Enqueue adds an element (non-blocking).
	// Returns nil on success, ErrWouldBlock if the structure is full.
	Enqueue(elem *T) error
}

// Consumer is the interface for obtaining units.
type Consumer[T any] interface {
	// Dequeue removes and returns an element (non-blocking).
	// Returns (zero-value, ErrWouldBlock) if nothing is available.
	Dequeue() (T, error)
}

// Stealer is the interface for taking a unit from another worker's deque.
//
// A failed steal distinguishes "empty" (ErrWouldBlock) from "lost the
// race" (ErrContended): the former means move on, the latter means the
// source may still hold work.
type Stealer[T any] interface {
	Steal() (T, error)
}

// roundToPow2 rounds n up to the next power of 2.
func roundToPow2(n int) int {
	if n < 2 {
		return 2
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return n + 1
}

// pad is cache line padding to prevent false sharing.
type pad [64]byte

// padShort is padding to fill cache line after 8-byte field.
type padShort [64 - 8]byte
