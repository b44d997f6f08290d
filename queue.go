// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sched

import (
	"sync/atomic"

	"code.hybscloud.com/spin"
)

// Queue is an unbounded multi-producer multi-consumer FIFO handoff queue.
//
// Based on the Michael-Scott algorithm (PODC 1996): a singly linked list
// with atomic head/tail pointers and a permanent sentinel node. Enqueue
// links a node after the current tail and swings tail forward best-effort;
// if the swing fails, the next operation by any thread helps complete it.
// Dequeue swings head to the first real node, which then becomes the new
// sentinel.
//
// Node reclamation is delegated to the garbage collector: a retired
// sentinel stays alive as long as any concurrent operation still holds a
// reference to it, so the use-after-free hazard of manually reclaimed
// Michael-Scott queues cannot occur. The value held by a retired sentinel
// is not cleared (clearing would race with concurrent readers); it is
// pinned only until head moves past the next node.
//
// Ordering: dequeue order is a linearization consistent with each
// producer's own enqueue order.
//
// Memory: one heap node per element; O(1) when empty.
type Queue[T any] struct {
	_    pad
	head atomic.Pointer[qnode[T]]
	_    pad
	tail atomic.Pointer[qnode[T]]
	_    pad
}

type qnode[T any] struct {
	value T
	next  atomic.Pointer[qnode[T]]
}

// NewQueue creates an empty unbounded MPMC queue.
func NewQueue[T any]() *Queue[T] {
	q := &Queue[T]{}
	sentinel := new(qnode[T])
	q.head.Store(sentinel)
	q.tail.Store(sentinel)
	return q
}

// Enqueue adds an element to the queue.
// The queue is unbounded, so Enqueue always succeeds; the error return
// exists for Producer interface symmetry and is always nil.
func (q *Queue[T]) Enqueue(elem *T) error {
	n := &qnode[T]{value: *elem}
	sw := spin.Wait{}
	for {
		tail := q.tail.Load()
		next := tail.next.Load()
		if tail != q.tail.Load() {
			// Stale tail snapshot.
			continue
		}
		if next == nil {
			if tail.next.CompareAndSwap(nil, n) {
				// Best-effort swing; a failed swing is completed by
				// whichever operation observes the lag next.
				q.tail.CompareAndSwap(tail, n)
				return nil
			}
		} else {
			// Help a stalled enqueuer finish its tail swing.
			q.tail.CompareAndSwap(tail, next)
		}
		sw.Once()
	}
}

// Dequeue removes and returns the oldest element.
// Returns (zero-value, ErrWouldBlock) if the queue is empty.
func (q *Queue[T]) Dequeue() (T, error) {
	sw := spin.Wait{}
	for {
		head := q.head.Load()
		tail := q.tail.Load()
		next := head.next.Load()
		if head != q.head.Load() {
			continue
		}
		if head == tail {
			if next == nil {
				var zero T
				return zero, ErrWouldBlock
			}
			// Tail lagged behind a completed link; help and retry.
			q.tail.CompareAndSwap(tail, next)
		} else {
			elem := next.value
			if q.head.CompareAndSwap(head, next) {
				// head (the old sentinel) is now garbage; the collector
				// reclaims it once no concurrent dequeuer still holds it.
				return elem, nil
			}
		}
		sw.Once()
	}
}
