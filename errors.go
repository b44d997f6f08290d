// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sched

import (
	"errors"

	"code.hybscloud.com/iox"
)

// ErrWouldBlock indicates the operation cannot proceed immediately.
//
// For Queue.Dequeue and Deque.Pop/Steal: no unit is available (empty).
// For Deque.Push: the deque is at capacity (caller should spill to the
// shared queue or Grow).
//
// ErrWouldBlock is a control flow signal, not a failure. The caller should
// retry later, move on to the next work source, or apply backpressure.
//
// This is an alias for [iox.ErrWouldBlock] for ecosystem consistency.
var ErrWouldBlock = iox.ErrWouldBlock

// ErrContended indicates an operation lost a race with a concurrent thief
// or the deque owner: no unit was obtained, but the structure was not
// observed empty. Semantically distinct from ErrWouldBlock — the caller
// should retry or try the next candidate rather than treat the source as
// drained.
var ErrContended = errors.New("sched: lost race, no unit obtained")

// ErrNotRetained indicates TieredPool.Put declined a returned buffer:
// either the matching size class is at capacity or the size bypasses the
// pool entirely. The buffer is simply left to the garbage collector; the
// rejection is reported so callers never assume the pool took ownership.
var ErrNotRetained = errors.New("sched: buffer not retained by pool")

// IsWouldBlock reports whether err indicates the operation would block.
// Delegates to [iox.IsWouldBlock] for wrapped error support.
func IsWouldBlock(err error) bool {
	return iox.IsWouldBlock(err)
}

// IsContended reports whether err indicates a lost race (transient
// contention, retryable).
func IsContended(err error) bool {
	return errors.Is(err, ErrContended)
}

// IsSemantic reports whether err is a control flow signal (not a failure).
// True for ErrContended, ErrNotRetained, and any signal [iox.IsSemantic]
// recognizes.
func IsSemantic(err error) bool {
	return errors.Is(err, ErrContended) || errors.Is(err, ErrNotRetained) || iox.IsSemantic(err)
}

// IsNonFailure reports whether err represents a non-failure condition.
// Returns true for nil and for any semantic control flow signal.
func IsNonFailure(err error) bool {
	return err == nil || IsSemantic(err) || iox.IsNonFailure(err)
}
