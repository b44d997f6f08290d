// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sched

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/iox"
)

// Fairness timeout bands, derived from the wait-time average (all µs).
const (
	fairTimeoutShort = 500  // avg < 100µs
	fairTimeoutMid   = 1000 // 100µs <= avg < 1000µs
	fairTimeoutLong  = 2000 // avg >= 1000µs
)

// FairMutex is a mutual exclusion lock with wait-time feedback.
//
// Every acquisition that had to wait reports its observed wait time w;
// the mutex keeps an exponential moving average avg ← (avg*7 + w) / 8 and
// derives a fairness timeout from it: 500µs while waits are short, 1000µs
// for moderate waits, 2000µs under heavy queueing. A waiter whose wait
// exceeds the current timeout claims a reservation: fresh arrivals stand
// down until the reserved waiter has acquired, bounding starvation without
// paying full FIFO handoff cost on every acquisition.
//
// Acquisition spins briefly, then escalates through [iox.Backoff]. There
// is no timeout; callers needing bounded waiting implement it above this
// layer.
type FairMutex struct {
	_         pad
	state     atomix.Uint64 // 0 free, 1 held
	_         padShort
	reserved  atomix.Uint64 // ticket of the prioritized waiter, 0 none
	_         padShort
	tickets   atomix.Uint64 // waiter ticket source, first issue is 1
	_         padShort
	avgWaitUs atomix.Int64
	timeoutUs atomix.Int64
	clock     Clock
}

// NewFairMutex creates an unlocked FairMutex using the given clock.
// A nil clock selects MonotonicClock.
func NewFairMutex(clock Clock) *FairMutex {
	if clock == nil {
		clock = MonotonicClock
	}
	m := &FairMutex{clock: clock}
	m.timeoutUs.StoreRelaxed(fairTimeoutShort)
	return m
}

// Lock acquires the mutex, blocking until it is held.
func (m *FairMutex) Lock() {
	// Fast path: free and unreserved.
	if m.reserved.LoadAcquire() == 0 && m.state.CompareAndSwapAcqRel(0, 1) {
		return
	}

	start := m.clock()
	ticket := m.tickets.AddAcqRel(1)
	backoff := iox.Backoff{}
	for {
		r := m.reserved.LoadAcquire()
		if r == 0 || r == ticket {
			if m.state.CompareAndSwapAcqRel(0, 1) {
				if r == ticket {
					m.reserved.CompareAndSwapAcqRel(ticket, 0)
				}
				m.observeWait((m.clock() - start) / 1000)
				return
			}
		}
		if r == 0 {
			waited := (m.clock() - start) / 1000
			if waited > m.timeoutUs.LoadRelaxed() {
				// Starvation band crossed: claim priority over fresh
				// arrivals until we get the lock.
				m.reserved.CompareAndSwapAcqRel(0, ticket)
			}
		}
		backoff.Wait()
	}
}

// TryLock attempts to acquire the mutex without waiting.
// It refuses while a starved waiter holds the reservation.
func (m *FairMutex) TryLock() bool {
	return m.reserved.LoadAcquire() == 0 && m.state.CompareAndSwapAcqRel(0, 1)
}

// Unlock releases the mutex. Calling Unlock without holding the mutex is
// a caller contract violation and is not runtime-checked.
func (m *FairMutex) Unlock() {
	m.state.StoreRelease(0)
}

// observeWait folds one observed wait time (µs) into the moving average
// and re-derives the fairness timeout. Called by the thread that waited,
// while it holds the mutex, so updates never race with each other.
func (m *FairMutex) observeWait(waitUs int64) {
	avg := (m.avgWaitUs.LoadRelaxed()*7 + waitUs) / 8
	m.avgWaitUs.StoreRelaxed(avg)
	switch {
	case avg < 100:
		m.timeoutUs.StoreRelaxed(fairTimeoutShort)
	case avg < 1000:
		m.timeoutUs.StoreRelaxed(fairTimeoutMid)
	default:
		m.timeoutUs.StoreRelaxed(fairTimeoutLong)
	}
}

// WaitAvg returns the current wait-time moving average in microseconds.
func (m *FairMutex) WaitAvg() int64 {
	return m.avgWaitUs.LoadRelaxed()
}

// FairnessTimeout returns the current fairness timeout in microseconds.
func (m *FairMutex) FairnessTimeout() int64 {
	return m.timeoutUs.LoadRelaxed()
}
