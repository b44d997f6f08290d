// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sched

import (
	"runtime"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// SpinLock is a contention-aware spin-then-yield mutual exclusion lock.
//
// The spin budget adapts to observed contention: each time a thread
// exhausts its budget without acquiring the lock it records a contention
// event and yields to the scheduler; each successful acquisition decays
// the counter. Low contention keeps budgets short (fast uncontended
// path), sustained contention lengthens them so threads spin through the
// short critical sections of other CPUs instead of bouncing through the
// scheduler.
//
// SpinLock provides no fairness guarantee; under sustained contention
// starvation is possible. That is the trade for minimal uncontended
// latency. Use FairMutex where waiters must not starve.
//
// The zero value is an unlocked SpinLock.
type SpinLock struct {
	_          pad
	state      atomix.Uint64 // 0 free, 1 held
	_          pad
	contention atomix.Int64 // advisory, not part of correctness
	_          pad
}

// Spin budget bands by recorded contention level.
const (
	spinBudgetLow  = 20 // contention < 10
	spinBudgetMid  = 40 // 10 <= contention < 100
	spinBudgetHigh = 60 // contention >= 100
)

func (l *SpinLock) spinBudget() int {
	c := l.contention.LoadRelaxed()
	switch {
	case c < 10:
		return spinBudgetLow
	case c < 100:
		return spinBudgetMid
	default:
		return spinBudgetHigh
	}
}

// Lock acquires the lock, spinning and yielding until it succeeds.
func (l *SpinLock) Lock() {
	if l.state.CompareAndSwapAcqRel(0, 1) {
		l.decay()
		return
	}
	for {
		// Budget recomputed after every yield: contention may have changed.
		budget := l.spinBudget()
		sw := spin.Wait{}
		for range budget {
			if l.state.LoadRelaxed() == 0 && l.state.CompareAndSwapAcqRel(0, 1) {
				l.decay()
				return
			}
			sw.Once()
		}
		l.contention.AddAcqRel(1)
		runtime.Gosched()
	}
}

// TryLock attempts to acquire the lock without spinning.
// Returns true if the lock was acquired.
func (l *SpinLock) TryLock() bool {
	if l.state.LoadRelaxed() != 0 {
		return false
	}
	if l.state.CompareAndSwapAcqRel(0, 1) {
		l.decay()
		return true
	}
	return false
}

// Unlock releases the lock. Calling Unlock without holding the lock is a
// caller contract violation and is not runtime-checked.
func (l *SpinLock) Unlock() {
	l.state.StoreRelease(0)
}

// decay lets the contention counter drift back toward zero on successful
// acquisition. The floor check races with concurrent increments; the
// counter is advisory telemetry, so an occasional missed decay is fine.
func (l *SpinLock) decay() {
	if l.contention.LoadRelaxed() > 0 {
		l.contention.AddAcqRel(-1)
	}
}

// Contention returns the current advisory contention counter.
func (l *SpinLock) Contention() int64 {
	return l.contention.LoadRelaxed()
}
