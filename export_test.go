// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sched

// Test bridges for internals that are impractical to drive through real
// contention: the fairness feedback arithmetic and the spin budget bands.

// ObserveWait folds one wait-time sample (µs) into the mutex's moving
// average, exactly as a waiter reports it after acquisition.
func (m *FairMutex) ObserveWait(waitUs int64) {
	m.observeWait(waitUs)
}

// SpinBudget returns the current adaptive spin budget.
func (l *SpinLock) SpinBudget() int {
	return l.spinBudget()
}

// AddContention bumps the advisory contention counter.
func (l *SpinLock) AddContention(n int64) {
	l.contention.AddAcqRel(n)
}
