// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sched_test

import (
	"sync"
	"testing"

	"code.hybscloud.com/sched"
)

func TestFairMutexBasic(t *testing.T) {
	m := sched.NewFairMutex(nil)

	m.Lock()
	if m.TryLock() {
		t.Fatal("TryLock: acquired a held mutex")
	}
	m.Unlock()

	if !m.TryLock() {
		t.Fatal("TryLock: failed on a free mutex")
	}
	m.Unlock()
}

// TestFairMutexEMA drives the wait-time feedback directly and checks the
// average after each update equals (prev*7 + w) / 8.
func TestFairMutexEMA(t *testing.T) {
	m := sched.NewFairMutex(nil)

	if got := m.WaitAvg(); got != 0 {
		t.Fatalf("initial WaitAvg: got %d, want 0", got)
	}
	if got := m.FairnessTimeout(); got != 500 {
		t.Fatalf("initial FairnessTimeout: got %d, want 500", got)
	}

	// avg=0, w=4000 → avg 500 → mid band.
	m.ObserveWait(4000)
	if got := m.WaitAvg(); got != 500 {
		t.Fatalf("WaitAvg after 4000: got %d, want 500", got)
	}
	if got := m.FairnessTimeout(); got != 1000 {
		t.Fatalf("FairnessTimeout at avg 500: got %d, want 1000", got)
	}

	// Arbitrary sequence tracks the recurrence exactly.
	want := int64(500)
	for _, w := range []int64{120, 80, 9000, 250, 0, 31} {
		want = (want*7 + w) / 8
		m.ObserveWait(w)
		if got := m.WaitAvg(); got != want {
			t.Fatalf("WaitAvg after %d: got %d, want %d", w, got, want)
		}
	}
}

// TestFairMutexTimeoutBands walks the average through all three bands.
func TestFairMutexTimeoutBands(t *testing.T) {
	m := sched.NewFairMutex(nil)

	// Push the average above 1000µs.
	for range 16 {
		m.ObserveWait(8000)
	}
	if avg := m.WaitAvg(); avg < 1000 {
		t.Fatalf("WaitAvg: got %d, want >= 1000", avg)
	}
	if got := m.FairnessTimeout(); got != 2000 {
		t.Fatalf("FairnessTimeout high band: got %d, want 2000", got)
	}

	// Decay back below 100µs.
	for range 64 {
		m.ObserveWait(0)
	}
	if avg := m.WaitAvg(); avg >= 100 {
		t.Fatalf("WaitAvg: got %d, want < 100", avg)
	}
	if got := m.FairnessTimeout(); got != 500 {
		t.Fatalf("FairnessTimeout low band: got %d, want 500", got)
	}
}

// TestFairMutexMutualExclusion hammers a plain counter; lost increments
// mean two acquisitions overlapped.
func TestFairMutexMutualExclusion(t *testing.T) {
	if sched.RaceEnabled {
		t.Skip("atomix lock edges are invisible to the race detector")
	}

	const (
		goroutines = 8
		iterations = 10000
	)

	m := sched.NewFairMutex(nil)
	var (
		counter int
		wg      sync.WaitGroup
	)
	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range iterations {
				m.Lock()
				counter++
				m.Unlock()
			}
		}()
	}
	wg.Wait()

	if counter != goroutines*iterations {
		t.Fatalf("counter: got %d, want %d", counter, goroutines*iterations)
	}
}
