// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sched_test

import (
	"errors"
	"sync"
	"testing"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/sched"
)

func TestDequeBasic(t *testing.T) {
	d := sched.NewDeque[int](3)

	if d.Cap() != 4 {
		t.Fatalf("Cap: got %d, want 4", d.Cap())
	}

	if _, err := d.Pop(); !errors.Is(err, sched.ErrWouldBlock) {
		t.Fatalf("Pop on empty: got %v, want ErrWouldBlock", err)
	}

	for i := range 4 {
		v := i + 100
		if err := d.Push(&v); err != nil {
			t.Fatalf("Push(%d): %v", i, err)
		}
	}

	// Full deque rejects; the caller spills.
	v := 999
	if err := d.Push(&v); !errors.Is(err, sched.ErrWouldBlock) {
		t.Fatalf("Push on full: got %v, want ErrWouldBlock", err)
	}

	// Owner pops newest first.
	for i := 3; i >= 0; i-- {
		val, err := d.Pop()
		if err != nil {
			t.Fatalf("Pop: %v", err)
		}
		if val != i+100 {
			t.Fatalf("Pop: got %d, want %d", val, i+100)
		}
	}
}

// TestDequeStealOrder verifies that thieves take the oldest unit while
// the owner keeps LIFO access to the newest.
func TestDequeStealOrder(t *testing.T) {
	d := sched.NewDeque[int](8)

	for i := 1; i <= 4; i++ {
		v := i
		d.Push(&v)
	}

	if val, err := d.Steal(); err != nil || val != 1 {
		t.Fatalf("Steal: got (%d, %v), want (1, nil)", val, err)
	}
	if val, err := d.Pop(); err != nil || val != 4 {
		t.Fatalf("Pop: got (%d, %v), want (4, nil)", val, err)
	}
	if val, err := d.Steal(); err != nil || val != 2 {
		t.Fatalf("Steal: got (%d, %v), want (2, nil)", val, err)
	}
	if val, err := d.Pop(); err != nil || val != 3 {
		t.Fatalf("Pop: got (%d, %v), want (3, nil)", val, err)
	}

	if _, err := d.Steal(); !errors.Is(err, sched.ErrWouldBlock) {
		t.Fatalf("Steal on empty: got %v, want ErrWouldBlock", err)
	}
}

// TestDequeGrow fills the deque, grows it, and checks that steal order
// and content survive the copy.
func TestDequeGrow(t *testing.T) {
	d := sched.NewDeque[int](4)

	for i := 1; i <= 4; i++ {
		v := i
		if err := d.Push(&v); err != nil {
			t.Fatalf("Push(%d): %v", i, err)
		}
	}
	v := 5
	if err := d.Push(&v); !errors.Is(err, sched.ErrWouldBlock) {
		t.Fatalf("Push on full: got %v, want ErrWouldBlock", err)
	}

	d.Grow(8)
	if d.Cap() != 8 {
		t.Fatalf("Cap after Grow: got %d, want 8", d.Cap())
	}
	if err := d.Push(&v); err != nil {
		t.Fatalf("Push after Grow: %v", err)
	}

	for want := 1; want <= 5; want++ {
		val, err := d.Steal()
		if err != nil {
			t.Fatalf("Steal(%d): %v", want, err)
		}
		if val != want {
			t.Fatalf("Steal: got %d, want %d", val, want)
		}
	}
}

// TestDequeOwnerVsThieves runs the owner (push and pop) against several
// thieves and verifies every unit is delivered exactly once.
func TestDequeOwnerVsThieves(t *testing.T) {
	if sched.RaceEnabled {
		t.Skip("atomix ordering edges are invisible to the race detector")
	}

	const (
		thieves = 4
		total   = 50000
	)

	d := sched.NewDeque[int](1024)
	seen := make([]atomix.Int32, total)
	var done atomix.Bool

	var wg sync.WaitGroup
	for range thieves {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for !done.Load() {
				v, err := d.Steal()
				if err == nil {
					seen[v].Add(1)
				}
			}
			// Final sweep after the owner finishes.
			for {
				v, err := d.Steal()
				if errors.Is(err, sched.ErrWouldBlock) {
					return
				}
				if err == nil {
					seen[v].Add(1)
				}
			}
		}()
	}

	// Owner: push every value, popping some back along the way.
	for i := range total {
		v := i
		for d.Push(&v) != nil {
			// Full: drain one locally.
			if got, err := d.Pop(); err == nil {
				seen[got].Add(1)
			}
		}
		if i%3 == 0 {
			if got, err := d.Pop(); err == nil {
				seen[got].Add(1)
			}
		}
	}
	done.Store(true)
	wg.Wait()

	for i := range seen {
		if c := seen[i].Load(); c != 1 {
			t.Fatalf("unit %d: delivered %d times, want 1", i, c)
		}
	}
}
