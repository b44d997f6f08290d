// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sched

// Size class ceilings and free-list capacities.
const (
	poolSmallCeil  = 256
	poolMediumCeil = 1024
	poolLargeCeil  = 4096

	poolSmallSlots  = 128
	poolMediumSlots = 64
	poolLargeSlots  = 32
)

// TieredPool is a size-segregated cache of context buffers.
//
// Three fixed-capacity free-lists hold previously returned buffers, keyed
// by size class: small (≤256 bytes), medium (≤1024), large (≤4096).
// Requests above the large ceiling bypass the pool and allocate directly.
// Each free-list is a simple stack, so the most recently returned buffer
// (likely still cache-warm) is handed out first.
//
// The pool does not track liveness: returning a buffer that is still
// referenced elsewhere is a caller contract violation. The size passed to
// Put must cover the capacity the caller will later request from the same
// class.
//
// A TieredPool is explicitly constructed and owned by its scheduler;
// create it at scheduler start and drop it after all workers drain.
type TieredPool struct {
	mu     SpinLock
	small  [][]byte
	medium [][]byte
	large  [][]byte
}

// NewTieredPool creates an empty pool with fixed per-class slot capacity.
func NewTieredPool() *TieredPool {
	return &TieredPool{
		small:  make([][]byte, 0, poolSmallSlots),
		medium: make([][]byte, 0, poolMediumSlots),
		large:  make([][]byte, 0, poolLargeSlots),
	}
}

// Get returns a buffer of at least size bytes.
//
// The smallest size class whose ceiling covers size supplies the buffer if
// its free-list is non-empty; larger non-empty classes are tried next. On
// a full miss a fresh buffer is allocated, sized to the class ceiling so a
// later Put can recycle it. Requests above 4096 bytes bypass the pool and
// are never recycled.
func (p *TieredPool) Get(size int) []byte {
	if size > poolLargeCeil {
		return make([]byte, size)
	}

	var buf []byte
	p.mu.Lock()
	switch {
	case size <= poolSmallCeil && len(p.small) > 0:
		buf, p.small = pop(p.small)
	case size <= poolMediumCeil && len(p.medium) > 0:
		buf, p.medium = pop(p.medium)
	case len(p.large) > 0:
		buf, p.large = pop(p.large)
	}
	p.mu.Unlock()

	if buf != nil {
		return buf
	}
	return make([]byte, classCeil(size))
}

// Put returns a buffer to the free-list for its size class.
//
// Returns nil if the buffer was retained, ErrNotRetained if the class
// free-list is full or size bypasses the pool. A declined buffer is
// simply left to the garbage collector; the caller must not reuse it
// either way.
func (p *TieredPool) Put(buf []byte, size int) error {
	if buf == nil || size > poolLargeCeil {
		return ErrNotRetained
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	switch {
	case size <= poolSmallCeil:
		if len(p.small) >= poolSmallSlots {
			return ErrNotRetained
		}
		p.small = append(p.small, buf)
	case size <= poolMediumCeil:
		if len(p.medium) >= poolMediumSlots {
			return ErrNotRetained
		}
		p.medium = append(p.medium, buf)
	default:
		if len(p.large) >= poolLargeSlots {
			return ErrNotRetained
		}
		p.large = append(p.large, buf)
	}
	return nil
}

// classCeil returns the ceiling of the smallest class covering size.
func classCeil(size int) int {
	switch {
	case size <= poolSmallCeil:
		return poolSmallCeil
	case size <= poolMediumCeil:
		return poolMediumCeil
	default:
		return poolLargeCeil
	}
}

func pop(list [][]byte) ([]byte, [][]byte) {
	n := len(list) - 1
	buf := list[n]
	list[n] = nil
	return buf, list[:n]
}
