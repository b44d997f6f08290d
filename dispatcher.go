// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sched

// DefaultBatchSize is the batch capacity used when Collect is called with
// a non-positive maximum.
const DefaultBatchSize = 16

// Batch is a transient, ordered collection of work units.
//
// A Batch is stack-scoped: it belongs to the collecting worker and is
// never shared across goroutines.
type Batch struct {
	units []*WorkUnit
}

// Len returns the number of units in the batch.
func (b *Batch) Len() int {
	return len(b.units)
}

// Units returns the collected units in collection order.
func (b *Batch) Units() []*WorkUnit {
	return b.units
}

// Dispatcher drains a shared ready source in bounded batches.
//
// Collecting up to a full batch under a single critical section amortizes
// lock overhead over the whole batch instead of paying it per unit, and
// executing outside the lock keeps arbitrarily long callbacks from
// blocking producers.
type Dispatcher struct {
	mu   *FairMutex
	src  Consumer[*WorkUnit]
	pool *TieredPool
}

// NewDispatcher creates a dispatcher over src, guarded by mu, drawing
// context buffers from pool.
func NewDispatcher(src Consumer[*WorkUnit], mu *FairMutex, pool *TieredPool) *Dispatcher {
	return &Dispatcher{mu: mu, src: src, pool: pool}
}

// Collect pops up to max ready units from the source under one scoped
// acquisition of the guarding mutex, stopping early if the source empties.
// A non-positive max collects up to DefaultBatchSize.
func (d *Dispatcher) Collect(max int) Batch {
	if max <= 0 {
		max = DefaultBatchSize
	}
	batch := Batch{units: make([]*WorkUnit, 0, max)}

	d.mu.Lock()
	defer d.mu.Unlock()
	for len(batch.units) < max {
		u, err := d.src.Dequeue()
		if err != nil {
			break
		}
		batch.units = append(batch.units, u)
	}
	return batch
}

// Run executes every unit in the batch in order, outside any lock.
//
// Contexts are materialized for the whole batch first (pool-allocated for
// units that declare a CtxLen), then all callbacks run, then the context
// buffers go back to the pool. Rejected returns are deliberately ignored:
// a declined buffer is garbage, nothing more.
func (d *Dispatcher) Run(batch *Batch) {
	n := len(batch.units)
	if n == 0 {
		return
	}

	contexts := make([][]byte, n)
	for i, u := range batch.units {
		if u.CtxLen > 0 {
			contexts[i] = d.pool.Get(u.CtxLen)
		}
	}

	for i, u := range batch.units {
		u.Run(u.Payload, contexts[i])
	}

	for i, u := range batch.units {
		if contexts[i] != nil {
			_ = d.pool.Put(contexts[i], u.CtxLen)
		}
	}
}

// Dispatch collects one batch of up to max units and runs it.
// Returns the number of units executed.
func (d *Dispatcher) Dispatch(max int) int {
	batch := d.Collect(max)
	d.Run(&batch)
	return batch.Len()
}
