// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sched

// Group owns the shared structures of one scheduler instance: the
// unbounded ready queue, the context buffer pool, the exclusivity token,
// and a fixed set of workers.
//
// A Group is explicitly constructed and explicitly owned — create it at
// scheduler start, drop it after the workers drain. Nothing in it is
// global.
type Group struct {
	workers []*Worker
	shared  *Queue[*WorkUnit]
	pool    *TieredPool
	token   *Token
	mu      *FairMutex
}

// Worker is one scheduler worker: a local work-stealing deque plus
// references to its group's shared structures. Push and Pop on the local
// deque are reserved to the owning goroutine; peers only Steal.
type Worker struct {
	id    int
	local *Deque[*WorkUnit]
	group *Group
}

// NewGroup creates a group with n workers, each with a local deque of the
// given capacity.
func NewGroup(n, dequeCapacity int) *Group {
	if n < 1 {
		panic("sched: group needs at least one worker")
	}
	g := &Group{
		workers: make([]*Worker, n),
		shared:  NewQueue[*WorkUnit](),
		pool:    NewTieredPool(),
		token:   NewToken(),
		mu:      NewFairMutex(nil),
	}
	for i := range n {
		g.workers[i] = &Worker{id: i, local: NewDeque[*WorkUnit](dequeCapacity), group: g}
	}
	return g
}

// Worker returns worker i.
func (g *Group) Worker(i int) *Worker {
	return g.workers[i]
}

// Pool returns the group's context buffer pool.
func (g *Group) Pool() *TieredPool {
	return g.pool
}

// Token returns the group's exclusivity token.
func (g *Group) Token() *Token {
	return g.token
}

// Submit enqueues a unit on the shared ready queue, reachable by every
// worker.
func (g *Group) Submit(u *WorkUnit) error {
	return g.shared.Enqueue(&u)
}

// Dispatcher returns a batch dispatcher over the group's shared queue.
func (g *Group) Dispatcher() *Dispatcher {
	return NewDispatcher(g.shared, g.mu, g.pool)
}

// Submit pushes a unit onto the worker's own deque, spilling to the
// shared queue when the deque is full. Owner-only.
func (w *Worker) Submit(u *WorkUnit) error {
	if err := w.local.Push(&u); err == nil {
		return nil
	}
	return w.group.shared.Enqueue(&u)
}

// Next obtains the next unit for this worker. Owner-only.
//
// Candidate order: the worker's own deque (newest first), then each
// peer's deque in rotation starting after this worker (oldest first),
// then the shared queue. Returns ErrContended when every source came up
// empty-handed but at least one was lost to a race — the caller should
// retry soon. Returns ErrWouldBlock only when all sources looked idle.
func (w *Worker) Next() (*WorkUnit, error) {
	contended := false

	u, err := w.local.Pop()
	if err == nil {
		return u, nil
	}
	if IsContended(err) {
		contended = true
	}

	peers := w.group.workers
	for i := 1; i < len(peers); i++ {
		victim := peers[(w.id+i)%len(peers)]
		u, err = victim.local.Steal()
		if err == nil {
			return u, nil
		}
		if IsContended(err) {
			contended = true
		}
	}

	u, err = w.group.shared.Dequeue()
	if err == nil {
		return u, nil
	}

	if contended {
		return nil, ErrContended
	}
	return nil, ErrWouldBlock
}
