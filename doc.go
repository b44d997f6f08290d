// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package sched provides low-level concurrency primitives for multi-worker
// task schedulers.
//
// The package offers seven building blocks:
//
//   - Queue: unbounded lock-free MPMC FIFO (Michael-Scott) for cross-thread
//     task submission
//   - Deque: fixed-capacity work-stealing deque (Chase-Lev), one owner,
//     any number of thieves
//   - SpinLock: contention-adaptive spin-then-yield mutual exclusion
//   - FairMutex: mutual exclusion with wait-time feedback and an
//     anti-starvation band
//   - TieredPool: size-segregated cache of context buffers
//   - Dispatcher: batched collect-then-run draining of a shared queue
//   - Token: a single process-wide exclusivity token with scoped release
//     around long external operations
//
// # Quick Start
//
//	g := sched.NewGroup(4, 256)
//
//	// Submit work from anywhere
//	g.Submit(&sched.WorkUnit{
//	    Payload: req,
//	    Run:     func(p any, _ []byte) { handle(p.(*Request)) },
//	})
//
//	// Each worker goroutine drains its own deque first, steals from
//	// peers next, and falls back to the shared queue
//	w := g.Worker(0)
//	for {
//	    u, err := w.Next()
//	    if err == nil {
//	        u.Run(u.Payload, nil)
//	        continue
//	    }
//	    if sched.IsContended(err) {
//	        continue // lost a race, work may remain
//	    }
//	    break // idle
//	}
//
// # Batched Dispatch
//
// Draining a shared queue one lock acquisition per task wastes most of the
// critical section on lock traffic. The dispatcher collects a bounded
// batch under one scoped acquisition and executes outside the lock:
//
//	d := g.Dispatcher()
//	for d.Dispatch(sched.DefaultBatchSize) > 0 {
//	}
//
// Context buffers declared via WorkUnit.CtxLen are materialized from the
// group's TieredPool before execution and recycled afterwards.
//
// # Exclusivity Token
//
// Workers that mutate shared interpreter-level state hold the group token.
// Around a long external operation the holder hands it over:
//
//	tok := g.Token()
//	err := tok.WithReleased(estimatedNs, func() error {
//	    return doExternalIO()
//	})
//	// the token is held again here, even if doExternalIO failed
//
// # Error Handling
//
// All non-success outcomes are explicit result values; nothing blocks
// except documented lock acquisition. [ErrWouldBlock] (sourced from
// [code.hybscloud.com/iox] for ecosystem consistency) means empty or
// full; [ErrContended] means a steal or pop lost a race and the source
// may still hold work; [ErrNotRetained] means the pool declined a
// returned buffer.
//
//	backoff := iox.Backoff{}
//	for {
//	    u, err := w.Next()
//	    if err == nil {
//	        backoff.Reset()
//	        execute(u)
//	        continue
//	    }
//	    if sched.IsWouldBlock(err) {
//	        backoff.Wait() // idle, adaptive wait
//	    }
//	}
//
// # Memory Ordering
//
// Queue and Deque are non-blocking by construction: no operation suspends,
// every operation returns "empty" or "no unit obtained" instead. Their
// correctness rests on acquire loads gating dependent reads and release
// stores publishing slot writes; do not wrap them in external locking —
// it adds nothing and risks deadlock against the exclusivity token.
package sched
