// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build !race

// This file contains examples that use atomix concurrency primitives.
// These trigger false positives with Go's race detector because atomix
// atomic operations appear as regular memory accesses to the detector.
// The examples are correct; they're excluded from race testing.

package sched_test

import (
	"fmt"

	"code.hybscloud.com/sched"
)

// ExampleNewGroup demonstrates the worker loop: local deque first,
// stealing and the shared queue as fallbacks.
func ExampleNewGroup() {
	g := sched.NewGroup(2, 8)

	// A worker's own submissions go to its deque; group submissions go
	// to the shared queue.
	w := g.Worker(0)
	w.Submit(&sched.WorkUnit{Payload: "local", Run: func(p any, _ []byte) { fmt.Println(p) }})
	g.Submit(&sched.WorkUnit{Payload: "shared", Run: func(p any, _ []byte) { fmt.Println(p) }})

	for {
		u, err := w.Next()
		if err != nil {
			if sched.IsContended(err) {
				continue
			}
			break
		}
		u.Run(u.Payload, nil)
	}

	// Output:
	// local
	// shared
}

// ExampleDispatcher demonstrates batched dispatch: one lock acquisition
// collects the batch, execution happens outside the lock.
func ExampleDispatcher() {
	g := sched.NewGroup(1, 8)
	d := g.Dispatcher()

	for i := 1; i <= 3; i++ {
		v := i
		g.Submit(&sched.WorkUnit{
			Payload: v,
			CtxLen:  128,
			Run: func(p any, ctx []byte) {
				fmt.Printf("unit %d, ctx %d bytes\n", p, len(ctx))
			},
		})
	}

	for d.Dispatch(sched.DefaultBatchSize) > 0 {
	}

	// Output:
	// unit 1, ctx 256 bytes
	// unit 2, ctx 256 bytes
	// unit 3, ctx 256 bytes
}

// ExampleToken demonstrates scoped release of the exclusivity token
// around a long external operation.
func ExampleToken() {
	tok := sched.NewToken()
	tok.Acquire()

	estimated := int64(50_000) // 50µs of external work
	tok.WithReleased(estimated, func() error {
		fmt.Println("token held during external work:", tok.Held())
		return nil
	})
	fmt.Println("token held after:", tok.Held())

	// Output:
	// token held during external work: false
	// token held after: true
}
