// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sched

// ReleaseThresholdNs is the estimated external-operation duration above
// which holding the exclusivity token is not worth it: the holder should
// release around the operation and reacquire afterwards.
const ReleaseThresholdNs = 10_000

// Token models a single process-wide exclusivity token: the right to
// mutate shared interpreter-level state. Exactly one worker holds it at a
// time; everything else about shared state is convention, the token
// itself protects nothing.
//
// A holder about to run a long external operation (no CPU, no shared
// state) can hand the token over for the duration via WithReleased, so
// other workers make progress instead of queueing behind dead time.
//
// Acquire parks the caller on a channel rather than spinning: token hold
// times are whole operations, not critical sections, and burning CPU
// across them would defeat the point.
type Token struct {
	slot chan struct{}
}

// NewToken creates a token, initially unheld.
func NewToken() *Token {
	return &Token{slot: make(chan struct{}, 1)}
}

// Acquire blocks until the caller holds the token.
func (t *Token) Acquire() {
	t.slot <- struct{}{}
}

// TryAcquire attempts to take the token without blocking.
// Returns true if the caller now holds it.
func (t *Token) TryAcquire() bool {
	select {
	case t.slot <- struct{}{}:
		return true
	default:
		return false
	}
}

// Release gives the token up. Releasing a token the caller does not hold
// is a caller contract violation.
func (t *Token) Release() {
	<-t.slot
}

// Held reports whether some worker currently holds the token.
func (t *Token) Held() bool {
	return len(t.slot) == 1
}

// ShouldRelease reports whether an external operation with the given
// estimated duration justifies releasing the token around it.
func (t *Token) ShouldRelease(estimatedNs int64) bool {
	return estimatedNs > ReleaseThresholdNs
}

// WithReleased runs fn, releasing the token around it when the estimated
// duration exceeds the threshold. The caller must hold the token. On
// every exit path — normal return, error, or panic — the caller holds the
// token again when WithReleased unwinds.
//
// Below the threshold fn runs with the token still held; the release
// would cost more than the operation itself.
func (t *Token) WithReleased(estimatedNs int64, fn func() error) error {
	if !t.ShouldRelease(estimatedNs) {
		return fn()
	}
	t.Release()
	defer t.Acquire()
	return fn()
}
