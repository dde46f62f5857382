// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package igx

import (
	"context"
	"time"
)

// gate is the per-client mutual exclusion shared by every driver: one
// exchange in flight at a time. Waiters are admitted in channel order.
type gate chan struct{}

func newGate() gate {
	return make(gate, 1)
}

// acquire blocks until the gate is free or ctx is done.
func (g gate) acquire(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case g <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// tryAcquire takes the gate if it is free.
func (g gate) tryAcquire() bool {
	select {
	case g <- struct{}{}:
		return true
	default:
		return false
	}
}

func (g gate) release() {
	<-g
}

// throttle spaces network calls of one client by a minimum delay,
// measured from the end of the previous call. It is only touched by the
// holder of the gate.
type throttle struct {
	delay time.Duration
	last  time.Time
	now   func() time.Time
}

func newThrottle(delay time.Duration) *throttle {
	return &throttle{delay: delay, now: time.Now}
}

// remaining returns max(0, delay - (now - last)).
func (t *throttle) remaining() time.Duration {
	if t.last.IsZero() {
		return 0
	}
	wait := t.delay - t.now().Sub(t.last)
	if wait < 0 {
		return 0
	}
	return wait
}

// wait suspends until the next call may start or ctx is done.
func (t *throttle) wait(ctx context.Context) (time.Duration, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	d := t.remaining()
	if d == 0 {
		return 0, nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return d, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// mark records the end of a call.
func (t *throttle) mark(at time.Time) {
	t.last = at
}
