// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package igx

import (
	"context"
	"time"

	"code.hybscloud.com/iox"
	"code.hybscloud.com/lfq"
	"github.com/rs/zerolog"
)

// completionCapacity bounds the completion queue of a task. At most one
// call of a task is in flight, so a single slot would do; 2 keeps the
// ring a power of two.
const completionCapacity = 2

// Poller drives exchanges without blocking, for callers that run their own
// event loop. It shares the gate and the throttle of its client with the
// blocking Driver, so both disciplines hold across the two.
type Poller struct {
	transport Transport
	gate      gate
	throttle  *throttle
	log       zerolog.Logger
}

type taskPhase uint8

const (
	taskQueued taskPhase = iota
	taskReady
	taskInflight
	taskDone
)

// completion is what the I/O goroutine of a task posts back.
type completion struct {
	resp *Response
	err  error
	at   time.Time
}

// Task is one exchange submitted to a Poller. A Task is driven by a single
// goroutine: Advance, Wait and Cancel must not be called concurrently.
type Task struct {
	p        *Poller
	proto    Protocol
	x        Exchange
	log      zerolog.Logger
	phase    taskPhase
	holding  bool
	canceled bool
	req      *Request
	done     lfq.SPSC[completion]
	body     Body
	err      error
}

// Submit returns a Task for p. Nothing happens until the task is advanced.
func (p *Poller) Submit(proto Protocol) *Task {
	t := &Task{p: p, proto: proto}
	t.done.Init(completionCapacity)
	return t
}

// Advance makes as much progress as possible without blocking. It returns
// iox.ErrWouldBlock while the task waits for the gate, for the throttle
// delay or for its in-flight call; otherwise it returns the final body or
// the error of the exchange.
func (t *Task) Advance() (Body, error) {
	for {
		switch t.phase {
		case taskDone:
			return t.body, t.err
		case taskQueued:
			if t.canceled {
				t.finish(nil, context.Canceled)
				continue
			}
			if !t.p.gate.tryAcquire() {
				return nil, iox.ErrWouldBlock
			}
			t.holding = true
			t.x = t.proto()
			t.log = t.p.log.With().Uint32("exchange", nextSerial()).Str("op", t.x.Name()).Logger()
			t.handle(t.x.Next(nil))
		case taskReady:
			if t.canceled {
				t.finish(nil, context.Canceled)
				continue
			}
			if t.p.throttle.remaining() > 0 {
				return nil, iox.ErrWouldBlock
			}
			t.phase = taskInflight
			t.log.Debug().Str("method", t.req.Method).Str("path", t.req.Path).Msg("call")
			go t.roundTrip(t.req)
			return nil, iox.ErrWouldBlock
		case taskInflight:
			c, err := t.done.Dequeue()
			if err != nil {
				return nil, iox.ErrWouldBlock
			}
			t.p.throttle.mark(c.at)
			if c.err != nil {
				t.finish(nil, c.err)
				continue
			}
			t.log.Debug().Int("status", c.resp.StatusCode).Msg("reply")
			step := t.x.Next(c.resp)
			if t.canceled && step.Kind == StepRequest {
				t.finish(nil, context.Canceled)
				continue
			}
			t.handle(step)
		}
	}
}

// Wait advances the task until it finishes, backing off adaptively while
// it would block.
func (t *Task) Wait() (Body, error) {
	var bo iox.Backoff
	for {
		body, err := t.Advance()
		if !iox.IsWouldBlock(err) {
			return body, err
		}
		bo.Wait()
	}
}

// Cancel abandons the task. A task that has no call in flight finishes
// at once with context.Canceled and gives the gate back. A call already in
// flight completes and its reply is applied first; that task keeps the
// gate until Advance or Wait observes the reply, so it must still be
// driven to completion.
func (t *Task) Cancel() {
	t.canceled = true
	if t.phase == taskQueued || t.phase == taskReady {
		t.finish(nil, context.Canceled)
	}
}

// Done reports whether the task has finished.
func (t *Task) Done() bool {
	return t.phase == taskDone
}

func (t *Task) handle(step Step) {
	switch step.Kind {
	case StepRequest:
		t.req = step.Request
		t.phase = taskReady
	case StepCompleted:
		t.finish(step.Body, nil)
	default:
		t.finish(nil, step.Err)
	}
}

func (t *Task) finish(body Body, err error) {
	t.body, t.err = body, err
	t.req = nil
	t.phase = taskDone
	if t.holding {
		t.holding = false
		t.p.gate.release()
	}
}

// roundTrip runs on its own goroutine and is the only producer of t.done
// while the call is in flight.
func (t *Task) roundTrip(req *Request) {
	resp, err := t.p.transport.RoundTrip(context.Background(), req)
	c := completion{resp: resp, err: err, at: t.p.throttle.now()}
	var bo iox.Backoff
	for t.done.Enqueue(&c) != nil {
		bo.Wait()
	}
}
