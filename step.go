// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package igx

import (
	"errors"

	"code.hybscloud.com/kont"
)

// StepKind tells what an Exchange produced.
type StepKind uint8

const (
	// StepRequest means the exchange awaits the response to Step.Request.
	StepRequest StepKind = iota + 1
	// StepCompleted means the exchange finished with Step.Body.
	StepCompleted
	// StepFailed means the exchange terminated with Step.Err.
	StepFailed
)

// Step is the outcome of advancing an Exchange by one response.
type Step struct {
	Kind    StepKind
	Request *Request
	Body    Body
	Err     error
}

// Done reports whether s is terminal.
func (s Step) Done() bool {
	return s.Kind == StepCompleted || s.Kind == StepFailed
}

// Completed returns a terminal success step.
func Completed(body Body) Step { return Step{Kind: StepCompleted, Body: body} }

// Failed returns a terminal failure step.
func Failed(err error) Step { return Step{Kind: StepFailed, Err: err} }

// Exchange is one logical API operation as a sequence of request/response
// steps. The first call to Next passes nil; every later call passes the
// response to the request of the previous step. An Exchange never does
// I/O and is not safe for concurrent use. It is single-use: once it has
// returned a terminal step, Next fails with ErrExhausted.
type Exchange interface {
	Name() string
	Next(resp *Response) Step
}

// Protocol produces a fresh Exchange for one call of an operation.
type Protocol func() Exchange

type exchangePhase uint8

const (
	phasePending exchangePhase = iota
	phaseAwaiting
	phaseDone
)

// exchange steps a kont computation one Call effect at a time.
type exchange struct {
	name  string
	expr  kont.Expr[kont.Either[error, Body]]
	susp  *kont.Suspension[kont.Either[error, Body]]
	phase exchangePhase
}

// NewExchange returns an Exchange evaluating protocol. A reply with a
// non-success status is not resumed into protocol: the exchange fails
// with a *ProtocolError carrying the reply.
func NewExchange(name string, protocol kont.Eff[Body]) Exchange {
	wrapped := kont.ExprMap(kont.Reify(protocol), func(b Body) kont.Either[error, Body] {
		return kont.Right[error, Body](b)
	})
	return &exchange{name: name, expr: wrapped}
}

// Op returns a Protocol evaluating the computation built by build.
// build runs when the exchange is created, so it observes the state of
// that moment rather than the state at declaration.
func Op(name string, build func() kont.Eff[Body]) Protocol {
	return func() Exchange {
		return NewExchange(name, build())
	}
}

// FailedExchange returns an Exchange that fails on its first step.
func FailedExchange(name string, err error) Exchange {
	return NewExchange(name, Fail[Body](err))
}

func (x *exchange) Name() string { return x.name }

func (x *exchange) Next(resp *Response) Step {
	switch x.phase {
	case phasePending:
		result, susp := kont.StepExpr(x.expr)
		return x.settle(result, susp)
	case phaseAwaiting:
		if resp == nil {
			return x.fail(errors.New("igx: " + x.name + ": resumed without a response"))
		}
		if !resp.OK() {
			return x.fail(&ProtocolError{Op: x.name, Response: resp})
		}
		susp := x.susp
		x.susp = nil
		result, next := susp.Resume(resp)
		return x.settle(result, next)
	}
	return Failed(ErrExhausted)
}

// settle dispatches error effects eagerly and stops at the next Call.
func (x *exchange) settle(result kont.Either[error, Body], susp *kont.Suspension[kont.Either[error, Body]]) Step {
	for susp != nil {
		switch op := susp.Op().(type) {
		case Call:
			x.susp = susp
			x.phase = phaseAwaiting
			return Step{Kind: StepRequest, Request: op.Request}
		case errorDispatcher:
			var ctx kont.ErrorContext[error]
			v, _ := op.DispatchError(&ctx)
			if ctx.HasErr {
				susp.Discard()
				x.phase = phaseDone
				return Failed(ctx.Err)
			}
			result, susp = susp.Resume(v)
		default:
			panic("igx: unhandled effect in exchange")
		}
	}
	x.phase = phaseDone
	if err, ok := result.GetLeft(); ok {
		return Failed(err)
	}
	body, _ := result.GetRight()
	return Completed(body)
}

func (x *exchange) fail(err error) Step {
	if x.susp != nil {
		x.susp.Discard()
		x.susp = nil
	}
	x.phase = phaseDone
	return Failed(err)
}
