// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package igx

import (
	"errors"

	"github.com/rs/zerolog"
)

// Middleware wraps a Protocol, intercepting every step boundary of the
// exchanges it produces.
type Middleware func(Protocol) Protocol

// Chain applies mws to p innermost first: Chain(p, a, b) is b(a(p)).
func Chain(p Protocol, mws ...Middleware) Protocol {
	for _, mw := range mws {
		p = mw(p)
	}
	return p
}

// WithCookies merges the cookies of every reply into st before the
// wrapped exchange resumes, and stamps each emitted request with the
// current cookie snapshot. Replies with a failure status are merged too.
func WithCookies(st *State) Middleware {
	return func(next Protocol) Protocol {
		return func() Exchange {
			return &cookieExchange{inner: next(), state: st}
		}
	}
}

type cookieExchange struct {
	inner Exchange
	state *State
}

func (x *cookieExchange) Name() string { return x.inner.Name() }

func (x *cookieExchange) Next(resp *Response) Step {
	if resp != nil {
		x.state.MergeCookies(resp.Cookies)
	}
	step := x.inner.Next(resp)
	if step.Kind == StepRequest {
		step.Request = step.Request.withCookies(x.state.Cookies())
	}
	return step
}

// WithAuthentication reports every failure of the wrapped exchange as an
// *AuthenticationError. Login protocols are wrapped with it.
func WithAuthentication() Middleware {
	return func(next Protocol) Protocol {
		return func() Exchange {
			return &authExchange{inner: next()}
		}
	}
}

type authExchange struct {
	inner Exchange
}

func (x *authExchange) Name() string { return x.inner.Name() }

func (x *authExchange) Next(resp *Response) Step {
	step := x.inner.Next(resp)
	var authErr *AuthenticationError
	if step.Kind == StepFailed && !errors.Is(step.Err, ErrExhausted) && !errors.As(step.Err, &authErr) {
		step.Err = &AuthenticationError{Err: step.Err}
	}
	return step
}

// WithRelogin restarts the wrapped operation after a session expiry.
// When the operation fails with a login_required reply, the cookie jar is
// reset, login runs to completion, and the operation restarts from its
// first step. This happens at most once per exchange: a second expiry is
// returned as is, and a failing login ends the exchange.
//
// A restarted multi-step operation repeats the steps it had already
// performed, side effects included.
func WithRelogin(st *State, login Protocol, log zerolog.Logger) Middleware {
	return func(next Protocol) Protocol {
		return func() Exchange {
			return &reloginExchange{op: next, login: login, state: st, log: log, cur: next()}
		}
	}
}

type reloginPhase uint8

const (
	reloginOperation reloginPhase = iota
	reloginLogin
)

type reloginExchange struct {
	op       Protocol
	login    Protocol
	state    *State
	log      zerolog.Logger
	cur      Exchange
	phase    reloginPhase
	relogged bool
}

func (x *reloginExchange) Name() string { return x.cur.Name() }

func (x *reloginExchange) Next(resp *Response) Step {
	step := x.cur.Next(resp)
	for {
		switch x.phase {
		case reloginOperation:
			if step.Kind != StepFailed || x.relogged || !errors.Is(step.Err, ErrSessionExpired) {
				return step
			}
			x.log.Warn().Str("op", x.cur.Name()).Msg("session expired, logging in again")
			x.relogged = true
			x.state.ResetCookies()
			x.phase = reloginLogin
			x.cur = x.login()
			step = x.cur.Next(nil)
		case reloginLogin:
			if step.Kind != StepCompleted {
				return step
			}
			x.phase = reloginOperation
			x.cur = x.op()
			x.log.Debug().Str("op", x.cur.Name()).Msg("restarting after login")
			step = x.cur.Next(nil)
		}
	}
}
