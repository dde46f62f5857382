// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package igx_test

import (
	"context"
	"testing"

	"code.hybscloud.com/igx"
)

// BenchmarkSign measures signing a typical mutating payload.
func BenchmarkSign(b *testing.B) {
	fields := igx.Fields{
		igx.F("_uuid", "0b1a2c3d-0000-4000-8000-000000000001"),
		igx.F("_uid", int64(42)),
		igx.F("_csrftoken", "tok1"),
		igx.F("media_id", "123_42"),
	}
	b.ReportAllocs()
	for b.Loop() {
		igx.Sign(fields)
	}
}

// BenchmarkExchangeTwoStep measures stepping a 2-call exchange.
func BenchmarkExchangeTwoStep(b *testing.B) {
	ok := reply(200, `{"n":1}`)
	b.ReportAllocs()
	for b.Loop() {
		drive(igx.NewExchange("two", twoStep()), ok, ok)
	}
}

// BenchmarkSessionExchange measures a call through the session middleware.
func BenchmarkSessionExchange(b *testing.B) {
	st := loggedIn()
	ok := reply(200, `{}`, "mid", "m1")
	b.ReportAllocs()
	for b.Loop() {
		drive(relogin(st, igx.Like(st, "1_42"))(), ok)
	}
}

// BenchmarkDriver measures a blocking call over an in-memory transport.
func BenchmarkDriver(b *testing.B) {
	ok := reply(200, `{}`)
	c := newClient(b, nil, igx.TransportFunc(func(context.Context, *igx.Request) (*igx.Response, error) {
		return ok, nil
	}))
	p := ping("p/")
	b.ReportAllocs()
	for b.Loop() {
		c.Do(context.Background(), p)
	}
}

// BenchmarkPoller measures a non-blocking call over an in-memory transport.
func BenchmarkPoller(b *testing.B) {
	skipRace(b)
	ok := reply(200, `{}`)
	c := newClient(b, nil, igx.TransportFunc(func(context.Context, *igx.Request) (*igx.Response, error) {
		return ok, nil
	}))
	p := ping("p/")
	b.ReportAllocs()
	for b.Loop() {
		c.Submit(p).Wait()
	}
}
