// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package igx_test

import (
	"context"
	"errors"
	"testing"

	"code.hybscloud.com/igx"
	"code.hybscloud.com/kont"
	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
)

const expired = `{"message":"login_required","status":"fail"}`

func TestWithCookiesStampsAndMerges(t *testing.T) {
	st := loggedIn()
	x := igx.Chain(igx.Op("two", twoStep), igx.WithCookies(st))()

	step := x.Next(nil)
	if got := step.Request.Cookies["sessionid"]; got != "sess1" {
		t.Fatalf("first request sessionid got %q, want sess1", got)
	}
	step = x.Next(reply(200, `{}`, "sessionid", "sess2", "mid", "m1"))
	if got := step.Request.Cookies["sessionid"]; got != "sess2" {
		t.Fatalf("second request sessionid got %q, want sess2", got)
	}
	if got := step.Request.Cookies["mid"]; got != "m1" {
		t.Fatalf("second request mid got %q, want m1", got)
	}
}

func TestWithCookiesMergesFailedReply(t *testing.T) {
	st := loggedIn()
	x := igx.Chain(igx.Op("two", twoStep), igx.WithCookies(st))()
	_, step := drive(x, reply(500, `{"status":"fail"}`, "csrftoken", "tok2"))

	var perr *igx.ProtocolError
	if !errors.As(step.Err, &perr) {
		t.Fatalf("got %v, want *ProtocolError", step.Err)
	}
	if v, _ := st.Cookie("csrftoken"); v != "tok2" {
		t.Fatalf("csrftoken got %q, want tok2", v)
	}
}

func TestWithAuthentication(t *testing.T) {
	x := igx.Chain(igx.Op("login", twoStep), igx.WithAuthentication())()
	_, step := drive(x, reply(400, `{"message":"bad password"}`))
	var aerr *igx.AuthenticationError
	if !errors.As(step.Err, &aerr) {
		t.Fatalf("got %v, want *AuthenticationError", step.Err)
	}
	var perr *igx.ProtocolError
	if !errors.As(step.Err, &perr) || perr.Message() != "bad password" {
		t.Fatalf("cause got %v, want the protocol error", aerr.Err)
	}
}

// relogin wraps op the way a Client does, over st.
func relogin(st *igx.State, op igx.Protocol) igx.Protocol {
	login := igx.Chain(igx.Relogin(st), igx.WithCookies(st), igx.WithAuthentication())
	return igx.Chain(op, igx.WithCookies(st), igx.WithRelogin(st, login, zerolog.Nop()))
}

func TestReloginOnce(t *testing.T) {
	st := loggedIn()
	x := relogin(st, igx.Op("one", func() kont.Eff[igx.Body] {
		return igx.CallDone(igx.NewGet("one/"))
	}))()

	reqs, step := drive(x,
		reply(403, expired),
		reply(200, `{}`),
		reply(200, `{}`, "csrftoken", "tok9"),
		reply(200, `{"logged_in_user":{"pk":42}}`, "sessionid", "sess9"),
		reply(200, `{"done":true}`),
	)
	if step.Kind != igx.StepCompleted || !step.Body.Get("done").Bool() {
		t.Fatalf("got %+v, want completed", step)
	}
	var paths []string
	for _, r := range reqs {
		paths = append(paths, r.Path)
	}
	want := []string{"one/", "qe/sync/", "si/fetch_headers/", "accounts/login/", "one/"}
	if diff := cmp.Diff(want, paths); diff != "" {
		t.Fatalf("paths mismatch (-want +got):\n%s", diff)
	}
	if len(reqs[1].Cookies) != 0 {
		t.Fatalf("login started with cookies %v, want an empty jar", reqs[1].Cookies)
	}
	if got := reqs[4].Cookies["sessionid"]; got != "sess9" {
		t.Fatalf("restarted call sessionid got %q, want sess9", got)
	}
}

func TestReloginRestartsFromFirstStep(t *testing.T) {
	st := loggedIn()
	x := relogin(st, igx.Op("two", twoStep))()

	reqs, step := drive(x,
		reply(200, `{}`),
		reply(403, expired),
		reply(200, `{}`),
		reply(200, `{}`, "csrftoken", "tok9"),
		reply(200, `{"logged_in_user":{"pk":42}}`),
		reply(200, `{}`),
		reply(200, `{"n":2}`),
	)
	if step.Kind != igx.StepCompleted {
		t.Fatalf("got %+v, want completed", step)
	}
	var paths []string
	for _, r := range reqs {
		paths = append(paths, r.Path)
	}
	want := []string{"first/", "second/", "qe/sync/", "si/fetch_headers/", "accounts/login/", "first/", "second/"}
	if diff := cmp.Diff(want, paths); diff != "" {
		t.Fatalf("paths mismatch (-want +got):\n%s", diff)
	}
}

func TestReloginThreeStepKeepsIdentity(t *testing.T) {
	st := loggedIn()
	uuid := st.DeviceUUID()
	three := igx.Op("three", func() kont.Eff[igx.Body] {
		return igx.CallThen(igx.NewGet("a/"), igx.CallThen(igx.NewGet("b/"), igx.CallDone(igx.NewGet("c/"))))
	})
	x := relogin(st, three)()

	reqs, step := drive(x,
		reply(403, expired),
		reply(200, `{}`),
		reply(200, `{}`, "csrftoken", "tok9"),
		reply(200, `{"logged_in_user":{"pk":42}}`, "sessionid", "sess9"),
		reply(200, `{}`),
		reply(200, `{}`),
		reply(200, `{"n":3}`),
	)
	if step.Kind != igx.StepCompleted || step.Body.Get("n").Int() != 3 {
		t.Fatalf("got %+v, want completed", step)
	}
	var paths []string
	for _, r := range reqs {
		paths = append(paths, r.Path)
	}
	want := []string{"a/", "qe/sync/", "si/fetch_headers/", "accounts/login/", "a/", "b/", "c/"}
	if diff := cmp.Diff(want, paths); diff != "" {
		t.Fatalf("paths mismatch (-want +got):\n%s", diff)
	}
	if len(reqs[1].Cookies) != 0 {
		t.Fatalf("login started with cookies %v, want an empty jar", reqs[1].Cookies)
	}

	wantState := map[string]any{
		igx.KeyDeviceUUID: uuid,
		igx.KeyUsername:   "alice",
		igx.KeyPassword:   "secret",
		igx.KeyUsernameID: int64(42),
		igx.KeyRankToken:  "42_" + uuid,
		igx.KeyCookies:    map[string]string{"csrftoken": "tok9", "sessionid": "sess9"},
	}
	if diff := cmp.Diff(wantState, st.Export()); diff != "" {
		t.Fatalf("state mismatch (-want +got):\n%s", diff)
	}
}

func TestReloginSecondExpiryIsFatal(t *testing.T) {
	st := loggedIn()
	x := relogin(st, igx.Op("one", func() kont.Eff[igx.Body] {
		return igx.CallDone(igx.NewGet("one/"))
	}))()

	reqs, step := drive(x,
		reply(403, expired),
		reply(200, `{}`),
		reply(200, `{}`, "csrftoken", "tok9"),
		reply(200, `{"logged_in_user":{"pk":42}}`),
		reply(403, expired),
		reply(200, `{}`),
	)
	if len(reqs) != 5 {
		t.Fatalf("requests got %d, want 5", len(reqs))
	}
	var perr *igx.ProtocolError
	if step.Kind != igx.StepFailed || !errors.As(step.Err, &perr) || !perr.Expired() {
		t.Fatalf("got %+v, want expired *ProtocolError", step)
	}
}

func TestReloginLoginFailure(t *testing.T) {
	st := loggedIn()
	x := relogin(st, igx.Op("one", func() kont.Eff[igx.Body] {
		return igx.CallDone(igx.NewGet("one/"))
	}))()

	reqs, step := drive(x,
		reply(403, expired),
		reply(200, `{}`),
		reply(200, `{}`, "csrftoken", "tok9"),
		reply(400, `{"message":"The password you entered is incorrect."}`),
	)
	if len(reqs) != 4 {
		t.Fatalf("requests got %d, want 4", len(reqs))
	}
	var aerr *igx.AuthenticationError
	if !errors.As(step.Err, &aerr) {
		t.Fatalf("got %v, want *AuthenticationError", step.Err)
	}
}

func TestReloginWithoutCredentials(t *testing.T) {
	st, _ := igx.NewState(map[string]any{igx.KeyUsernameID: 42, igx.KeyCookies: map[string]string{"csrftoken": "t"}})
	x := relogin(st, igx.Op("one", func() kont.Eff[igx.Body] {
		return igx.CallDone(igx.NewGet("one/"))
	}))()
	_, step := drive(x, reply(403, expired))
	if !errors.Is(step.Err, igx.ErrNotLoggedIn) {
		t.Fatalf("got %v, want ErrNotLoggedIn", step.Err)
	}
}

func TestClientReloginOnce(t *testing.T) {
	srv := &server{}
	expiredOnce := true
	srv.answer = func(req *igx.Request) *igx.Response {
		if expiredOnce {
			expiredOnce = false
			return reply(403, expired)
		}
		return reply(200, `{"items":[],"status":"ok"}`)
	}
	tr := &scripted{answer: srv.respond}
	c := newClient(t, loggedIn().Export(), tr)

	body, err := c.Timeline(context.Background(), "")
	if err != nil {
		t.Fatalf("Timeline: %v", err)
	}
	if body.Get("status").String() != "ok" {
		t.Fatalf("body got %s", body)
	}
	if n := srv.loginCount(); n != 1 {
		t.Fatalf("logins got %d, want 1", n)
	}
	if n := tr.count(); n != 5 {
		t.Fatalf("calls got %d, want 5", n)
	}
}
