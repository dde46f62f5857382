// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package igx_test

import (
	"context"
	"sync"
	"time"

	"code.hybscloud.com/igx"
)

// reply builds a Response; cookies are name/value pairs.
func reply(status int, body string, cookies ...string) *igx.Response {
	resp := &igx.Response{StatusCode: status, Body: igx.Body(body)}
	if len(cookies) > 0 {
		resp.Cookies = make(map[string]string, len(cookies)/2)
		for i := 0; i+1 < len(cookies); i += 2 {
			resp.Cookies[cookies[i]] = cookies[i+1]
		}
	}
	return resp
}

// drive steps x, answering its requests with replies in order. It stops
// at the first terminal step or when replies run out.
func drive(x igx.Exchange, replies ...*igx.Response) ([]*igx.Request, igx.Step) {
	var reqs []*igx.Request
	step := x.Next(nil)
	for _, r := range replies {
		if step.Kind != igx.StepRequest {
			break
		}
		reqs = append(reqs, step.Request)
		step = x.Next(r)
	}
	if step.Kind == igx.StepRequest {
		reqs = append(reqs, step.Request)
	}
	return reqs, step
}

// scripted is a Transport answering from a function of the call index and
// recording every call with its start and end time.
type scripted struct {
	mu     sync.Mutex
	calls  []*igx.Request
	starts []time.Time
	ends   []time.Time
	active int
	peak   int
	hold   time.Duration
	answer func(n int, req *igx.Request) (*igx.Response, error)
}

func (s *scripted) RoundTrip(ctx context.Context, req *igx.Request) (*igx.Response, error) {
	s.mu.Lock()
	n := len(s.calls)
	s.calls = append(s.calls, req)
	s.starts = append(s.starts, time.Now())
	s.active++
	s.peak = max(s.peak, s.active)
	s.mu.Unlock()

	if s.hold > 0 {
		time.Sleep(s.hold)
	}
	resp, err := s.answer(n, req)

	s.mu.Lock()
	s.active--
	s.ends = append(s.ends, time.Now())
	s.mu.Unlock()
	return resp, err
}

func (s *scripted) paths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.calls))
	for i, r := range s.calls {
		out[i] = r.Path
	}
	return out
}

func (s *scripted) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

// server answers the login steps the way the remote host does and every
// other path with answer, or with an empty object.
type server struct {
	mu     sync.Mutex
	logins int
	answer func(req *igx.Request) *igx.Response
}

func (s *server) respond(_ int, req *igx.Request) (*igx.Response, error) {
	switch req.Path {
	case "qe/sync/":
		return reply(200, `{"status":"ok"}`), nil
	case "si/fetch_headers/":
		return reply(200, `{"status":"ok"}`, "csrftoken", "tok1"), nil
	case "accounts/login/":
		s.mu.Lock()
		s.logins++
		s.mu.Unlock()
		return reply(200, `{"logged_in_user":{"pk":42,"username":"alice"},"status":"ok"}`, "sessionid", "sess1"), nil
	}
	if s.answer != nil {
		return s.answer(req), nil
	}
	return reply(200, `{"status":"ok"}`), nil
}

func (s *server) loginCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.logins
}

// loggedIn returns a state as left by a successful login.
func loggedIn() *igx.State {
	st, err := igx.NewState(map[string]any{
		igx.KeyDeviceUUID: "0b1a2c3d-0000-4000-8000-000000000001",
		igx.KeyUsername:   "alice",
		igx.KeyPassword:   "secret",
		igx.KeyUsernameID: 42,
		igx.KeyCookies:    map[string]string{"csrftoken": "tok1", "sessionid": "sess1"},
	})
	if err != nil {
		panic(err)
	}
	return st
}

func newClient(tb interface{ Fatalf(string, ...any) }, seed map[string]any, t igx.Transport, opts ...igx.Option) *igx.Client {
	c, err := igx.New(seed, append([]igx.Option{igx.WithTransport(t), igx.WithDelay(0)}, opts...)...)
	if err != nil {
		tb.Fatalf("New: %v", err)
	}
	return c
}
