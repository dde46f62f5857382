// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package igx_test

import (
	"encoding/json"
	"errors"
	"testing"

	"code.hybscloud.com/igx"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
)

func TestNewStateFresh(t *testing.T) {
	st, err := igx.NewState(nil)
	if err != nil {
		t.Fatalf("NewState: %v", err)
	}
	if _, err := uuid.Parse(st.DeviceUUID()); err != nil {
		t.Fatalf("device uuid %q: %v", st.DeviceUUID(), err)
	}
	if _, ok := st.UsernameID(); ok {
		t.Fatal("fresh state has a user id")
	}
	if _, ok := st.RankToken(); ok {
		t.Fatal("fresh state has a rank token")
	}
	if st.Cookies() != nil {
		t.Fatalf("cookies got %v, want nil", st.Cookies())
	}
	want := map[string]any{igx.KeyDeviceUUID: st.DeviceUUID()}
	if diff := cmp.Diff(want, st.Export()); diff != "" {
		t.Fatalf("export mismatch (-want +got):\n%s", diff)
	}
}

func TestNewStateDerivesRankToken(t *testing.T) {
	st, err := igx.NewState(map[string]any{
		igx.KeyDeviceUUID: "dev",
		igx.KeyUsernameID: float64(42),
	})
	if err != nil {
		t.Fatalf("NewState: %v", err)
	}
	if tok, ok := st.RankToken(); !ok || tok != "42_dev" {
		t.Fatalf("rank token got %q %v, want %q true", tok, ok, "42_dev")
	}
}

func TestNewStateDropsOrphanRankToken(t *testing.T) {
	st, err := igx.NewState(map[string]any{igx.KeyRankToken: "42_dev"})
	if err != nil {
		t.Fatalf("NewState: %v", err)
	}
	if _, ok := st.RankToken(); ok {
		t.Fatal("rank token kept without a user id")
	}
}

func TestNewStateRejectsBadSeed(t *testing.T) {
	seeds := []map[string]any{
		{igx.KeyDeviceUUID: 7},
		{igx.KeyUsernameID: "forty-two"},
		{igx.KeyUsernameID: []int{42}},
		{igx.KeyCookies: map[string]any{"csrftoken": 1}},
		{igx.KeyCookies: "csrftoken=tok1"},
	}
	for _, seed := range seeds {
		if _, err := igx.NewState(seed); err == nil {
			t.Fatalf("seed %v: got nil error", seed)
		}
	}
}

func TestExportRoundTrip(t *testing.T) {
	st := loggedIn()
	exported := st.Export()

	again, err := igx.NewState(exported)
	if err != nil {
		t.Fatalf("NewState: %v", err)
	}
	if diff := cmp.Diff(exported, again.Export()); diff != "" {
		t.Fatalf("re-export mismatch (-want +got):\n%s", diff)
	}
	if tok, _ := again.RankToken(); tok != "42_"+st.DeviceUUID() {
		t.Fatalf("rank token got %q, want %q", tok, "42_"+st.DeviceUUID())
	}
}

func TestExportRoundTripThroughJSON(t *testing.T) {
	st := loggedIn()
	data, err := json.Marshal(st.Export())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var seed map[string]any
	if err := json.Unmarshal(data, &seed); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	again, err := igx.NewState(seed)
	if err != nil {
		t.Fatalf("NewState: %v", err)
	}
	if diff := cmp.Diff(st.Export(), again.Export()); diff != "" {
		t.Fatalf("export mismatch (-want +got):\n%s", diff)
	}
}

func TestExportIsolated(t *testing.T) {
	st := loggedIn()
	exported := st.Export()
	exported[igx.KeyCookies].(map[string]string)["csrftoken"] = "changed"
	if v, _ := st.Cookie("csrftoken"); v != "tok1" {
		t.Fatalf("csrftoken got %q, want %q", v, "tok1")
	}
}

func TestMergeCookies(t *testing.T) {
	st, _ := igx.NewState(nil)
	st.MergeCookies(nil)
	if st.Cookies() != nil {
		t.Fatal("empty merge created the jar")
	}
	st.MergeCookies(map[string]string{"a": "1", "b": "2"})
	st.MergeCookies(map[string]string{"b": "3", "c": "4"})
	want := map[string]string{"a": "1", "b": "3", "c": "4"}
	if diff := cmp.Diff(want, st.Cookies()); diff != "" {
		t.Fatalf("cookies mismatch (-want +got):\n%s", diff)
	}
}

func TestResetCookiesKeepsIdentity(t *testing.T) {
	st := loggedIn()
	st.ResetCookies()
	if got := st.Cookies(); len(got) != 0 || got == nil {
		t.Fatalf("cookies got %v, want empty jar", got)
	}
	if id, ok := st.UsernameID(); !ok || id != 42 {
		t.Fatalf("user id got %d %v, want 42 true", id, ok)
	}
	if u, p, ok := st.Credentials(); !ok || u != "alice" || p != "secret" {
		t.Fatalf("credentials got %q %q %v", u, p, ok)
	}
}

func TestStateDeviceID(t *testing.T) {
	st, _ := igx.NewState(nil)
	if _, err := st.DeviceID(); !errors.Is(err, igx.ErrNotLoggedIn) {
		t.Fatalf("got %v, want ErrNotLoggedIn", err)
	}
	id, err := loggedIn().DeviceID()
	if err != nil {
		t.Fatalf("DeviceID: %v", err)
	}
	if want := igx.DeviceID("alice", "secret"); id != want {
		t.Fatalf("got %q, want %q", id, want)
	}
}
