// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package igx

import (
	"encoding/json"
	"fmt"
	"maps"
	"strconv"
	"sync"

	"github.com/google/uuid"
)

// Keys of the exported session mapping.
const (
	KeyDeviceUUID = "device_uuid"
	KeyUsername   = "username"
	KeyPassword   = "password"
	KeyUsernameID = "username_id"
	KeyRankToken  = "rank_token"
	KeyCookies    = "cookies"
)

// State is the identity and cookie store shared by every operation of one
// client. It is mutated by the cookie and login steps of exchanges while
// the client's gate is held; reads may happen from any goroutine.
//
// Invariants: the device uuid is set at construction; the user id and the
// rank token are set together, at login only; cookies are absent until
// the first reply that sets one.
type State struct {
	mu         sync.RWMutex
	deviceUUID string
	username   string
	password   string
	usernameID int64
	hasID      bool
	rankToken  string
	cookies    map[string]string
}

// NewState builds a State, resuming from seed when it is non-nil. Seeds
// are the mappings produced by Export, possibly round-tripped through a
// store that decoded numbers as float64 or json.Number.
func NewState(seed map[string]any) (*State, error) {
	st := &State{}
	if err := st.load(seed); err != nil {
		return nil, err
	}
	if st.deviceUUID == "" {
		st.deviceUUID = uuid.NewString()
	}
	return st, nil
}

func (st *State) load(seed map[string]any) error {
	for k, v := range seed {
		switch k {
		case KeyDeviceUUID:
			s, ok := v.(string)
			if !ok {
				return fmt.Errorf("igx: state %s: want string, got %T", k, v)
			}
			st.deviceUUID = s
		case KeyUsername:
			st.username, _ = v.(string)
		case KeyPassword:
			st.password, _ = v.(string)
		case KeyUsernameID:
			id, err := parseUserID(v)
			if err != nil {
				return fmt.Errorf("igx: state %s: %w", k, err)
			}
			st.usernameID, st.hasID = id, true
		case KeyRankToken:
			st.rankToken, _ = v.(string)
		case KeyCookies:
			cookies, err := parseCookies(v)
			if err != nil {
				return fmt.Errorf("igx: state %s: %w", k, err)
			}
			st.cookies = cookies
		}
	}
	switch {
	case !st.hasID:
		st.rankToken = ""
	case st.rankToken == "" && st.deviceUUID != "":
		st.rankToken = rankToken(st.usernameID, st.deviceUUID)
	}
	return nil
}

func parseUserID(v any) (int64, error) {
	switch x := v.(type) {
	case int:
		return int64(x), nil
	case int64:
		return x, nil
	case float64:
		return int64(x), nil
	case json.Number:
		return x.Int64()
	case string:
		return strconv.ParseInt(x, 10, 64)
	}
	return 0, fmt.Errorf("unsupported type %T", v)
}

func parseCookies(v any) (map[string]string, error) {
	switch x := v.(type) {
	case map[string]string:
		return maps.Clone(x), nil
	case map[string]any:
		out := make(map[string]string, len(x))
		for k, val := range x {
			s, ok := val.(string)
			if !ok {
				return nil, fmt.Errorf("cookie %s: want string, got %T", k, val)
			}
			out[k] = s
		}
		return out, nil
	case nil:
		return nil, nil
	}
	return nil, fmt.Errorf("unsupported type %T", v)
}

func rankToken(id int64, deviceUUID string) string {
	return strconv.FormatInt(id, 10) + "_" + deviceUUID
}

// Export returns the state as a plain mapping suitable for persistence.
// Absent fields are omitted; NewState(st.Export()) reproduces st.
func (st *State) Export() map[string]any {
	st.mu.RLock()
	defer st.mu.RUnlock()
	out := map[string]any{KeyDeviceUUID: st.deviceUUID}
	if st.username != "" {
		out[KeyUsername] = st.username
	}
	if st.password != "" {
		out[KeyPassword] = st.password
	}
	if st.hasID {
		out[KeyUsernameID] = st.usernameID
		out[KeyRankToken] = st.rankToken
	}
	if st.cookies != nil {
		out[KeyCookies] = maps.Clone(st.cookies)
	}
	return out
}

// DeviceUUID returns the device uuid generated for this state.
func (st *State) DeviceUUID() string {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.deviceUUID
}

// Username returns the login name, if credentials were recorded.
func (st *State) Username() string {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.username
}

// Credentials returns the recorded login credentials.
func (st *State) Credentials() (username, password string, ok bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.username, st.password, st.username != ""
}

// DeviceID derives the device identifier from the recorded credentials.
func (st *State) DeviceID() (string, error) {
	username, password, ok := st.Credentials()
	if !ok {
		return "", ErrNotLoggedIn
	}
	return DeviceID(username, password), nil
}

// UsernameID returns the authenticated user id.
func (st *State) UsernameID() (int64, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.usernameID, st.hasID
}

// RankToken returns the rank token derived at login.
func (st *State) RankToken() (string, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.rankToken, st.hasID
}

// Cookies returns a snapshot of the cookie jar. The result is nil while
// no cookie has been received.
func (st *State) Cookies() map[string]string {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return maps.Clone(st.cookies)
}

// Cookie returns a single cookie value.
func (st *State) Cookie(name string) (string, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	v, ok := st.cookies[name]
	return v, ok
}

// MergeCookies adds delta to the jar. Existing keys are overwritten and
// no key is ever removed.
func (st *State) MergeCookies(delta map[string]string) {
	if len(delta) == 0 {
		return
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.cookies == nil {
		st.cookies = make(map[string]string, len(delta))
	}
	maps.Copy(st.cookies, delta)
}

// ResetCookies empties the jar and keeps identity fields.
func (st *State) ResetCookies() {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.cookies = map[string]string{}
}

// completeLogin records the credentials that succeeded with the user id
// and derives the rank token.
func (st *State) completeLogin(username, password string, id int64) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.username, st.password = username, password
	st.usernameID, st.hasID = id, true
	st.rankToken = rankToken(id, st.deviceUUID)
}

// authFields returns the identity prefix of a signed mutating payload
// followed by extra.
func (st *State) authFields(extra ...Field) (Fields, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	if !st.hasID {
		return nil, ErrNotLoggedIn
	}
	csrf, ok := st.cookies[CookieCSRF]
	if !ok {
		return nil, ErrMissingCSRF
	}
	fields := make(Fields, 0, 3+len(extra))
	fields = append(fields,
		F("_uuid", st.deviceUUID),
		F("_uid", st.usernameID),
		F("_csrftoken", csrf),
	)
	return append(fields, extra...), nil
}
