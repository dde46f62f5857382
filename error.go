// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package igx

import (
	"errors"
	"fmt"
)

// LoginRequired is the body "message" value the API uses to signal an
// expired session.
const LoginRequired = "login_required"

// Sentinel errors, matched with errors.Is.
var (
	// ErrSessionExpired matches a ProtocolError carrying the login_required marker.
	ErrSessionExpired = errors.New("igx: session expired")
	// ErrExhausted is returned by an Exchange stepped after it terminated.
	ErrExhausted = errors.New("igx: exchange exhausted")
	// ErrNotLoggedIn means the operation needs identity the state does not hold.
	ErrNotLoggedIn = errors.New("igx: not logged in")
	// ErrMissingCSRF means no csrftoken cookie was available to sign with.
	ErrMissingCSRF = errors.New("igx: csrftoken cookie missing")
	// ErrMalformedLogin means the login reply did not identify the user.
	ErrMalformedLogin = errors.New("igx: login reply carries no user id")
	// ErrEmptyBody means the remote host answered without a body.
	ErrEmptyBody = errors.New("igx: empty response body")
	// ErrInvalidBody means the body is not a JSON document.
	ErrInvalidBody = errors.New("igx: response body is not JSON")
)

// TransportError reports a failure below the protocol: the call did not
// complete, or its reply could not be read as JSON. It is never retried.
type TransportError struct {
	Method     string
	URL        string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("igx: transport: %s %s: status %d: %v", e.Method, e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("igx: transport: %s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ProtocolError reports a non-success reply. Response is the full reply,
// including status and body, for inspection by the caller.
type ProtocolError struct {
	Op       string
	Response *Response
}

func (e *ProtocolError) Error() string {
	msg := e.Message()
	if msg == "" {
		return fmt.Sprintf("igx: %s: status %d", e.Op, e.Response.StatusCode)
	}
	return fmt.Sprintf("igx: %s: status %d: %s", e.Op, e.Response.StatusCode, msg)
}

// Message returns the "message" field of the reply body, if any.
func (e *ProtocolError) Message() string {
	if e.Response == nil {
		return ""
	}
	return e.Response.Body.Get("message").String()
}

// Expired reports whether the reply signals an expired session.
func (e *ProtocolError) Expired() bool {
	return e.Response != nil && !e.Response.OK() && e.Message() == LoginRequired
}

// Is implements errors.Is for ErrSessionExpired.
func (e *ProtocolError) Is(target error) bool {
	return target == ErrSessionExpired && e.Expired()
}

// AuthenticationError reports a failed login exchange. It is fatal: the
// client does not retry it.
type AuthenticationError struct {
	Err error
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("igx: authentication failed: %v", e.Err)
}

func (e *AuthenticationError) Unwrap() error {
	return e.Err
}
