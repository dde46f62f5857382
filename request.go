// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package igx

import (
	"maps"
	"net/http"

	"github.com/tidwall/gjson"
)

// BaseURL is the API root every request path is joined to.
const BaseURL = "https://i.instagram.com/api/v1/"

// UserAgent identifies the client as the android application.
const UserAgent = "Instagram 10.26.0 Android (18/4.3; 320dpi; 720x1280; Xiaomi; HM 1SW; armani; qcom; en_US)"

// Cookie names tracked in session state.
const (
	CookieCSRF    = "csrftoken"
	CookieSession = "sessionid"
)

// DefaultHeader returns a fresh copy of the headers sent with every request.
func DefaultHeader() map[string]string {
	return map[string]string{
		"Connection":      "close",
		"Accept":          "*/*",
		"Content-Type":    "application/x-www-form-urlencoded; charset=UTF-8",
		"Cookie2":         "$Version=1",
		"Accept-Language": "en-US",
		"User-Agent":      UserAgent,
	}
}

var defaultHeader = DefaultHeader()

// Request describes one HTTP call. A Request is never mutated once it
// has been emitted by an Exchange; derived requests are copies.
type Request struct {
	Method  string
	Path    string
	Params  Fields
	Header  map[string]string
	Body    string
	Cookies map[string]string
}

// NewGet returns a GET request for path with optional query params.
func NewGet(path string, params ...Field) *Request {
	return &Request{
		Method: http.MethodGet,
		Path:   path,
		Params: Fields(params),
		Header: DefaultHeader(),
	}
}

// NewPost returns a POST request for path carrying an encoded body.
func NewPost(path, body string) *Request {
	return &Request{
		Method: http.MethodPost,
		Path:   path,
		Header: DefaultHeader(),
		Body:   body,
	}
}

// WithHeader returns a copy of r with header key set to value.
func (r *Request) WithHeader(key, value string) *Request {
	out := *r
	out.Header = maps.Clone(r.Header)
	if out.Header == nil {
		out.Header = make(map[string]string, 1)
	}
	out.Header[key] = value
	return &out
}

// withCookies returns a copy of r carrying the given cookie snapshot.
func (r *Request) withCookies(cookies map[string]string) *Request {
	out := *r
	out.Cookies = cookies
	return &out
}

// Response is the protocol view of one HTTP reply: cookies set by the
// reply, the JSON body and the status code.
type Response struct {
	StatusCode int
	Cookies    map[string]string
	Body       Body
}

// OK reports whether the response carries a success status.
func (r *Response) OK() bool {
	return r.StatusCode == http.StatusOK
}

// Body is a validated JSON document, read with gjson path syntax.
type Body []byte

// Get returns the value at path, e.g. "logged_in_user.pk".
func (b Body) Get(path string) gjson.Result {
	return gjson.GetBytes(b, path)
}

// Valid reports whether b is a well-formed JSON document.
func (b Body) Valid() bool {
	return len(b) > 0 && gjson.ValidBytes(b)
}

// MarshalJSON emits b verbatim.
func (b Body) MarshalJSON() ([]byte, error) {
	if len(b) == 0 {
		return []byte("null"), nil
	}
	return b, nil
}

func (b Body) String() string {
	return string(b)
}
