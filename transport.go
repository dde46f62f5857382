// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package igx

import (
	"bytes"
	"context"
	"io"
	"maps"
	"net/http"
	"net/url"
	"slices"
	"strings"
)

// Transport performs one Request and translates the HTTP reply into a
// Response. Failures below the protocol are reported as *TransportError.
type Transport interface {
	RoundTrip(ctx context.Context, req *Request) (*Response, error)
}

// TransportFunc adapts a function to Transport.
type TransportFunc func(ctx context.Context, req *Request) (*Response, error)

// RoundTrip calls f(ctx, req).
func (f TransportFunc) RoundTrip(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}

// maxBodySize bounds the reply bodies read by HTTPTransport.
const maxBodySize = 1 << 24

// HTTPTransport is the net/http Transport.
type HTTPTransport struct {
	// BaseURL is joined with Request.Path. Defaults to the package BaseURL.
	BaseURL string
	// Header replaces default headers of every request, e.g. the user
	// agent. A value set on the request with WithHeader still wins.
	Header map[string]string
	// Client performs the calls. Call timeouts belong to it.
	Client *http.Client
}

// NewHTTPTransport returns a transport for baseURL, routed through proxy
// when it is non-nil.
func NewHTTPTransport(baseURL string, proxy *url.URL) *HTTPTransport {
	t := &HTTPTransport{BaseURL: baseURL, Client: &http.Client{}}
	if proxy != nil {
		tr := http.DefaultTransport.(*http.Transport).Clone()
		tr.Proxy = http.ProxyURL(proxy)
		t.Client.Transport = tr
	}
	return t
}

// RoundTrip implements Transport.
func (t *HTTPTransport) RoundTrip(ctx context.Context, req *Request) (*Response, error) {
	target := t.url(req)
	var body io.Reader
	if req.Body != "" {
		body = strings.NewReader(req.Body)
	}
	hreq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, &TransportError{Method: req.Method, URL: target, Err: err}
	}
	for k, v := range t.Header {
		hreq.Header.Set(k, v)
	}
	for k, v := range req.Header {
		if _, ok := t.Header[k]; ok && v == defaultHeader[k] {
			continue
		}
		hreq.Header.Set(k, v)
	}
	if len(req.Cookies) > 0 {
		hreq.Header.Set("Cookie", cookieHeader(req.Cookies))
	}

	client := t.Client
	if client == nil {
		client = http.DefaultClient
	}
	hresp, err := client.Do(hreq)
	if err != nil {
		return nil, &TransportError{Method: req.Method, URL: target, Err: err}
	}
	defer hresp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(hresp.Body, maxBodySize))
	if err != nil {
		return nil, &TransportError{Method: req.Method, URL: target, StatusCode: hresp.StatusCode, Err: err}
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, &TransportError{Method: req.Method, URL: target, StatusCode: hresp.StatusCode, Err: ErrEmptyBody}
	}
	b := Body(data)
	if !b.Valid() {
		return nil, &TransportError{Method: req.Method, URL: target, StatusCode: hresp.StatusCode, Err: ErrInvalidBody}
	}

	cookies := make(map[string]string)
	for _, c := range hresp.Cookies() {
		cookies[c.Name] = c.Value
	}
	return &Response{StatusCode: hresp.StatusCode, Cookies: cookies, Body: b}, nil
}

// url joins the base URL, the request path and its query parameters.
// Paths of the catalog may already carry a query or a bare '?'.
func (t *HTTPTransport) url(req *Request) string {
	base := t.BaseURL
	if base == "" {
		base = BaseURL
	}
	u := base + req.Path
	if len(req.Params) == 0 {
		return u
	}
	switch {
	case strings.HasSuffix(u, "?"):
	case strings.Contains(u, "?"):
		u += "&"
	default:
		u += "?"
	}
	return u + req.Params.Encode()
}

// cookieHeader renders cookies sorted by name for a stable header.
func cookieHeader(cookies map[string]string) string {
	names := slices.Sorted(maps.Keys(cookies))
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, (&http.Cookie{Name: name, Value: cookies[name]}).String())
	}
	return strings.Join(parts, "; ")
}
