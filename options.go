// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package igx

import (
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
)

// DefaultDelay is the minimum gap between two calls of one client.
const DefaultDelay = 5 * time.Second

// Option configures a Client.
type Option func(*options)

type options struct {
	baseURL   string
	delay     time.Duration
	transport Transport
	client    *http.Client
	proxy     *url.URL
	userAgent string
	log       zerolog.Logger
}

func defaultOptions() options {
	return options{
		baseURL: BaseURL,
		delay:   DefaultDelay,
		log:     zerolog.Nop(),
	}
}

// WithBaseURL sets the API root joined with request paths.
func WithBaseURL(u string) Option {
	return func(o *options) {
		o.baseURL = u
	}
}

// WithDelay sets the minimum gap between the end of a call and the start
// of the next one. Zero disables throttling.
func WithDelay(d time.Duration) Option {
	return func(o *options) {
		if d < 0 {
			d = 0
		}
		o.delay = d
	}
}

// WithTransport replaces the HTTP transport. WithBaseURL, WithHTTPClient,
// WithProxy and WithUserAgent are then ignored.
func WithTransport(t Transport) Option {
	return func(o *options) {
		o.transport = t
	}
}

// WithHTTPClient sets the client used by the HTTP transport. Its timeout
// bounds every call.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.client = c
	}
}

// WithProxy routes calls through proxy.
func WithProxy(proxy *url.URL) Option {
	return func(o *options) {
		o.proxy = proxy
	}
}

// WithUserAgent overrides the default user agent.
func WithUserAgent(ua string) Option {
	return func(o *options) {
		o.userAgent = ua
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(log zerolog.Logger) Option {
	return func(o *options) {
		o.log = log
	}
}

func (o *options) buildTransport() Transport {
	if o.transport != nil {
		return o.transport
	}
	t := NewHTTPTransport(o.baseURL, o.proxy)
	if o.client != nil {
		c := *o.client
		if o.proxy != nil {
			c.Transport = proxied(c.Transport, o.proxy)
		}
		t.Client = &c
	}
	if o.userAgent != "" {
		t.Header = map[string]string{"User-Agent": o.userAgent}
	}
	return t
}

// proxied returns rt routed through proxy when rt is an *http.Transport
// or nil; other round trippers are returned unchanged.
func proxied(rt http.RoundTripper, proxy *url.URL) http.RoundTripper {
	var tr *http.Transport
	switch x := rt.(type) {
	case nil:
		tr = http.DefaultTransport.(*http.Transport).Clone()
	case *http.Transport:
		tr = x.Clone()
	default:
		return rt
	}
	tr.Proxy = http.ProxyURL(proxy)
	return tr
}
