// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package igx

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the file configuration of a Client.
type Config struct {
	BaseURL   string
	UserAgent string
	Proxy     string
	Delay     time.Duration
	// Timeout bounds each HTTP call. Zero means no timeout.
	Timeout time.Duration
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		BaseURL:   BaseURL,
		UserAgent: UserAgent,
		Delay:     DefaultDelay,
	}
}

type fileConfig struct {
	BaseURL   string `toml:"base_url"`
	UserAgent string `toml:"user_agent"`
	Proxy     string `toml:"proxy"`
	Delay     string `toml:"delay"`
	Timeout   string `toml:"timeout"`
}

// LoadConfig reads a TOML file over DefaultConfig. Keys absent from the
// file keep their default.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("igx: load config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("igx: load config: unknown key %q", undecoded[0].String())
	}

	if meta.IsDefined("base_url") {
		cfg.BaseURL = strings.TrimSpace(raw.BaseURL)
	}
	if meta.IsDefined("user_agent") {
		cfg.UserAgent = strings.TrimSpace(raw.UserAgent)
	}
	if meta.IsDefined("proxy") {
		cfg.Proxy = strings.TrimSpace(raw.Proxy)
	}
	if meta.IsDefined("delay") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.Delay))
		if err != nil {
			return Config{}, fmt.Errorf("igx: parse delay: %w", err)
		}
		cfg.Delay = d
	}
	if meta.IsDefined("timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.Timeout))
		if err != nil {
			return Config{}, fmt.Errorf("igx: parse timeout: %w", err)
		}
		cfg.Timeout = d
	}
	return cfg, cfg.Validate()
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("igx: config: invalid base_url %q", c.BaseURL)
	}
	if !strings.HasSuffix(c.BaseURL, "/") {
		return fmt.Errorf("igx: config: base_url %q must end with /", c.BaseURL)
	}
	if c.Proxy != "" {
		if p, err := url.Parse(c.Proxy); err != nil || p.Host == "" {
			return fmt.Errorf("igx: config: invalid proxy %q", c.Proxy)
		}
	}
	if c.Delay < 0 {
		return fmt.Errorf("igx: config: negative delay %s", c.Delay)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("igx: config: negative timeout %s", c.Timeout)
	}
	return nil
}

// Options translates c into client options. c must be valid.
func (c Config) Options() []Option {
	opts := []Option{WithBaseURL(c.BaseURL), WithDelay(c.Delay)}
	if c.UserAgent != "" && c.UserAgent != UserAgent {
		opts = append(opts, WithUserAgent(c.UserAgent))
	}
	if c.Proxy != "" {
		if p, err := url.Parse(c.Proxy); err == nil {
			opts = append(opts, WithProxy(p))
		}
	}
	if c.Timeout > 0 {
		opts = append(opts, WithHTTPClient(&http.Client{Timeout: c.Timeout}))
	}
	return opts
}
