// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package igx

import (
	"context"

	"github.com/rs/zerolog"
)

// Client binds a State to a transport. All operations of one Client,
// whether run by Do or submitted to the Poller, are serialized and spaced
// by the configured delay.
type Client struct {
	state  *State
	driver *Driver
	poller *Poller
	log    zerolog.Logger
}

// New returns a Client resuming from seed, the result of a previous
// Export, or starting afresh when seed is nil.
func New(seed map[string]any, opts ...Option) (*Client, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	st, err := NewState(seed)
	if err != nil {
		return nil, err
	}
	transport := o.buildTransport()
	g, th := newGate(), newThrottle(o.delay)
	return &Client{
		state:  st,
		driver: &Driver{transport: transport, gate: g, throttle: th, log: o.log},
		poller: &Poller{transport: transport, gate: g, throttle: th, log: o.log},
		log:    o.log,
	}, nil
}

// State returns the session state of c.
func (c *Client) State() *State {
	return c.state
}

// Export returns the persistable session mapping.
func (c *Client) Export() map[string]any {
	return c.state.Export()
}

// session wraps an authenticated operation: cookies are tracked and an
// expired session is renewed once with the recorded credentials.
func (c *Client) session(p Protocol) Protocol {
	return Chain(p,
		WithCookies(c.state),
		WithRelogin(c.state, c.authentication(Relogin(c.state)), c.log),
	)
}

func (c *Client) authentication(p Protocol) Protocol {
	return Chain(p, WithCookies(c.state), WithAuthentication())
}

// Do runs p to completion with session handling.
func (c *Client) Do(ctx context.Context, p Protocol) (Body, error) {
	return c.driver.Run(ctx, c.session(p))
}

// Submit queues p on the non-blocking driver with session handling.
func (c *Client) Submit(p Protocol) *Task {
	return c.poller.Submit(c.session(p))
}

// Login authenticates and records the credentials for later renewal.
// Failures are reported as *AuthenticationError.
func (c *Client) Login(ctx context.Context, username, password string) (Body, error) {
	body, err := c.driver.Run(ctx, c.authentication(Login(c.state, username, password)))
	if err != nil {
		return nil, err
	}
	id, _ := c.state.UsernameID()
	c.log.Info().Str("username", username).Int64("username_id", id).Msg("logged in")
	return body, nil
}

// Logout ends the remote session. Local state is kept.
func (c *Client) Logout(ctx context.Context) (Body, error) {
	return c.Do(ctx, Logout())
}

// Timeline returns one page of the home timeline.
func (c *Client) Timeline(ctx context.Context, maxID string) (Body, error) {
	return c.Do(ctx, TimelineFeed(c.state, maxID))
}

// TimelinePages returns up to limit timeline pages as a JSON array.
func (c *Client) TimelinePages(ctx context.Context, limit int) (Body, error) {
	return c.Do(ctx, TimelinePages(c.state, limit))
}

// UserFeed returns one page of a user's media; userID 0 is the caller.
func (c *Client) UserFeed(ctx context.Context, userID int64, maxID string) (Body, error) {
	return c.Do(ctx, UserFeed(c.state, userID, maxID, 0))
}

// UsernameInfo returns a user profile; userID 0 is the caller.
func (c *Client) UsernameInfo(ctx context.Context, userID int64) (Body, error) {
	return c.Do(ctx, UsernameInfo(c.state, userID))
}

// Followers returns one page of a user's followers.
func (c *Client) Followers(ctx context.Context, userID int64, maxID string) (Body, error) {
	return c.Do(ctx, Followers(c.state, userID, maxID))
}

// FollowersPages returns up to limit pages of followers as a JSON array.
func (c *Client) FollowersPages(ctx context.Context, userID int64, limit int) (Body, error) {
	return c.Do(ctx, FollowersPages(c.state, userID, limit))
}

// Followings returns one page of the accounts a user follows.
func (c *Client) Followings(ctx context.Context, userID int64, maxID string) (Body, error) {
	return c.Do(ctx, Followings(c.state, userID, maxID))
}

// SearchUsers searches accounts by name.
func (c *Client) SearchUsers(ctx context.Context, query string) (Body, error) {
	return c.Do(ctx, SearchUsers(c.state, query))
}

// MediaInfo returns a media.
func (c *Client) MediaInfo(ctx context.Context, mediaID string) (Body, error) {
	return c.Do(ctx, MediaInfo(c.state, mediaID))
}

// Like likes a media.
func (c *Client) Like(ctx context.Context, mediaID string) (Body, error) {
	return c.Do(ctx, Like(c.state, mediaID))
}

// Unlike removes a like.
func (c *Client) Unlike(ctx context.Context, mediaID string) (Body, error) {
	return c.Do(ctx, Unlike(c.state, mediaID))
}

// Comment comments on a media.
func (c *Client) Comment(ctx context.Context, mediaID, text string) (Body, error) {
	return c.Do(ctx, MediaComment(c.state, mediaID, text))
}

// Follow follows a user.
func (c *Client) Follow(ctx context.Context, userID int64) (Body, error) {
	return c.Do(ctx, Follow(c.state, userID))
}

// Unfollow unfollows a user.
func (c *Client) Unfollow(ctx context.Context, userID int64) (Body, error) {
	return c.Do(ctx, Unfollow(c.state, userID))
}
