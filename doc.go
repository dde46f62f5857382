// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package igx is a client for the private mobile photo API, built as
// sans-I/O exchanges stepped by pluggable drivers on top of
// [code.hybscloud.com/kont].
//
// An API operation is a [Protocol]: a factory of [Exchange] values that
// emit [Request] steps and consume [Response] values without doing any I/O
// themselves. Operations are written as kont computations performing the
// [Call] effect.
//
// # Architecture
//
//   - Signer: [Sign] produces the versioned HMAC-SHA256 signed body of a mutating call.
//   - State: [State] holds the device uuid, the user id, the rank token and the cookie jar; [State.Export] and [NewState] persist and resume it.
//   - Middleware: [WithCookies] merges reply cookies into the state; [WithRelogin] renews an expired session once and restarts the operation.
//   - Drivers: [Driver] blocks the caller; [Poller] never blocks and returns [code.hybscloud.com/iox.ErrWouldBlock]. Both share the per-client gate and throttle.
//   - Transport: [HTTPTransport] performs calls over net/http; any [Transport] can replace it.
//
// # Operations
//
//   - Login: [Login], [Relogin], [Logout].
//   - Catalog: [TimelineFeed], [UserFeed], [Followers], [Like], [Follow] and the rest of the endpoint builders.
//   - Pagination: [Paginate] follows next_max_id within one exchange.
//
// # Example
//
//	c, _ := igx.New(nil, igx.WithDelay(2*time.Second))
//	if _, err := c.Login(ctx, "alice", "secret"); err != nil {
//		return err
//	}
//	body, err := c.Timeline(ctx, "")
//	if err != nil {
//		return err
//	}
//	fmt.Println(body.Get("num_results").Int())
package igx
