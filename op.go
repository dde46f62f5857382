// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package igx

import (
	"code.hybscloud.com/kont"
)

// Call is the effect operation for one request/response step.
// Perform(Call{Request: r}) suspends the operation until a driver
// performs r and resumes it with the matching *Response.
type Call struct {
	kont.Phantom[*Response]
	Request *Request
}

// Fail is the effect operation that terminates an operation with err.
// It is the error effect of kont specialised to Go errors.
func Fail[A any](err error) kont.Eff[A] {
	return kont.ThrowError[error, A](err)
}

// errorDispatcher is the structural interface of kont error effects
// thrown with a Go error.
type errorDispatcher interface {
	DispatchError(ctx *kont.ErrorContext[error]) (kont.Resumed, bool)
}
