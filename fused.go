// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package igx

import (
	"code.hybscloud.com/kont"
)

// CallThen performs req, discards the response and continues with next.
// Fuses Perform(Call{Request: req}) + Then.
func CallThen[B any](req *Request, next kont.Eff[B]) kont.Eff[B] {
	return kont.Then(kont.Perform(Call{Request: req}), next)
}

// CallBind performs req and passes the response to f.
// Fuses Perform(Call{Request: req}) + Bind.
func CallBind[B any](req *Request, f func(*Response) kont.Eff[B]) kont.Eff[B] {
	return kont.Bind(kont.Perform(Call{Request: req}), f)
}

// CallDone performs req and completes with its body.
// Fuses Perform(Call{Request: req}) + Bind + Pure.
func CallDone(req *Request) kont.Eff[Body] {
	return CallBind(req, func(resp *Response) kont.Eff[Body] {
		return kont.Pure(resp.Body)
	})
}
