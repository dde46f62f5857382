// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package igx

import (
	"code.hybscloud.com/kont"
	"github.com/tidwall/sjson"
)

// Loop runs a recursive operation.
// step returns Left(nextState) to continue or Right(result) to finish.
func Loop[S, A any](initial S, step func(S) kont.Eff[kont.Either[S, A]]) kont.Eff[A] {
	return kont.Bind(step(initial), func(e kont.Either[S, A]) kont.Eff[A] {
		if left, ok := e.GetLeft(); ok {
			return Loop(left, step)
		}
		right, _ := e.GetRight()
		return kont.Pure(right)
	})
}

// cursor is the loop state of a paginated walk.
type cursor struct {
	maxID string
	pages int
	acc   Body
}

// Paginate follows the next_max_id cursor of a feed within one exchange,
// requesting at most limit pages (limit <= 0 means until the feed reports
// no more items). page builds the request for a cursor, "" being the first
// page. The result is a JSON array of the page bodies in order.
func Paginate(limit int, page func(maxID string) *Request) kont.Eff[Body] {
	type step = kont.Either[cursor, Body]
	return Loop(cursor{acc: Body("[]")}, func(c cursor) kont.Eff[step] {
		return CallBind(page(c.maxID), func(resp *Response) kont.Eff[step] {
			acc, err := sjson.SetRawBytes(c.acc, "-1", resp.Body)
			if err != nil {
				return Fail[step](err)
			}
			next := resp.Body.Get("next_max_id").String()
			more := resp.Body.Get("more_available")
			c = cursor{maxID: next, pages: c.pages + 1, acc: acc}
			if next == "" || (more.Exists() && !more.Bool()) || (limit > 0 && c.pages >= limit) {
				return kont.Pure(kont.Right[cursor, Body](c.acc))
			}
			return kont.Pure(kont.Left[cursor, Body](c))
		})
	})
}
