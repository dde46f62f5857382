// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package igx_test

import (
	"errors"
	"testing"

	"code.hybscloud.com/igx"
	"code.hybscloud.com/kont"
)

func feedPage(maxID string) *igx.Request {
	var params igx.Fields
	if maxID != "" {
		params = append(params, igx.F("max_id", maxID))
	}
	return igx.NewGet("feed/", params...)
}

func TestPaginateFollowsCursor(t *testing.T) {
	x := igx.NewExchange("feed", igx.Paginate(0, feedPage))
	reqs, step := drive(x,
		reply(200, `{"items":[1],"next_max_id":"c1","more_available":true}`),
		reply(200, `{"items":[2],"next_max_id":"c2","more_available":true}`),
		reply(200, `{"items":[3],"more_available":false}`),
	)
	if step.Kind != igx.StepCompleted {
		t.Fatalf("got %+v, want completed", step)
	}
	if len(reqs) != 3 {
		t.Fatalf("requests got %d, want 3", len(reqs))
	}
	if len(reqs[0].Params) != 0 {
		t.Fatalf("first page params got %v, want none", reqs[0].Params)
	}
	if v, _ := reqs[2].Params.Get("max_id"); v != "c2" {
		t.Fatalf("third page max_id got %v, want c2", v)
	}
	if got := step.Body.Get("#").Int(); got != 3 {
		t.Fatalf("pages got %d, want 3", got)
	}
	if got := step.Body.Get("2.items.0").Int(); got != 3 {
		t.Fatalf("last item got %d, want 3", got)
	}
}

func TestPaginateLimit(t *testing.T) {
	x := igx.NewExchange("feed", igx.Paginate(2, feedPage))
	reqs, step := drive(x,
		reply(200, `{"next_max_id":"c1","more_available":true}`),
		reply(200, `{"next_max_id":"c2","more_available":true}`),
		reply(200, `{}`),
	)
	if len(reqs) != 2 {
		t.Fatalf("requests got %d, want 2", len(reqs))
	}
	if step.Kind != igx.StepCompleted || step.Body.Get("#").Int() != 2 {
		t.Fatalf("got %+v, want 2 pages", step)
	}
}

func TestPaginateStopsWithoutCursor(t *testing.T) {
	x := igx.NewExchange("feed", igx.Paginate(0, feedPage))
	reqs, step := drive(x, reply(200, `{"items":[]}`), reply(200, `{}`))
	if len(reqs) != 1 || step.Kind != igx.StepCompleted {
		t.Fatalf("got %d requests, step %+v", len(reqs), step)
	}
}

func TestPaginateFailurePage(t *testing.T) {
	x := igx.NewExchange("feed", igx.Paginate(0, feedPage))
	_, step := drive(x,
		reply(200, `{"next_max_id":"c1"}`),
		reply(429, `{"message":"Please wait a few minutes before you try again."}`),
	)
	var perr *igx.ProtocolError
	if !errors.As(step.Err, &perr) || perr.Response.StatusCode != 429 {
		t.Fatalf("got %v, want 429 *ProtocolError", step.Err)
	}
}

func TestLoopCountdown(t *testing.T) {
	eff := igx.Loop(3, func(n int) kont.Eff[kont.Either[int, igx.Body]] {
		if n == 0 {
			return kont.Pure(kont.Right[int, igx.Body](igx.Body(`{"done":true}`)))
		}
		return igx.CallBind(igx.NewGet("tick/"), func(*igx.Response) kont.Eff[kont.Either[int, igx.Body]] {
			return kont.Pure(kont.Left[int, igx.Body](n - 1))
		})
	})
	reqs, step := drive(igx.NewExchange("loop", eff), reply(200, `{}`), reply(200, `{}`), reply(200, `{}`))
	if len(reqs) != 3 || step.Kind != igx.StepCompleted {
		t.Fatalf("got %d requests, step %+v", len(reqs), step)
	}
}
