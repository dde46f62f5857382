// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package igx

import (
	"context"

	"github.com/rs/zerolog"
)

// Driver runs exchanges to completion, blocking the calling goroutine.
// Exchanges of one client are serialized by the client's gate and their
// network calls are spaced by its throttle.
type Driver struct {
	transport Transport
	gate      gate
	throttle  *throttle
	log       zerolog.Logger
}

// Run creates an exchange from p and steps it to completion.
//
// Waiting for the gate and for the throttle delay honour ctx. A network
// call that has started is not interrupted by ctx: its reply is fed to the
// exchange first, and cancellation is reported at the next suspension.
func (d *Driver) Run(ctx context.Context, p Protocol) (Body, error) {
	if err := d.gate.acquire(ctx); err != nil {
		return nil, err
	}
	defer d.gate.release()

	x := p()
	log := d.log.With().Uint32("exchange", nextSerial()).Str("op", x.Name()).Logger()
	step := x.Next(nil)
	for step.Kind == StepRequest {
		req := step.Request
		wait, err := d.throttle.wait(ctx)
		if err != nil {
			log.Debug().Err(err).Msg("abandoned")
			return nil, err
		}
		log.Debug().Str("method", req.Method).Str("path", req.Path).Dur("throttled", wait).Msg("call")
		resp, err := d.transport.RoundTrip(context.WithoutCancel(ctx), req)
		d.throttle.mark(d.throttle.now())
		if err != nil {
			log.Debug().Err(err).Msg("transport failure")
			return nil, err
		}
		log.Debug().Int("status", resp.StatusCode).Msg("reply")
		step = x.Next(resp)
	}
	if step.Kind == StepFailed {
		log.Debug().Err(step.Err).Msg("failed")
		return nil, step.Err
	}
	return step.Body, nil
}
