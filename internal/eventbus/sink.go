/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package eventbus

import (
	"context"

	"github.com/friendsincode/aegir_ocean/internal/clock"
	"github.com/friendsincode/aegir_ocean/internal/diagnostics"
	"github.com/friendsincode/aegir_ocean/internal/events"
)

// ActuationSink returns a diagnostics sink that publishes every finalized
// average as an EventActuation.
func (nb *NATSBus) ActuationSink() diagnostics.Sink {
	return diagnostics.SinkFunc(func(_ context.Context, res diagnostics.Result, c clock.Clock) error {
		nb.Publish(events.EventActuation, events.Payload{
			"diagnostic":      res.Name,
			"values":          res.Values,
			"window_start":    res.WindowStart,
			"window_end":      res.WindowEnd,
			"start_iteration": res.StartIteration,
			"end_iteration":   res.EndIteration,
			"samples":         res.Samples,
			"sim_time":        c.Time,
			"iteration":       c.Iteration,
		})
		return nil
	})
}
