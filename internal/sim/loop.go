/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package sim

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/friendsincode/aegir_ocean/internal/clock"
	"github.com/friendsincode/aegir_ocean/internal/diagnostics"
	"github.com/friendsincode/aegir_ocean/internal/telemetry"
)

// Loop steps the model forward until the stop time, driving the diagnostics
// runner exactly once per step, strictly after the clock has advanced. The
// loop itself is single-threaded; only the clock snapshot accessor is safe
// to call from other goroutines (the status API reads it).
type Loop struct {
	model  *Model
	runner *diagnostics.Runner
	logger zerolog.Logger

	baseDt   float64
	maxDt    float64
	stopTime float64

	mu  sync.Mutex
	clk clock.Clock
}

// NewLoop wires a model and a runner into a stepping loop. When maxDt is
// positive the timestep ramps up from baseDt by 1% per step until capped,
// which exercises the variable-timestep path of the averaging machinery.
func NewLoop(model *Model, runner *diagnostics.Runner, baseDt, maxDt, stopTime float64, logger zerolog.Logger) *Loop {
	return &Loop{
		model:    model,
		runner:   runner,
		logger:   logger,
		baseDt:   baseDt,
		maxDt:    maxDt,
		stopTime: stopTime,
	}
}

// Clock returns the current clock snapshot.
func (l *Loop) Clock() clock.Clock {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.clk
}

// Run executes the loop until the stop time or context cancellation.
func (l *Loop) Run(ctx context.Context) error {
	ctx, span := telemetry.Tracer("aegir/sim").Start(ctx, "sim.run")
	defer span.End()

	l.logger.Info().
		Float64("stop_time", l.stopTime).
		Float64("base_dt", l.baseDt).
		Msg("simulation loop started")

	dt := l.baseDt
	for l.Clock().Time < l.stopTime {
		select {
		case <-ctx.Done():
			l.logger.Info().Msg("simulation loop cancelled")
			return ctx.Err()
		default:
		}

		l.model.Step(dt)

		l.mu.Lock()
		l.clk = l.clk.Advance(dt)
		c := l.clk
		l.mu.Unlock()

		l.runner.Step(ctx, c)

		telemetry.SimStepsTotal.Inc()
		telemetry.SimTime.Set(c.Time)
		telemetry.SimTimestep.Set(dt)

		if l.maxDt > 0 && dt < l.maxDt {
			dt *= 1.01
			if dt > l.maxDt {
				dt = l.maxDt
			}
		}
	}

	l.logger.Info().
		Float64("time", l.Clock().Time).
		Int64("iterations", l.Clock().Iteration).
		Msg("simulation loop finished")
	return nil
}
