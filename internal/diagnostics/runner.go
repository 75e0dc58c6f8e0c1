/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package diagnostics

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/friendsincode/aegir_ocean/internal/clock"
	"github.com/friendsincode/aegir_ocean/internal/events"
	"github.com/friendsincode/aegir_ocean/internal/telemetry"
)

// Publisher delivers run events to interested consumers. Both the in-process
// bus and its NATS mirror satisfy it.
type Publisher interface {
	Publish(eventType events.EventType, payload events.Payload)
}

// Sink receives finalized window averages. Sinks run synchronously inside
// the step; a failing sink is logged and skipped, it never stalls the run.
type Sink interface {
	OnActuation(ctx context.Context, res Result, c clock.Clock) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ctx context.Context, res Result, c clock.Clock) error

func (f SinkFunc) OnActuation(ctx context.Context, res Result, c clock.Clock) error {
	return f(ctx, res, c)
}

// Runner owns the accumulators of a run and advances each exactly once per
// simulation step, strictly after the clock has ticked. Accumulators never
// share state, so their relative order within a step is irrelevant; the
// registration order is kept for determinism anyway.
type Runner struct {
	accumulators []*WindowAccumulator
	sinks        []Sink
	bus          Publisher
	logger       zerolog.Logger
}

// NewRunner constructs an empty runner.
func NewRunner(logger zerolog.Logger) *Runner {
	return &Runner{logger: logger}
}

// Register adds an accumulator to the run and routes its advisory warnings
// onto the event bus.
func (r *Runner) Register(acc *WindowAccumulator) {
	r.accumulators = append(r.accumulators, acc)
	acc.warnHook = func(kind, message string) {
		r.publishWarning(acc.Name(), kind, message)
	}
	if r.bus != nil && acc.Schedule().Stride() > 1 {
		r.publishWarning(acc.Name(), "degenerate_window",
			"stride > 1 with a variable timestep may skip or repeat intended sample times")
	}
}

// AddSink subscribes a sink to window actuations.
func (r *Runner) AddSink(s Sink) {
	r.sinks = append(r.sinks, s)
}

// SetPublisher attaches the event bus. Construction-time advisories for
// accumulators registered before the bus was wired are emitted here so no
// consumer misses them.
func (r *Runner) SetPublisher(p Publisher) {
	r.bus = p
	for _, acc := range r.accumulators {
		if acc.Schedule().Stride() > 1 {
			r.publishWarning(acc.Name(), "degenerate_window",
				"stride > 1 with a variable timestep may skip or repeat intended sample times")
		}
	}
}

func (r *Runner) publishWarning(name, kind, message string) {
	if r.bus == nil {
		return
	}
	r.bus.Publish(events.EventWarning, events.Payload{
		"diagnostic": name,
		"kind":       kind,
		"message":    message,
	})
}

// Accumulators returns the registered accumulators in registration order.
func (r *Runner) Accumulators() []*WindowAccumulator {
	return r.accumulators
}

// Lookup returns the accumulator for a diagnostic name, or nil.
func (r *Runner) Lookup(name string) *WindowAccumulator {
	for _, acc := range r.accumulators {
		if acc.Name() == name {
			return acc
		}
	}
	return nil
}

// Step advances every accumulator for the current clock and fans finalized
// averages out to the sinks.
func (r *Runner) Step(ctx context.Context, c clock.Clock) {
	for _, acc := range r.accumulators {
		wasCollecting := acc.Collecting()
		closed := acc.Advance(c)
		// A window that opens and closes on the same tick still gets its
		// open event.
		if r.bus != nil && !wasCollecting && (acc.Collecting() || closed) {
			r.bus.Publish(events.EventWindowOpened, events.Payload{
				"diagnostic":   acc.Name(),
				"window_start": acc.windowStartTime,
				"time":         c.Time,
				"iteration":    c.Iteration,
			})
		}
		if !closed {
			continue
		}
		res := acc.Result()
		telemetry.DiagnosticActuationsTotal.WithLabelValues(acc.Name()).Inc()
		r.logger.Debug().
			Str("diagnostic", acc.Name()).
			Float64("window_start", res.WindowStart).
			Float64("window_end", res.WindowEnd).
			Int("samples", res.Samples).
			Msg("window closed")

		for _, s := range r.sinks {
			if err := s.OnActuation(ctx, res, c); err != nil {
				r.logger.Warn().Err(err).
					Str("diagnostic", acc.Name()).
					Msg("actuation sink failed")
			}
		}
	}
}
