/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package diagnostics accumulates diagnostic quantities into running
// time-averages over the windows its schedule opens, and drives a set of
// accumulators once per simulation step.
package diagnostics

import (
	"github.com/rs/zerolog"

	"github.com/friendsincode/aegir_ocean/internal/clock"
	"github.com/friendsincode/aegir_ocean/internal/schedule"
	"github.com/friendsincode/aegir_ocean/internal/telemetry"
)

// Operand returns the current value of the tracked quantity. The returned
// slice must keep a fixed length for the lifetime of the accumulator; a
// scalar quantity is a slice of length one. The operand is invoked only on
// accumulation events, not on every tick.
type Operand func() []float64

// ScalarOperand adapts a scalar fetch to the Operand signature.
func ScalarOperand(fn func() float64) Operand {
	buf := make([]float64, 1)
	return func() []float64 {
		buf[0] = fn()
		return buf
	}
}

// WindowAccumulator folds operand samples into a running time-average over
// the window its schedule keeps open. It is a two-state machine: Idle while
// waiting for a window, Collecting inside one. The average is an incremental
// left Riemann sum, weighted by elapsed simulation time rather than by
// iteration count, so non-uniform timesteps average correctly.
type WindowAccumulator struct {
	name    string
	sched   schedule.Schedule
	operand Operand
	logger  zerolog.Logger

	result               []float64
	windowStartTime      float64
	windowStartIteration int64
	previousSampleTime   float64
	endIteration         int64
	samples              int
	complete             bool
	warnedPremature      bool

	// warnHook, when set, receives advisory warnings in addition to the log
	// and metrics channels. The runner wires it to the event bus.
	warnHook func(kind, message string)
}

// NewWindowAccumulator builds an accumulator owning the given schedule. The
// schedule must not be shared with another accumulator; clone templates
// first. The initial buffer holds a snapshot of the operand as a placeholder
// until the first window closes.
func NewWindowAccumulator(name string, sched schedule.Schedule, op Operand, logger zerolog.Logger) *WindowAccumulator {
	snapshot := op()
	result := make([]float64, len(snapshot))
	copy(result, snapshot)

	if sched.Stride() > 1 {
		// Iteration-based stride against a variable timestep decouples the
		// sampling cadence from calendar time. The time-based weights keep
		// the average itself correct, so this is advisory only.
		logger.Warn().
			Str("diagnostic", name).
			Int64("stride", sched.Stride()).
			Msg("stride > 1 with a variable timestep may skip or repeat intended sample times")
		telemetry.DiagnosticWarningsTotal.WithLabelValues(name, "degenerate_window").Inc()
	}

	return &WindowAccumulator{
		name:    name,
		sched:   sched,
		operand: op,
		logger:  logger,
		result:  result,
	}
}

// Name returns the diagnostic name this accumulator tracks.
func (w *WindowAccumulator) Name() string { return w.name }

// Schedule exposes the owned schedule, mainly for relevance queries
// (ShouldActuate) by a generic output scheduler.
func (w *WindowAccumulator) Schedule() schedule.Schedule { return w.sched }

// Advance runs one tick of the state machine and reports whether the window
// closed on this tick (a finalized average is available). It must be called
// exactly once per simulation step, after the clock has been advanced.
func (w *WindowAccumulator) Advance(c clock.Clock) bool {
	if c.Iteration == 0 || w.sched.OutsideWindow(c) {
		return false
	}

	if !w.sched.Collecting() {
		// Idle -> Collecting: open a new window.
		for i := range w.result {
			w.result[i] = 0
		}
		w.windowStartTime = w.sched.WindowStart()
		w.previousSampleTime = w.windowStartTime
		w.windowStartIteration = c.Iteration - 1
		w.samples = 0
		w.complete = false
		w.sched.SetCollecting(true)
	}

	if w.sched.EndOfWindow(c) {
		// Final sample, then Collecting -> Idle. The buffer now holds the
		// finalized average until the next window zeroes it.
		w.accumulate(c)
		w.endIteration = c.Iteration
		w.sched.SetCollecting(false)
		w.sched.Advance()
		w.complete = true
		w.warnedPremature = false
		return true
	}

	if (c.Iteration-w.windowStartIteration)%w.sched.Stride() == 0 {
		w.accumulate(c)
	}
	return false
}

// accumulate folds the current operand value into the running mean:
//
//	result = (result*T_before + sample*dt) / T_elapsed
//
// which is exact for uniform and non-uniform sample spacing alike.
func (w *WindowAccumulator) accumulate(c clock.Clock) {
	sample := w.operand()
	dt := c.Time - w.previousSampleTime
	elapsed := c.Time - w.windowStartTime

	if elapsed <= 0 {
		// Zero-width so far: the tick landed exactly on the window start
		// (possible with SpecifiedTimes). The sample carries zero weight in
		// the eventual average, so just seed the buffer with it.
		copy(w.result, sample)
		w.previousSampleTime = c.Time
		w.samples++
		telemetry.DiagnosticSamplesTotal.WithLabelValues(w.name).Inc()
		return
	}

	before := w.previousSampleTime - w.windowStartTime
	for i := range w.result {
		w.result[i] = (w.result[i]*before + sample[i]*dt) / elapsed
	}
	w.previousSampleTime = c.Time
	w.samples++
	telemetry.DiagnosticSamplesTotal.WithLabelValues(w.name).Inc()
}

// Collecting reports whether a window is currently open.
func (w *WindowAccumulator) Collecting() bool { return w.sched.Collecting() }

// Result reads the current buffer. It never blocks a read: a mid-window read
// yields the partial average with Complete false, and reading before any
// window has ever closed yields the construction placeholder (warned once).
func (w *WindowAccumulator) Result() Result {
	if w.sched.Collecting() && !w.complete && w.samples == 0 && !w.warnedPremature {
		w.warnedPremature = true
		w.logger.Warn().
			Str("diagnostic", w.name).
			Msg("result fetched before any sample was averaged; returning placeholder")
		telemetry.DiagnosticWarningsTotal.WithLabelValues(w.name, "premature_read").Inc()
		if w.warnHook != nil {
			w.warnHook("premature_read", "result fetched before any sample was averaged")
		}
	}

	values := make([]float64, len(w.result))
	copy(values, w.result)
	return Result{
		Name:           w.name,
		Values:         values,
		Complete:       w.complete && !w.sched.Collecting(),
		WindowStart:    w.windowStartTime,
		WindowEnd:      w.previousSampleTime,
		StartIteration: w.windowStartIteration,
		EndIteration:   w.endIteration,
		Samples:        w.samples,
	}
}
