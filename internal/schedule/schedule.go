/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package schedule decides when a diagnostic contributes to a running
// time-average and when the averaging window closes. Two variants exist:
// Interval (periodic actuations) and SpecifiedTimes (explicit sorted list).
// A schedule is owned by exactly one accumulator; templates shared across
// diagnostics must be cloned first (Clone starts a fresh timeline).
package schedule

import (
	"fmt"

	"github.com/friendsincode/aegir_ocean/internal/clock"
)

// Schedule is the narrow surface the accumulator dispatches on. The two
// implementations deliberately disagree on boundary comparators (see the
// variant docs); do not unify them, the asymmetry prevents double-fires at
// exact window boundaries.
type Schedule interface {
	// OutsideWindow reports that the clock has not yet entered the pending
	// averaging window.
	OutsideWindow(c clock.Clock) bool

	// EndOfWindow reports that the pending window should close at this tick.
	EndOfWindow(c clock.Clock) bool

	// ShouldActuate reports whether this tick is relevant to the schedule at
	// all: either a window is already open or one is about to open.
	ShouldActuate(c clock.Clock) bool

	// WindowStart returns the simulation time at which the pending window
	// begins (next actuation minus window length). Undefined once Exhausted.
	WindowStart() float64

	// Window returns the averaging window length.
	Window() float64

	// Stride returns the iteration spacing between samples inside a window.
	Stride() int64

	// Collecting reports whether a window is currently open.
	Collecting() bool

	// SetCollecting marks a window open or closed.
	SetCollecting(on bool)

	// Advance moves to the next window. Called exactly once per closed
	// window, at the tick EndOfWindow first reports true.
	Advance()

	// Exhausted reports that the schedule will never fire again. Interval
	// schedules never exhaust; SpecifiedTimes schedules exhaust when the
	// cursor runs past the end of the list.
	Exhausted() bool

	// Clone returns an independent copy with configuration preserved and
	// the timeline reset: not collecting, zero actuations, cursor rewound.
	Clone() Schedule
}

// ConfigurationError reports a schedule rejected at construction. It is
// fatal: no accumulator is built on top of a rejected schedule.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("schedule configuration: %s %s", e.Field, e.Reason)
}
