/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package clock holds the simulation clock snapshot shared by the loop and
// the diagnostics machinery.
package clock

// Clock is a snapshot of simulation state taken once per step. Time is
// simulation time in model units (seconds unless the model says otherwise),
// Iteration counts completed steps. Both are non-decreasing; a fixed
// iteration delta does not imply a fixed time delta because the loop may run
// with a variable timestep.
type Clock struct {
	Time      float64
	Iteration int64
}

// Advance returns the clock moved forward by dt with the iteration counter
// bumped. The zero Clock is the state before the first step.
func (c Clock) Advance(dt float64) Clock {
	return Clock{Time: c.Time + dt, Iteration: c.Iteration + 1}
}
