/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package schedule

import "github.com/friendsincode/aegir_ocean/internal/clock"

// Interval actuates every `interval` units of simulation time, averaging
// over the trailing `window` before each actuation. The actuation instant is
// the window end, not the window start.
//
// Boundary comparators: OutsideWindow uses <=, ShouldActuate uses strict >.
// The tick landing exactly on the window-start time is classified as outside,
// so the first sample of a window always carries positive elapsed time.
type Interval struct {
	interval float64
	window   float64
	stride   int64

	firstActuationTime float64
	actuationCount     int64
	collecting         bool
}

// NewInterval builds a periodic schedule. The window must fit inside the
// interval; a zero window degenerates to point sampling at each actuation.
func NewInterval(interval, window float64, stride int64) (*Interval, error) {
	if interval <= 0 {
		return nil, &ConfigurationError{Field: "interval", Reason: "must be positive"}
	}
	if window <= 0 {
		return nil, &ConfigurationError{Field: "window", Reason: "must be positive"}
	}
	if window > interval {
		return nil, &ConfigurationError{Field: "window", Reason: "must not exceed interval"}
	}
	if stride < 1 {
		return nil, &ConfigurationError{Field: "stride", Reason: "must be at least 1"}
	}
	return &Interval{interval: interval, window: window, stride: stride}, nil
}

// NextActuation is the time the currently pending window closes.
func (s *Interval) NextActuation() float64 {
	return s.firstActuationTime + float64(s.actuationCount+1)*s.interval
}

func (s *Interval) OutsideWindow(c clock.Clock) bool {
	return c.Time <= s.NextActuation()-s.window
}

func (s *Interval) EndOfWindow(c clock.Clock) bool {
	return c.Time >= s.NextActuation()
}

func (s *Interval) ShouldActuate(c clock.Clock) bool {
	return s.collecting || c.Time > s.NextActuation()-s.window
}

func (s *Interval) WindowStart() float64 { return s.NextActuation() - s.window }

func (s *Interval) Window() float64 { return s.window }

func (s *Interval) Stride() int64 { return s.stride }

func (s *Interval) Collecting() bool { return s.collecting }

func (s *Interval) SetCollecting(on bool) { s.collecting = on }

func (s *Interval) Advance() { s.actuationCount++ }

// Exhausted is always false: the arithmetic progression never runs out.
func (s *Interval) Exhausted() bool { return false }

// ActuationCount reports completed windows since the start of the timeline.
func (s *Interval) ActuationCount() int64 { return s.actuationCount }

func (s *Interval) Clone() Schedule {
	return &Interval{interval: s.interval, window: s.window, stride: s.stride}
}
