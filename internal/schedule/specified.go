/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package schedule

import (
	"math"

	"github.com/friendsincode/aegir_ocean/internal/clock"
)

// SpecifiedTimes actuates at an explicit, strictly increasing list of
// simulation times, averaging over the trailing window before each. Once the
// cursor runs past the end of the list the schedule is permanently inert.
//
// Boundary comparators: OutsideWindow uses strict <, ShouldActuate uses >=.
// This mirrors the Interval variant with the inclusivity flipped; the tick
// landing exactly on a window-start time opens the window here.
type SpecifiedTimes struct {
	times  []float64
	window float64
	stride int64

	next       int
	collecting bool
}

// NewSpecifiedTimes builds an explicit-times schedule. The list must be
// non-empty and strictly increasing.
func NewSpecifiedTimes(times []float64, window float64, stride int64) (*SpecifiedTimes, error) {
	if len(times) == 0 {
		return nil, &ConfigurationError{Field: "times", Reason: "must not be empty"}
	}
	for i := 1; i < len(times); i++ {
		if times[i] <= times[i-1] {
			return nil, &ConfigurationError{Field: "times", Reason: "must be strictly increasing"}
		}
	}
	if window < 0 {
		return nil, &ConfigurationError{Field: "window", Reason: "must not be negative"}
	}
	if stride < 1 {
		return nil, &ConfigurationError{Field: "stride", Reason: "must be at least 1"}
	}
	owned := make([]float64, len(times))
	copy(owned, times)
	return &SpecifiedTimes{times: owned, window: window, stride: stride}, nil
}

// NextActuation is the time the pending window closes, or NaN once exhausted.
func (s *SpecifiedTimes) NextActuation() float64 {
	if s.Exhausted() {
		return math.NaN()
	}
	return s.times[s.next]
}

func (s *SpecifiedTimes) OutsideWindow(c clock.Clock) bool {
	if s.Exhausted() {
		return true
	}
	return c.Time < s.times[s.next]-s.window
}

func (s *SpecifiedTimes) EndOfWindow(c clock.Clock) bool {
	if s.Exhausted() {
		return true
	}
	return c.Time >= s.times[s.next]
}

func (s *SpecifiedTimes) ShouldActuate(c clock.Clock) bool {
	if s.Exhausted() {
		return false
	}
	return s.collecting || c.Time >= s.times[s.next]-s.window
}

func (s *SpecifiedTimes) WindowStart() float64 {
	if s.Exhausted() {
		return math.NaN()
	}
	return s.times[s.next] - s.window
}

func (s *SpecifiedTimes) Window() float64 { return s.window }

func (s *SpecifiedTimes) Stride() int64 { return s.stride }

func (s *SpecifiedTimes) Collecting() bool { return s.collecting }

func (s *SpecifiedTimes) SetCollecting(on bool) { s.collecting = on }

// Advance moves the cursor to the next listed time. Advancing past the end
// is not an error; the schedule just never fires again.
func (s *SpecifiedTimes) Advance() {
	if !s.Exhausted() {
		s.next++
	}
}

func (s *SpecifiedTimes) Exhausted() bool { return s.next >= len(s.times) }

// Cursor reports how many listed actuations have completed.
func (s *SpecifiedTimes) Cursor() int { return s.next }

func (s *SpecifiedTimes) Clone() Schedule {
	owned := make([]float64, len(s.times))
	copy(owned, s.times)
	return &SpecifiedTimes{times: owned, window: s.window, stride: s.stride}
}
