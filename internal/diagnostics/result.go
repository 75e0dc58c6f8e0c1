/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package diagnostics

// Result is a read of an accumulator's buffer plus window bookkeeping.
// Complete is true only between a window closing and the next window opening;
// a Result read mid-window is a partial average, usable but not final.
type Result struct {
	Name           string    `json:"name"`
	Values         []float64 `json:"values"`
	Complete       bool      `json:"complete"`
	WindowStart    float64   `json:"window_start"`
	WindowEnd      float64   `json:"window_end"`
	StartIteration int64     `json:"start_iteration"`
	EndIteration   int64     `json:"end_iteration"`
	Samples        int       `json:"samples"`
}

// Scalar returns the single value of a scalar diagnostic. For field
// diagnostics it returns the first component.
func (r Result) Scalar() float64 {
	if len(r.Values) == 0 {
		return 0
	}
	return r.Values[0]
}
