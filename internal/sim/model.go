/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package sim holds the forward model and the step loop that drives the
// diagnostics runner. The model is deliberately small: a single tracer
// column relaxing toward a seasonally forced target profile, enough to give
// the diagnostics real, smoothly varying operands.
package sim

import (
	"fmt"
	"math"

	"github.com/friendsincode/aegir_ocean/internal/diagnostics"
)

// Model is a 1-D tracer column of n cells. Each step the tracer relaxes
// toward the forcing profile at rate lambda (1/time units).
type Model struct {
	tracer []float64
	target []float64
	lambda float64
	time   float64
}

// NewModel builds a column of n cells with an exponential initial profile.
func NewModel(n int, lambda float64) (*Model, error) {
	if n < 1 {
		return nil, fmt.Errorf("model needs at least one cell, got %d", n)
	}
	if lambda <= 0 {
		return nil, fmt.Errorf("relaxation rate must be positive, got %v", lambda)
	}

	m := &Model{
		tracer: make([]float64, n),
		target: make([]float64, n),
		lambda: lambda,
	}
	for i := range m.tracer {
		depth := float64(i) / float64(n)
		m.tracer[i] = 20 * math.Exp(-3*depth)
	}
	m.updateTarget()
	return m, nil
}

// updateTarget refreshes the forcing profile: an annual-cycle surface signal
// decaying with depth.
func (m *Model) updateTarget() {
	const year = 365 * 86400.0
	surface := 18 + 4*math.Sin(2*math.Pi*m.time/year)
	n := len(m.target)
	for i := range m.target {
		depth := float64(i) / float64(n)
		m.target[i] = surface * math.Exp(-3*depth)
	}
}

// Step advances the tracer by dt with forward Euler relaxation.
func (m *Model) Step(dt float64) {
	m.time += dt
	m.updateTarget()
	for i := range m.tracer {
		m.tracer[i] += -m.lambda * (m.tracer[i] - m.target[i]) * dt
	}
}

// Operand resolves a named diagnostic quantity. Known names:
//
//	tracer          full column profile
//	tracer_mean     column mean
//	tracer_surface  surface cell
//	forcing_misfit  rms deviation from the forcing profile
func (m *Model) Operand(name string) (diagnostics.Operand, error) {
	switch name {
	case "tracer":
		return func() []float64 { return m.tracer }, nil
	case "tracer_mean":
		return diagnostics.ScalarOperand(m.meanTracer), nil
	case "tracer_surface":
		return diagnostics.ScalarOperand(func() float64 { return m.tracer[0] }), nil
	case "forcing_misfit":
		return diagnostics.ScalarOperand(m.forcingMisfit), nil
	default:
		return nil, fmt.Errorf("unknown operand %q", name)
	}
}

func (m *Model) meanTracer() float64 {
	var sum float64
	for _, v := range m.tracer {
		sum += v
	}
	return sum / float64(len(m.tracer))
}

func (m *Model) forcingMisfit() float64 {
	var sum float64
	for i, v := range m.tracer {
		d := v - m.target[i]
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(m.tracer)))
}

// Cells returns the column size.
func (m *Model) Cells() int { return len(m.tracer) }
