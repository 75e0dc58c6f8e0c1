/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package diagnostics

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/friendsincode/aegir_ocean/internal/clock"
	"github.com/friendsincode/aegir_ocean/internal/config"
)

type staticResolver struct{}

func (staticResolver) Operand(name string) (Operand, error) {
	return ScalarOperand(func() float64 { return 1 }), nil
}

func sharedScheduleSuite() *config.Suite {
	sched := config.ScheduleSpec{
		Kind:     config.ScheduleInterval,
		Interval: 4,
		Window:   2,
		Stride:   1,
	}
	return &config.Suite{
		Diagnostics: []config.DiagnosticSpec{
			{Name: "a", Operand: "x", Schedule: sched},
			{Name: "b", Operand: "y", Schedule: sched},
		},
	}
}

func TestBuildSuiteClonesSharedSchedules(t *testing.T) {
	runner, err := BuildSuite(sharedScheduleSuite(), staticResolver{}, zerolog.Nop())
	if err != nil {
		t.Fatalf("build suite: %v", err)
	}
	accs := runner.Accumulators()
	if len(accs) != 2 {
		t.Fatalf("accumulators = %d, want 2", len(accs))
	}
	if accs[0].Schedule() == accs[1].Schedule() {
		t.Fatal("diagnostics sharing a declaration must not share a live schedule")
	}

	// Driving one accumulator's timeline must not disturb the other's.
	c := clock.Clock{Time: 4, Iteration: 4}
	if !accs[0].Advance(c) {
		t.Fatal("first accumulator should close its window at t=4")
	}
	if accs[1].Schedule().Collecting() {
		t.Fatal("second accumulator's schedule was mutated by the first")
	}
	if accs[1].Schedule().OutsideWindow(clock.Clock{Time: 3, Iteration: 3}) {
		t.Fatal("second accumulator's first window must still be pending")
	}
}

func TestBuildSuiteRejectsBadSchedule(t *testing.T) {
	suite := &config.Suite{
		Diagnostics: []config.DiagnosticSpec{
			{
				Name:    "broken",
				Operand: "x",
				Schedule: config.ScheduleSpec{
					Kind:     config.ScheduleInterval,
					Interval: 5,
					Window:   10, // window > interval
					Stride:   1,
				},
			},
		},
	}
	if _, err := BuildSuite(suite, staticResolver{}, zerolog.Nop()); err == nil {
		t.Fatal("window exceeding interval must fail suite construction")
	}
}
