/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package diagnostics

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/friendsincode/aegir_ocean/internal/clock"
	"github.com/friendsincode/aegir_ocean/internal/events"
)

func TestRunnerFansOutActuations(t *testing.T) {
	var now float64
	runner := NewRunner(zerolog.Nop())

	runner.Register(NewWindowAccumulator("fast",
		mustInterval(t, 2, 1, 1),
		ScalarOperand(func() float64 { return now }),
		zerolog.Nop()))
	runner.Register(NewWindowAccumulator("slow",
		mustInterval(t, 4, 2, 1),
		ScalarOperand(func() float64 { return now }),
		zerolog.Nop()))

	got := map[string]int{}
	runner.AddSink(SinkFunc(func(_ context.Context, res Result, _ clock.Clock) error {
		if !res.Complete {
			t.Errorf("sink received incomplete result for %s", res.Name)
		}
		got[res.Name]++
		return nil
	}))
	// A failing sink must not block the one registered after it.
	reached := 0
	runner.AddSink(SinkFunc(func(_ context.Context, _ Result, _ clock.Clock) error {
		return errors.New("sink down")
	}))
	runner.AddSink(SinkFunc(func(_ context.Context, _ Result, _ clock.Clock) error {
		reached++
		return nil
	}))

	ctx := context.Background()
	for i := int64(0); i <= 8; i++ {
		now = float64(i)
		runner.Step(ctx, clock.Clock{Time: now, Iteration: i})
	}

	// "fast" closes windows at t=2,4,6,8; "slow" at t=4,8.
	if got["fast"] != 4 {
		t.Errorf("fast actuations = %d, want 4", got["fast"])
	}
	if got["slow"] != 2 {
		t.Errorf("slow actuations = %d, want 2", got["slow"])
	}
	if reached != 6 {
		t.Errorf("sink after failing sink ran %d times, want 6", reached)
	}
}

func TestRunnerPublishesWindowOpenedEvents(t *testing.T) {
	var now float64
	bus := events.NewBus()
	opened := bus.Subscribe(events.EventWindowOpened)
	warnings := bus.Subscribe(events.EventWarning)

	runner := NewRunner(zerolog.Nop())
	// Registered before the bus is attached; the stride advisory must be
	// replayed when the publisher arrives.
	runner.Register(NewWindowAccumulator("strided",
		mustInterval(t, 4, 2, 3),
		ScalarOperand(func() float64 { return now }),
		zerolog.Nop()))
	runner.SetPublisher(bus)

	if len(warnings) != 1 {
		t.Fatalf("warnings after SetPublisher = %d, want 1", len(warnings))
	}
	w := <-warnings
	if w["diagnostic"] != "strided" || w["kind"] != "degenerate_window" {
		t.Fatalf("unexpected warning payload %v", w)
	}

	runner.Register(NewWindowAccumulator("unit",
		mustInterval(t, 2, 1, 1),
		ScalarOperand(func() float64 { return now }),
		zerolog.Nop()))

	ctx := context.Background()
	for i := int64(0); i <= 4; i++ {
		now = float64(i)
		runner.Step(ctx, clock.Clock{Time: now, Iteration: i})
	}

	// With unit ticks "unit" opens and closes its window on the same tick
	// (t=2 and t=4); "strided" opens once at t=3.
	got := map[string]int{}
	for len(opened) > 0 {
		p := <-opened
		got[p["diagnostic"].(string)]++
	}
	if got["unit"] != 2 || got["strided"] != 1 {
		t.Fatalf("window_opened counts = %v, want unit=2 strided=1", got)
	}
}

func TestRunnerPublishesPrematureReadWarning(t *testing.T) {
	var now float64
	bus := events.NewBus()
	warnings := bus.Subscribe(events.EventWarning)

	runner := NewRunner(zerolog.Nop())
	runner.SetPublisher(bus)
	acc := NewWindowAccumulator("strided",
		mustInterval(t, 4, 2, 3),
		ScalarOperand(func() float64 { return now }),
		zerolog.Nop())
	runner.Register(acc)
	<-warnings // stride advisory from registration

	ctx := context.Background()
	for i := int64(0); i <= 3; i++ {
		now = float64(i)
		runner.Step(ctx, clock.Clock{Time: now, Iteration: i})
	}
	// Window [2,4] is open but stride 3 has gated every sample so far.
	if !acc.Collecting() {
		t.Fatal("accumulator should be collecting at t=3")
	}

	_ = acc.Result()
	if len(warnings) != 1 {
		t.Fatalf("warnings after premature read = %d, want 1", len(warnings))
	}
	w := <-warnings
	if w["diagnostic"] != "strided" || w["kind"] != "premature_read" {
		t.Fatalf("unexpected warning payload %v", w)
	}

	// The warning is one-shot per window.
	_ = acc.Result()
	if len(warnings) != 0 {
		t.Fatal("premature read must warn at most once per window")
	}
}

func TestRunnerLookup(t *testing.T) {
	runner := NewRunner(zerolog.Nop())
	acc := NewWindowAccumulator("tracer_mean",
		mustInterval(t, 2, 1, 1),
		ScalarOperand(func() float64 { return 0 }),
		zerolog.Nop())
	runner.Register(acc)

	if runner.Lookup("tracer_mean") != acc {
		t.Fatal("Lookup must return the registered accumulator")
	}
	if runner.Lookup("missing") != nil {
		t.Fatal("Lookup of unknown name must return nil")
	}
}
