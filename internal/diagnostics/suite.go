/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package diagnostics

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/friendsincode/aegir_ocean/internal/config"
	"github.com/friendsincode/aegir_ocean/internal/schedule"
)

// OperandResolver maps a suite operand name to a live fetch. The sim model
// implements this.
type OperandResolver interface {
	Operand(name string) (Operand, error)
}

// BuildSuite turns a parsed suite file into a runner with one accumulator
// per declared diagnostic. Identical schedule declarations share one
// template, cloned per accumulator so timelines stay independent.
func BuildSuite(suite *config.Suite, resolver OperandResolver, logger zerolog.Logger) (*Runner, error) {
	runner := NewRunner(logger)
	templates := make(map[string]schedule.Schedule)

	for _, spec := range suite.Diagnostics {
		op, err := resolver.Operand(spec.Operand)
		if err != nil {
			return nil, fmt.Errorf("diagnostic %q: %w", spec.Name, err)
		}

		key := scheduleKey(spec.Schedule)
		template, ok := templates[key]
		if !ok {
			template, err = buildSchedule(spec.Schedule)
			if err != nil {
				return nil, fmt.Errorf("diagnostic %q: %w", spec.Name, err)
			}
			templates[key] = template
		}

		runner.Register(NewWindowAccumulator(spec.Name, template.Clone(), op, logger))
		logger.Info().
			Str("diagnostic", spec.Name).
			Str("operand", spec.Operand).
			Str("schedule", spec.Schedule.Kind).
			Float64("window", spec.Schedule.Window).
			Msg("diagnostic registered")
	}

	return runner, nil
}

func buildSchedule(spec config.ScheduleSpec) (schedule.Schedule, error) {
	switch spec.Kind {
	case config.ScheduleInterval:
		return schedule.NewInterval(spec.Interval, spec.Window, spec.Stride)
	case config.ScheduleSpecifiedTimes:
		return schedule.NewSpecifiedTimes(spec.Times, spec.Window, spec.Stride)
	default:
		return nil, fmt.Errorf("unknown schedule kind %q", spec.Kind)
	}
}

func scheduleKey(spec config.ScheduleSpec) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s|%g|%g|%d", spec.Kind, spec.Interval, spec.Window, spec.Stride)
	for _, t := range spec.Times {
		fmt.Fprintf(&b, "|%g", t)
	}
	return b.String()
}
