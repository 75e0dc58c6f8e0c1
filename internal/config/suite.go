/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Schedule kinds accepted in a suite file.
const (
	ScheduleInterval       = "interval"
	ScheduleSpecifiedTimes = "specified_times"
)

// ScheduleSpec declares when a diagnostic's averaging windows open and close.
// Exactly one of Interval or Times is used depending on Kind. A spec may be
// shared by several diagnostics; the builder clones it per accumulator so
// their timelines stay independent.
type ScheduleSpec struct {
	Kind     string    `yaml:"kind"`
	Interval float64   `yaml:"interval,omitempty"`
	Times    []float64 `yaml:"times,omitempty"`
	Window   float64   `yaml:"window"`
	Stride   int64     `yaml:"stride,omitempty"`
}

// DiagnosticSpec declares one tracked quantity.
type DiagnosticSpec struct {
	Name     string       `yaml:"name"`
	Operand  string       `yaml:"operand"`
	Schedule ScheduleSpec `yaml:"schedule"`
}

// Suite is the parsed diagnostics suite file.
type Suite struct {
	Diagnostics []DiagnosticSpec `yaml:"diagnostics"`
}

// LoadSuite reads and validates a YAML suite file. Schedule arithmetic
// constraints (window vs interval, stride bounds) are enforced later by the
// schedule constructors; this only checks the declaration shape.
func LoadSuite(path string) (*Suite, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read suite file: %w", err)
	}

	var suite Suite
	if err := yaml.Unmarshal(raw, &suite); err != nil {
		return nil, fmt.Errorf("parse suite file: %w", err)
	}

	if len(suite.Diagnostics) == 0 {
		return nil, fmt.Errorf("suite file %s declares no diagnostics", path)
	}

	seen := make(map[string]struct{}, len(suite.Diagnostics))
	for i := range suite.Diagnostics {
		d := &suite.Diagnostics[i]
		if d.Name == "" {
			return nil, fmt.Errorf("diagnostic %d: name is required", i)
		}
		if _, dup := seen[d.Name]; dup {
			return nil, fmt.Errorf("diagnostic %q declared twice", d.Name)
		}
		seen[d.Name] = struct{}{}
		if d.Operand == "" {
			return nil, fmt.Errorf("diagnostic %q: operand is required", d.Name)
		}
		switch d.Schedule.Kind {
		case ScheduleInterval, ScheduleSpecifiedTimes:
		default:
			return nil, fmt.Errorf("diagnostic %q: unknown schedule kind %q", d.Name, d.Schedule.Kind)
		}
		if d.Schedule.Stride == 0 {
			d.Schedule.Stride = 1
		}
	}

	return &suite, nil
}
