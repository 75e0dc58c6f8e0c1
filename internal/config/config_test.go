/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.DBBackend != DatabaseSQLite {
		t.Fatalf("default backend = %q, want sqlite", cfg.DBBackend)
	}
	if cfg.BaseTimestep <= 0 {
		t.Fatal("default base timestep must be positive")
	}
}

func TestLoadReadsEnvKeys(t *testing.T) {
	t.Setenv("AEGIR_DB_BACKEND", "postgres")
	t.Setenv("AEGIR_DB_DSN", "host=localhost user=test dbname=test sslmode=disable")
	t.Setenv("AEGIR_STOP_TIME", "3600")
	t.Setenv("AEGIR_NATS_URL", "nats://localhost:4222")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.DBBackend != DatabasePostgres {
		t.Fatalf("backend = %q, want postgres", cfg.DBBackend)
	}
	if cfg.StopTime != 3600 {
		t.Fatalf("stop time = %v, want 3600", cfg.StopTime)
	}
	if cfg.NATSURL == "" {
		t.Fatal("expected NATS URL to be set")
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "unknown backend", key: "AEGIR_DB_BACKEND", value: "oracle"},
		{name: "negative stop time", key: "AEGIR_STOP_TIME", value: "-1"},
		{name: "zero base timestep", key: "AEGIR_BASE_TIMESTEP", value: "0"},
		{name: "sample rate above one", key: "AEGIR_TRACING_SAMPLE_RATE", value: "1.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Fatalf("expected load to fail with %s=%s", tt.key, tt.value)
			}
		})
	}
}

func TestLoadSuite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "suite.yaml")
	data := `diagnostics:
  - name: tracer_mean
    operand: tracer_mean
    schedule:
      kind: interval
      interval: 4
      window: 2
  - name: tracer_profile
    operand: tracer
    schedule:
      kind: specified_times
      times: [5, 10, 20]
      window: 1
      stride: 2
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write suite: %v", err)
	}

	suite, err := LoadSuite(path)
	if err != nil {
		t.Fatalf("load suite: %v", err)
	}
	if len(suite.Diagnostics) != 2 {
		t.Fatalf("diagnostics = %d, want 2", len(suite.Diagnostics))
	}
	if suite.Diagnostics[0].Schedule.Stride != 1 {
		t.Fatalf("stride default = %d, want 1", suite.Diagnostics[0].Schedule.Stride)
	}
	if suite.Diagnostics[1].Schedule.Stride != 2 {
		t.Fatalf("stride = %d, want 2", suite.Diagnostics[1].Schedule.Stride)
	}
}

func TestLoadSuiteRejectsBadDeclarations(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "empty suite", data: "diagnostics: []\n"},
		{name: "missing operand", data: "diagnostics:\n  - name: x\n    schedule: {kind: interval, interval: 1, window: 1}\n"},
		{name: "unknown kind", data: "diagnostics:\n  - name: x\n    operand: tracer\n    schedule: {kind: cron, window: 1}\n"},
		{name: "duplicate name", data: "diagnostics:\n  - name: x\n    operand: tracer\n    schedule: {kind: interval, interval: 1, window: 1}\n  - name: x\n    operand: tracer\n    schedule: {kind: interval, interval: 1, window: 1}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "suite.yaml")
			if err := os.WriteFile(path, []byte(tt.data), 0o644); err != nil {
				t.Fatalf("write suite: %v", err)
			}
			if _, err := LoadSuite(path); err == nil {
				t.Fatal("expected suite load to fail")
			}
		})
	}
}
