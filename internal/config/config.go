/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package config

import (
	"fmt"
	"os"
	"strconv"
)

// Database backend selection.
type DatabaseBackend string

const (
	DatabasePostgres DatabaseBackend = "postgres"
	DatabaseMySQL    DatabaseBackend = "mysql"
	DatabaseSQLite   DatabaseBackend = "sqlite"
)

// Config covers process level configuration read from environment variables.
// The diagnostic suite itself (which quantities, which schedules) lives in a
// YAML file referenced by SuitePath; see suite.go.
type Config struct {
	Environment string
	HTTPBind    string
	HTTPPort    int
	MetricsBind string

	DBBackend DatabaseBackend
	DBDSN     string

	SuitePath string

	// Simulation loop
	StopTime     float64 // simulation time at which the run ends
	BaseTimestep float64 // initial timestep in model units
	MaxTimestep  float64 // ceiling for the ramped timestep; 0 disables ramping
	ModelCells   int     // tracer column resolution
	RelaxRate    float64 // relaxation rate toward the forcing profile (1/s)

	// Event bus
	NATSURL string // empty keeps events in-process

	// Latest-average cache
	RedisAddr     string // empty disables the cache
	RedisPassword string
	RedisDB       int

	// Tracing configuration
	TracingEnabled    bool
	OTLPEndpoint      string
	TracingSampleRate float64
}

// Load reads environment variables, applies defaults, and validates the result.
func Load() (*Config, error) {
	cfg := &Config{
		Environment: getEnv("AEGIR_ENV", "development"),
		HTTPBind:    getEnv("AEGIR_HTTP_BIND", "0.0.0.0"),
		HTTPPort:    getEnvInt("AEGIR_HTTP_PORT", 8080),
		MetricsBind: getEnv("AEGIR_METRICS_BIND", "127.0.0.1:9000"),

		DBBackend: DatabaseBackend(getEnv("AEGIR_DB_BACKEND", string(DatabaseSQLite))),
		DBDSN:     getEnv("AEGIR_DB_DSN", "aegir.db"),

		SuitePath: getEnv("AEGIR_SUITE_PATH", "suite.yaml"),

		StopTime:     getEnvFloat("AEGIR_STOP_TIME", 86400),
		BaseTimestep: getEnvFloat("AEGIR_BASE_TIMESTEP", 60),
		MaxTimestep:  getEnvFloat("AEGIR_MAX_TIMESTEP", 0),
		ModelCells:   getEnvInt("AEGIR_MODEL_CELLS", 32),
		RelaxRate:    getEnvFloat("AEGIR_RELAX_RATE", 1e-5),

		NATSURL: getEnv("AEGIR_NATS_URL", ""),

		RedisAddr:     getEnv("AEGIR_REDIS_ADDR", ""),
		RedisPassword: getEnv("AEGIR_REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("AEGIR_REDIS_DB", 0),

		TracingEnabled:    getEnvBool("AEGIR_TRACING_ENABLED", false),
		OTLPEndpoint:      getEnv("AEGIR_OTLP_ENDPOINT", "localhost:4317"),
		TracingSampleRate: getEnvFloat("AEGIR_TRACING_SAMPLE_RATE", 1.0),
	}

	if cfg.DBBackend != DatabasePostgres && cfg.DBBackend != DatabaseMySQL && cfg.DBBackend != DatabaseSQLite {
		return nil, fmt.Errorf("unsupported database backend %q", cfg.DBBackend)
	}
	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("AEGIR_DB_DSN must be provided")
	}
	if cfg.StopTime <= 0 {
		return nil, fmt.Errorf("AEGIR_STOP_TIME must be positive")
	}
	if cfg.BaseTimestep <= 0 {
		return nil, fmt.Errorf("AEGIR_BASE_TIMESTEP must be positive")
	}
	if cfg.MaxTimestep < 0 {
		return nil, fmt.Errorf("AEGIR_MAX_TIMESTEP must not be negative")
	}
	if cfg.ModelCells < 1 {
		return nil, fmt.Errorf("AEGIR_MODEL_CELLS must be at least 1")
	}
	if cfg.RelaxRate <= 0 {
		return nil, fmt.Errorf("AEGIR_RELAX_RATE must be positive")
	}
	if cfg.TracingSampleRate < 0 || cfg.TracingSampleRate > 1 {
		return nil, fmt.Errorf("AEGIR_TRACING_SAMPLE_RATE must be within [0, 1]")
	}

	return cfg, nil
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}
	return def
}
