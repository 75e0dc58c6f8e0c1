/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/friendsincode/aegir_ocean/internal/cache"
	"github.com/friendsincode/aegir_ocean/internal/config"
	"github.com/friendsincode/aegir_ocean/internal/diagnostics"
	"github.com/friendsincode/aegir_ocean/internal/eventbus"
	"github.com/friendsincode/aegir_ocean/internal/events"
	"github.com/friendsincode/aegir_ocean/internal/logging"
	"github.com/friendsincode/aegir_ocean/internal/server"
	"github.com/friendsincode/aegir_ocean/internal/sim"
	"github.com/friendsincode/aegir_ocean/internal/store"
	"github.com/friendsincode/aegir_ocean/internal/telemetry"
	"github.com/friendsincode/aegir_ocean/internal/version"
)

var (
	logger zerolog.Logger
	cfg    *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "aegirocean",
	Short: "Aegir Ocean - windowed diagnostics for ocean simulations",
	Long:  "Aegir Ocean runs a forward ocean model and computes time-windowed averages of diagnostic quantities on configurable schedules.",
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the simulation with the configured diagnostic suite",
	Long:  "Step the forward model to the configured stop time, accumulating and persisting windowed diagnostic averages, with a status API alongside.",
	RunE:  runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig() error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger = logging.Setup(cfg.Environment)
	return nil
}

func runRun(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}

	logger.Info().Str("version", version.Version).Msg("Aegir Ocean starting")

	tracerProvider, err := telemetry.InitTracer(context.Background(), telemetry.TracerConfig{
		ServiceName:    "aegir-ocean",
		ServiceVersion: version.Version,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		Enabled:        cfg.TracingEnabled,
		SampleRate:     cfg.TracingSampleRate,
	}, logger)
	if err != nil {
		return fmt.Errorf("initialize tracer: %w", err)
	}
	defer func() {
		if err := tracerProvider.Shutdown(context.Background()); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown tracer provider")
		}
	}()

	suite, err := config.LoadSuite(cfg.SuitePath)
	if err != nil {
		return fmt.Errorf("load diagnostic suite: %w", err)
	}

	db, err := store.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer func() {
		if err := store.Close(db); err != nil {
			logger.Error().Err(err).Msg("database close failed")
		}
	}()

	model, err := sim.NewModel(cfg.ModelCells, cfg.RelaxRate)
	if err != nil {
		return fmt.Errorf("build model: %w", err)
	}

	runner, err := diagnostics.BuildSuite(suite, model, logger)
	if err != nil {
		return fmt.Errorf("build diagnostic suite: %w", err)
	}

	writer, err := store.NewWriter(db, suite, logger)
	if err != nil {
		return fmt.Errorf("prepare store writer: %w", err)
	}
	runner.AddSink(writer)

	bus, err := eventbus.NewNATSBus(cfg.NATSURL, logger)
	if err != nil {
		return fmt.Errorf("connect event bus: %w", err)
	}
	defer func() {
		if err := bus.Close(); err != nil {
			logger.Error().Err(err).Msg("event bus close failed")
		}
	}()
	runner.AddSink(bus.ActuationSink())
	runner.SetPublisher(bus)

	var latest *cache.Cache
	if cfg.RedisAddr != "" {
		latest = cache.New(cache.Config{
			RedisAddr:      cfg.RedisAddr,
			RedisPassword:  cfg.RedisPassword,
			RedisDB:        cfg.RedisDB,
			DisableOnError: true,
		}, logger)
		defer func() {
			if err := latest.Close(); err != nil {
				logger.Error().Err(err).Msg("cache close failed")
			}
		}()
		runner.AddSink(latest.ActuationSink())
	}

	loop := sim.NewLoop(model, runner, cfg.BaseTimestep, cfg.MaxTimestep, cfg.StopTime, logger)

	srv := server.New(cfg, db, latest, writer, suite, loop, logger)
	httpServer := srv.HTTPServer()
	go func() {
		logger.Info().Str("addr", httpServer.Addr).Msg("status API listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("status API server error")
		}
	}()

	metricsServer := &http.Server{
		Addr:              cfg.MetricsBind,
		Handler:           telemetry.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info().Str("addr", cfg.MetricsBind).Msg("metrics listening")
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics server error")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bus.Publish(events.EventRunStarted, events.Payload{
		"stop_time": cfg.StopTime,
		"base_dt":   cfg.BaseTimestep,
		"version":   version.Version,
	})

	runErr := loop.Run(ctx)
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		logger.Error().Err(runErr).Msg("simulation run failed")
	}

	c := loop.Clock()
	bus.Publish(events.EventRunFinished, events.Payload{
		"time":      c.Time,
		"iteration": c.Iteration,
		"cancelled": errors.Is(runErr, context.Canceled),
	})

	if runErr == nil {
		// Run completed on its own; keep serving results until a signal.
		logger.Info().Msg("run complete, status API remains available until shutdown signal")
		<-ctx.Done()
	}

	logger.Info().Msg("shutting down gracefully...")
	timeoutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(timeoutCtx); err != nil {
		logger.Error().Err(err).Msg("status API shutdown failed")
	}
	if err := metricsServer.Shutdown(timeoutCtx); err != nil {
		logger.Error().Err(err).Msg("metrics shutdown failed")
	}

	logger.Info().Msg("Aegir Ocean stopped")
	return nil
}
