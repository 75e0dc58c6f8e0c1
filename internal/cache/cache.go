/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package cache keeps the most recent finalized average per diagnostic in
// Redis, so the status API can answer without touching the database.
package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/friendsincode/aegir_ocean/internal/clock"
	"github.com/friendsincode/aegir_ocean/internal/diagnostics"
)

// DefaultLatestTTL bounds staleness when a run dies without cleanup.
const DefaultLatestTTL = 24 * time.Hour

const keyLatest = "aegir:cache:latest:" // + diagnostic name

// Config contains cache configuration.
type Config struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	LatestTTL     time.Duration

	// DisableOnError trips the circuit breaker on the first Redis error.
	DisableOnError bool
}

// Cache provides Redis-backed caching with graceful fallback: when Redis is
// unreachable the cache silently answers "miss" and stores nothing.
type Cache struct {
	client *redis.Client
	logger zerolog.Logger
	ttl    time.Duration

	disableOnError bool
	mu             sync.RWMutex
	disabled       bool
}

// New creates a cache instance. A failed ping downgrades to a disabled cache
// rather than an error; the service runs fine without it.
func New(cfg Config, logger zerolog.Logger) *Cache {
	log := logger.With().Str("component", "cache").Logger()
	ttl := cfg.LatestTTL
	if ttl <= 0 {
		ttl = DefaultLatestTTL
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn().Err(err).Msg("Redis unavailable, running without latest-average cache")
		return &Cache{logger: log, disabled: true, ttl: ttl}
	}

	log.Info().Str("addr", cfg.RedisAddr).Msg("latest-average cache initialized")
	return &Cache{
		client:         client,
		logger:         log,
		ttl:            ttl,
		disableOnError: cfg.DisableOnError,
	}
}

// Close closes the Redis connection.
func (c *Cache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// Available reports whether the cache is operational. A nil cache is a
// valid, permanently-miss instance.
func (c *Cache) Available() bool {
	if c == nil {
		return false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return !c.disabled && c.client != nil
}

func (c *Cache) handleError(err error, operation string) {
	if err == nil || err == redis.Nil {
		return
	}
	c.logger.Debug().Err(err).Str("operation", operation).Msg("cache operation failed")
	if c.disableOnError {
		c.mu.Lock()
		c.disabled = true
		c.mu.Unlock()
		c.logger.Warn().Msg("disabling cache after Redis error")
	}
}

// SetLatest stores the finalized average for a diagnostic.
func (c *Cache) SetLatest(ctx context.Context, res diagnostics.Result) {
	if !c.Available() {
		return
	}
	data, err := json.Marshal(res)
	if err != nil {
		c.logger.Debug().Err(err).Msg("latest average not serializable")
		return
	}
	if err := c.client.Set(ctx, keyLatest+res.Name, data, c.ttl).Err(); err != nil {
		c.handleError(err, "set_latest")
	}
}

// GetLatest fetches the most recent finalized average for a diagnostic.
func (c *Cache) GetLatest(ctx context.Context, name string) (diagnostics.Result, bool) {
	if !c.Available() {
		return diagnostics.Result{}, false
	}
	data, err := c.client.Get(ctx, keyLatest+name).Bytes()
	if err == redis.Nil {
		return diagnostics.Result{}, false
	}
	if err != nil {
		c.handleError(err, "get_latest")
		return diagnostics.Result{}, false
	}
	var res diagnostics.Result
	if err := json.Unmarshal(data, &res); err != nil {
		c.logger.Debug().Err(err).Str("diagnostic", name).Msg("cached average corrupt")
		return diagnostics.Result{}, false
	}
	return res, true
}

// ActuationSink returns a diagnostics sink that refreshes the cache on every
// closed window.
func (c *Cache) ActuationSink() diagnostics.Sink {
	return diagnostics.SinkFunc(func(ctx context.Context, res diagnostics.Result, _ clock.Clock) error {
		c.SetLatest(ctx, res)
		return nil
	})
}
