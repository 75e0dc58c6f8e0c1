/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package server bundles the status API into an HTTP server.
package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"gorm.io/gorm"

	"github.com/friendsincode/aegir_ocean/internal/api"
	"github.com/friendsincode/aegir_ocean/internal/cache"
	"github.com/friendsincode/aegir_ocean/internal/config"
	"github.com/friendsincode/aegir_ocean/internal/store"
	"github.com/friendsincode/aegir_ocean/internal/telemetry"
)

// Server hosts the status API.
type Server struct {
	cfg        *config.Config
	logger     zerolog.Logger
	router     chi.Router
	httpServer *http.Server
}

// New wires the status API into a chi router.
func New(cfg *config.Config, db *gorm.DB, c *cache.Cache, writer *store.Writer, suite *config.Suite, clocks api.ClockSource, logger zerolog.Logger) *Server {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(telemetry.MetricsMiddleware)

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	statusAPI := api.New(db, c, writer, suite, clocks, logger)
	statusAPI.Routes(router)

	addr := fmt.Sprintf("%s:%d", cfg.HTTPBind, cfg.HTTPPort)
	return &Server{
		cfg:    cfg,
		logger: logger,
		router: router,
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           otelhttp.NewHandler(router, "status-api"),
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// HTTPServer exposes the underlying server for lifecycle management.
func (s *Server) HTTPServer() *http.Server {
	return s.httpServer
}
