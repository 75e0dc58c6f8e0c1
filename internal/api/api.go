/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package api exposes the read-only status surface of a running simulation.
// It never reads live accumulator state: the sim loop owns that exclusively,
// so the API serves from the suite declaration, the cache, and the store.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/friendsincode/aegir_ocean/internal/cache"
	"github.com/friendsincode/aegir_ocean/internal/clock"
	"github.com/friendsincode/aegir_ocean/internal/config"
	"github.com/friendsincode/aegir_ocean/internal/store"
	"github.com/friendsincode/aegir_ocean/internal/version"
)

// ClockSource yields the current simulation clock snapshot.
type ClockSource interface {
	Clock() clock.Clock
}

// API exposes HTTP handlers.
type API struct {
	db     *gorm.DB
	cache  *cache.Cache
	writer *store.Writer
	suite  *config.Suite
	clocks ClockSource
	logger zerolog.Logger
}

// New constructs the status API.
func New(db *gorm.DB, c *cache.Cache, writer *store.Writer, suite *config.Suite, clocks ClockSource, logger zerolog.Logger) *API {
	return &API{
		db:     db,
		cache:  c,
		writer: writer,
		suite:  suite,
		clocks: clocks,
		logger: logger,
	}
}

// Routes mounts the API under /api/v1.
func (a *API) Routes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/run", a.handleRun)
		r.Get("/diagnostics", a.handleListDiagnostics)
		r.Get("/diagnostics/{name}/latest", a.handleLatest)
	})
}

func (a *API) handleRun(w http.ResponseWriter, r *http.Request) {
	c := a.clocks.Clock()
	writeJSON(w, http.StatusOK, map[string]any{
		"time":      c.Time,
		"iteration": c.Iteration,
		"version":   version.Version,
	})
}

func (a *API) handleListDiagnostics(w http.ResponseWriter, r *http.Request) {
	type entry struct {
		Name         string  `json:"name"`
		Operand      string  `json:"operand"`
		ScheduleKind string  `json:"schedule_kind"`
		Window       float64 `json:"window"`
		Stride       int64   `json:"stride"`
	}
	out := make([]entry, 0, len(a.suite.Diagnostics))
	for _, d := range a.suite.Diagnostics {
		out = append(out, entry{
			Name:         d.Name,
			Operand:      d.Operand,
			ScheduleKind: d.Schedule.Kind,
			Window:       d.Schedule.Window,
			Stride:       d.Schedule.Stride,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"diagnostics": out})
}

func (a *API) handleLatest(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	if res, ok := a.cache.GetLatest(r.Context(), name); ok {
		writeJSON(w, http.StatusOK, res)
		return
	}

	seriesID, ok := a.writer.SeriesID(name)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown diagnostic")
		return
	}
	row, err := store.LatestAverage(r.Context(), a.db, seriesID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(w, http.StatusNotFound, "no finalized average yet")
			return
		}
		a.logger.Error().Err(err).Str("diagnostic", name).Msg("latest average lookup failed")
		writeError(w, http.StatusInternalServerError, "lookup failed")
		return
	}
	writeJSON(w, http.StatusOK, row)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
