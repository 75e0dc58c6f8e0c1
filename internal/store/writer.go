/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/friendsincode/aegir_ocean/internal/clock"
	"github.com/friendsincode/aegir_ocean/internal/config"
	"github.com/friendsincode/aegir_ocean/internal/diagnostics"
	"github.com/friendsincode/aegir_ocean/internal/telemetry"
)

// Writer persists one WindowAverage row per actuation. It implements
// diagnostics.Sink.
type Writer struct {
	db     *gorm.DB
	logger zerolog.Logger
	series map[string]string // diagnostic name -> series id
}

// NewWriter ensures a DiagnosticSeries row exists for every declared
// diagnostic and returns a sink writing to them.
func NewWriter(db *gorm.DB, suite *config.Suite, logger zerolog.Logger) (*Writer, error) {
	w := &Writer{
		db:     db,
		logger: logger,
		series: make(map[string]string, len(suite.Diagnostics)),
	}

	for _, spec := range suite.Diagnostics {
		series := DiagnosticSeries{
			ID:           uuid.NewString(),
			Name:         spec.Name,
			Operand:      spec.Operand,
			ScheduleKind: spec.Schedule.Kind,
			Window:       spec.Schedule.Window,
			Stride:       spec.Schedule.Stride,
		}
		// Keep the existing row (and its history) when the name is known.
		err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"operand", "schedule_kind", "window", "stride", "updated_at"}),
		}).Create(&series).Error
		if err != nil {
			return nil, fmt.Errorf("ensure series %q: %w", spec.Name, err)
		}

		var existing DiagnosticSeries
		if err := db.Where("name = ?", spec.Name).First(&existing).Error; err != nil {
			return nil, fmt.Errorf("load series %q: %w", spec.Name, err)
		}
		w.series[spec.Name] = existing.ID
	}

	return w, nil
}

// SeriesID returns the persistent identity of a diagnostic name.
func (w *Writer) SeriesID(name string) (string, bool) {
	id, ok := w.series[name]
	return id, ok
}

// OnActuation writes the finalized average.
func (w *Writer) OnActuation(ctx context.Context, res diagnostics.Result, _ clock.Clock) error {
	seriesID, ok := w.series[res.Name]
	if !ok {
		telemetry.StoreWritesTotal.WithLabelValues("unknown_series").Inc()
		return fmt.Errorf("no series for diagnostic %q", res.Name)
	}

	encoded, err := json.Marshal(res.Values)
	if err != nil {
		telemetry.StoreWritesTotal.WithLabelValues("encode_error").Inc()
		return fmt.Errorf("encode values for %q: %w", res.Name, err)
	}

	row := WindowAverage{
		ID:             uuid.NewString(),
		SeriesID:       seriesID,
		WindowStart:    res.WindowStart,
		WindowEnd:      res.WindowEnd,
		StartIteration: res.StartIteration,
		EndIteration:   res.EndIteration,
		SampleCount:    res.Samples,
		Values:         string(encoded),
	}
	if len(res.Values) == 1 {
		v := res.Values[0]
		row.Scalar = &v
	}

	if err := w.db.WithContext(ctx).Create(&row).Error; err != nil {
		telemetry.StoreWritesTotal.WithLabelValues("db_error").Inc()
		return fmt.Errorf("persist window average for %q: %w", res.Name, err)
	}
	telemetry.StoreWritesTotal.WithLabelValues("ok").Inc()
	return nil
}

// LatestAverage returns the most recent finalized average for a diagnostic,
// by window end time.
func LatestAverage(ctx context.Context, db *gorm.DB, seriesID string) (*WindowAverage, error) {
	var row WindowAverage
	err := db.WithContext(ctx).
		Where("series_id = ?", seriesID).
		Order("window_end DESC").
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}
