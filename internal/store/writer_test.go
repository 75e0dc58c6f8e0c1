/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package store

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/friendsincode/aegir_ocean/internal/clock"
	"github.com/friendsincode/aegir_ocean/internal/config"
	"github.com/friendsincode/aegir_ocean/internal/diagnostics"
)

func testSuite() *config.Suite {
	return &config.Suite{
		Diagnostics: []config.DiagnosticSpec{
			{
				Name:    "tracer_mean",
				Operand: "tracer_mean",
				Schedule: config.ScheduleSpec{
					Kind:     config.ScheduleInterval,
					Interval: 4,
					Window:   2,
					Stride:   1,
				},
			},
		},
	}
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&DiagnosticSeries{}, &WindowAverage{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func TestWriterPersistsActuations(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	w, err := NewWriter(db, testSuite(), zerolog.Nop())
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}

	seriesID, ok := w.SeriesID("tracer_mean")
	if !ok {
		t.Fatal("series was not registered")
	}

	res := diagnostics.Result{
		Name:           "tracer_mean",
		Values:         []float64{3.5},
		Complete:       true,
		WindowStart:    2,
		WindowEnd:      4,
		StartIteration: 2,
		EndIteration:   4,
		Samples:        2,
	}
	ctx := context.Background()
	if err := w.OnActuation(ctx, res, clock.Clock{Time: 4, Iteration: 4}); err != nil {
		t.Fatalf("on actuation: %v", err)
	}

	row, err := LatestAverage(ctx, db, seriesID)
	if err != nil {
		t.Fatalf("latest average: %v", err)
	}
	if row.Scalar == nil || *row.Scalar != 3.5 {
		t.Fatalf("scalar = %v, want 3.5", row.Scalar)
	}
	if row.WindowStart != 2 || row.WindowEnd != 4 {
		t.Fatalf("window span [%v, %v], want [2, 4]", row.WindowStart, row.WindowEnd)
	}

	var decoded []float64
	if err := json.Unmarshal([]byte(row.Values), &decoded); err != nil {
		t.Fatalf("decode values: %v", err)
	}
	if len(decoded) != 1 || decoded[0] != 3.5 {
		t.Fatalf("values = %v, want [3.5]", decoded)
	}
}

func TestWriterLatestPicksNewestWindow(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	w, err := NewWriter(db, testSuite(), zerolog.Nop())
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}
	seriesID, _ := w.SeriesID("tracer_mean")

	ctx := context.Background()
	for _, end := range []float64{4, 8, 12} {
		res := diagnostics.Result{
			Name:        "tracer_mean",
			Values:      []float64{end},
			Complete:    true,
			WindowStart: end - 2,
			WindowEnd:   end,
		}
		if err := w.OnActuation(ctx, res, clock.Clock{Time: end}); err != nil {
			t.Fatalf("on actuation at %v: %v", end, err)
		}
	}

	row, err := LatestAverage(ctx, db, seriesID)
	if err != nil {
		t.Fatalf("latest average: %v", err)
	}
	if row.WindowEnd != 12 {
		t.Fatalf("latest window end = %v, want 12", row.WindowEnd)
	}
}

func TestWriterRejectsUnknownDiagnostic(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	w, err := NewWriter(db, testSuite(), zerolog.Nop())
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}

	res := diagnostics.Result{Name: "unheard_of", Values: []float64{1}}
	if err := w.OnActuation(context.Background(), res, clock.Clock{}); err == nil {
		t.Fatal("unknown diagnostic must error")
	}
}

func TestWriterIsIdempotentAcrossRestarts(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	w1, err := NewWriter(db, testSuite(), zerolog.Nop())
	if err != nil {
		t.Fatalf("first writer: %v", err)
	}
	id1, _ := w1.SeriesID("tracer_mean")

	w2, err := NewWriter(db, testSuite(), zerolog.Nop())
	if err != nil {
		t.Fatalf("second writer: %v", err)
	}
	id2, _ := w2.SeriesID("tracer_mean")

	if id1 != id2 {
		t.Fatalf("series id changed across restarts: %s vs %s", id1, id2)
	}

	var count int64
	if err := db.Model(&DiagnosticSeries{}).Count(&count).Error; err != nil {
		t.Fatalf("count series: %v", err)
	}
	if count != 1 {
		t.Fatalf("series rows = %d, want 1", count)
	}
}
