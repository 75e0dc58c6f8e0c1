/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package store

import "time"

// DiagnosticSeries is one configured diagnostic quantity: a stable identity
// for its window averages across runs.
type DiagnosticSeries struct {
	ID           string `gorm:"type:uuid;primaryKey"`
	Name         string `gorm:"uniqueIndex"`
	Operand      string
	ScheduleKind string  `gorm:"type:varchar(32)"`
	Window       float64 // averaging window length in model time units
	Stride       int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// WindowAverage is one finalized average, written when a window closes.
// Values carries the JSON-encoded buffer; Scalar duplicates single-component
// results for cheap querying.
type WindowAverage struct {
	ID             string `gorm:"type:uuid;primaryKey"`
	SeriesID       string `gorm:"type:uuid;index"`
	WindowStart    float64
	WindowEnd      float64 `gorm:"index"`
	StartIteration int64
	EndIteration   int64
	SampleCount    int
	Scalar         *float64
	Values         string `gorm:"type:text"`
	CreatedAt      time.Time
}
