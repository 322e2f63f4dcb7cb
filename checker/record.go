// Copyright 2026 The GeoCheck Authors
// SPDX-License-Identifier: Apache-2.0

// Package checker implements the property coordinate validation pipeline:
// read records, geocode addresses, compare distances, accumulate a report.
package checker

import (
	"strconv"
	"strings"
)

// RawCoordinate is an unparsed coordinate cell, kept verbatim so it can be
// passed through to the mismatches output untouched.
type RawCoordinate string

// CoordinateState classifies a parsed coordinate cell.
type CoordinateState int

const (
	// CoordinatePresent the cell parsed as a number.
	CoordinatePresent CoordinateState = iota
	// CoordinateMissing the cell was empty or whitespace.
	CoordinateMissing
	// CoordinateInvalid the cell was non-numeric.
	CoordinateInvalid
)

// Parse returns the numeric value of the cell and its state. The value is
// meaningful only when the state is CoordinatePresent.
func (c RawCoordinate) Parse() (float64, CoordinateState) {
	text := strings.TrimSpace(string(c))
	if text == "" {
		return 0, CoordinateMissing
	}

	value, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, CoordinateInvalid
	}

	return value, CoordinatePresent
}

// PropertyRecord is one input row. It is immutable once read; evaluation
// only produces derived results alongside it.
type PropertyRecord struct {
	ID        string
	Address   string
	Latitude  RawCoordinate
	Longitude RawCoordinate
}

// Tag returns the identifier used in per-row diagnostics.
func (r *PropertyRecord) Tag() string {
	id := strings.TrimSpace(r.ID)
	if id == "" {
		id = "?"
	}

	return "id=" + id
}
