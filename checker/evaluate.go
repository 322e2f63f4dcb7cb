// Copyright 2026 The GeoCheck Authors
// SPDX-License-Identifier: Apache-2.0

package checker

import (
	"github.com/jcodagnone/geocheck/geocode"
	"github.com/jcodagnone/geocheck/spatial"
)

// OutcomeKind classifies one record.
type OutcomeKind int

const (
	// OutcomeMatch the stored and geocoded coordinates agree within tolerance.
	OutcomeMatch OutcomeKind = iota
	// OutcomeMismatch the stored coordinates are invalid or disagree with the
	// geocoded ones beyond tolerance.
	OutcomeMismatch
	// OutcomeSkipped the record could not be geocoded.
	OutcomeSkipped
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeMatch:
		return "match"
	case OutcomeMismatch:
		return "mismatch"
	case OutcomeSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Outcome is the classification of one record together with everything the
// report needs about it.
type Outcome struct {
	Kind     OutcomeKind
	Record   *PropertyRecord
	Geocoded geocode.Result

	// Stored is the parsed stored coordinate pair, nil when missing,
	// non-numeric or out of range.
	Stored *spatial.Point

	// DistanceMeters between stored and geocoded points. Meaningful only
	// when both were valid.
	DistanceMeters float64

	// Reasons holds the per-axis validation failures for invalid-coordinate
	// mismatches, or the single skip reason.
	Reasons []string
}

// validateStored parses the record's coordinate cells. It returns a point
// when both axes are usable, otherwise nil plus one reason per failing axis.
func validateStored(record *PropertyRecord) (*spatial.Point, []string) {
	var reasons []string

	lat, latState := record.Latitude.Parse()

	switch {
	case latState == CoordinateMissing:
		reasons = append(reasons, "latitude missing")
	case latState == CoordinateInvalid:
		reasons = append(reasons, "latitude not numeric")
	case lat < -90 || lat > 90:
		reasons = append(reasons, "latitude out of range")
	}

	lng, lngState := record.Longitude.Parse()

	switch {
	case lngState == CoordinateMissing:
		reasons = append(reasons, "longitude missing")
	case lngState == CoordinateInvalid:
		reasons = append(reasons, "longitude not numeric")
	case lng < -180 || lng > 180:
		reasons = append(reasons, "longitude out of range")
	}

	if len(reasons) > 0 {
		return nil, reasons
	}

	return &spatial.Point{Lat: lat, Lng: lng}, nil
}

// Evaluate classifies one record against its geocoding result. Invalid
// stored coordinates are always a mismatch, whatever geocoding said; a
// geocoding failure on a record with valid stored coordinates is a skip.
// The tolerance boundary is inclusive.
func Evaluate(record *PropertyRecord, geocoded geocode.Result, toleranceMeters float64) Outcome {
	stored, reasons := validateStored(record)
	if stored == nil {
		return Outcome{
			Kind:     OutcomeMismatch,
			Record:   record,
			Geocoded: geocoded,
			Reasons:  reasons,
		}
	}

	if !geocoded.OK() {
		reason := string(geocoded.Status)
		if geocoded.Detail != "" {
			reason += ": " + geocoded.Detail
		}

		return Outcome{
			Kind:     OutcomeSkipped,
			Record:   record,
			Geocoded: geocoded,
			Stored:   stored,
			Reasons:  []string{reason},
		}
	}

	distance := stored.DistanceMeters(geocoded.Point)

	kind := OutcomeMatch
	if distance > toleranceMeters {
		kind = OutcomeMismatch
	}

	return Outcome{
		Kind:           kind,
		Record:         record,
		Geocoded:       geocoded,
		Stored:         stored,
		DistanceMeters: distance,
	}
}
