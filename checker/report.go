// Copyright 2026 The GeoCheck Authors
// SPDX-License-Identifier: Apache-2.0

package checker

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/jcodagnone/geocheck/geocode"
	"github.com/jcodagnone/geocheck/utils/textutils"
)

// mismatchHeader is the column layout of the mismatches output: the input
// columns in their original order plus the geocoded pair.
var mismatchHeader = []string{
	"id", "address", "latitude", "longitude",
	"google_latitude", "google_longitude",
}

// Summary holds the run-wide counters.
type Summary struct {
	Input           string  `json:"input"`
	ToleranceMeters float64 `json:"tolerance_meters"`

	TotalRows  int `json:"total_rows"`
	Matched    int `json:"matched"`
	Mismatched int `json:"mismatched"`
	Skipped    int `json:"skipped"`

	// Breakdown of the headline counters.
	InvalidCoordinateMismatches int                    `json:"invalid_coordinate_mismatches"`
	DistanceMismatches          int                    `json:"distance_mismatches"`
	SkippedByReason             map[geocode.Status]int `json:"skipped_by_reason"`
}

// Reporter accumulates per-record outcomes, in input order, and produces
// the run summary and the mismatches table. It is the only owner of the
// run-wide counters.
type Reporter struct {
	summary  Summary
	outcomes []Outcome
}

// NewReporter creates an empty accumulator for one run.
func NewReporter(input string, toleranceMeters float64) *Reporter {
	return &Reporter{
		summary: Summary{
			Input:           input,
			ToleranceMeters: toleranceMeters,
			SkippedByReason: make(map[geocode.Status]int),
		},
	}
}

// Add records one finalized outcome.
func (r *Reporter) Add(outcome Outcome) {
	r.summary.TotalRows++
	r.outcomes = append(r.outcomes, outcome)

	switch outcome.Kind {
	case OutcomeMatch:
		r.summary.Matched++
	case OutcomeMismatch:
		r.summary.Mismatched++

		if outcome.Stored == nil {
			r.summary.InvalidCoordinateMismatches++
		} else {
			r.summary.DistanceMismatches++
		}
	case OutcomeSkipped:
		r.summary.Skipped++
		r.summary.SkippedByReason[outcome.Geocoded.Status]++
	}
}

// Summary returns the counters accumulated so far.
func (r *Reporter) Summary() Summary {
	return r.summary
}

// Outcomes returns every recorded outcome, in input order.
func (r *Reporter) Outcomes() []Outcome {
	return r.outcomes
}

// Mismatches returns the mismatch outcomes, in input order.
func (r *Reporter) Mismatches() []Outcome {
	mismatches := make([]Outcome, 0, r.summary.Mismatched)

	for _, outcome := range r.outcomes {
		if outcome.Kind == OutcomeMismatch {
			mismatches = append(mismatches, outcome)
		}
	}

	return mismatches
}

func formatCoordinate(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// WriteMismatchesCSV writes the mismatches table. A header-only file is
// valid when the run produced no mismatches. The google_* cells are empty
// when the address did not resolve.
func (r *Reporter) WriteMismatchesCSV(w io.Writer) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(mismatchHeader); err != nil {
		return fmt.Errorf("writing mismatches header: %w", err)
	}

	for _, outcome := range r.Mismatches() {
		record := outcome.Record

		var googleLat, googleLng string
		if outcome.Geocoded.OK() {
			googleLat = formatCoordinate(outcome.Geocoded.Point.Lat)
			googleLng = formatCoordinate(outcome.Geocoded.Point.Lng)
		}

		row := []string{
			record.ID,
			record.Address,
			string(record.Latitude),
			string(record.Longitude),
			googleLat,
			googleLng,
		}

		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing mismatch row %s: %w", record.Tag(), err)
		}
	}

	cw.Flush()

	return cw.Error()
}

// WriteSummaryJSON writes the summary as indented JSON.
func (r *Reporter) WriteSummaryJSON(w io.Writer) error {
	data, err := json.MarshalIndent(r.summary, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling summary: %w", err)
	}

	data = append(data, '\n')

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing summary: %w", err)
	}

	return nil
}

// PrintSummary writes the human-readable summary.
func (r *Reporter) PrintSummary(w io.Writer) {
	s := r.summary

	fmt.Fprintf(w, "Checked %s rows from %s (tolerance %sm)\n",
		textutils.FormatInt(int64(s.TotalRows)), s.Input, formatCoordinate(s.ToleranceMeters))
	fmt.Fprintf(w, "  matched:    %s\n", textutils.FormatInt(int64(s.Matched)))
	fmt.Fprintf(w, "  mismatched: %s (%s invalid coordinates, %s beyond tolerance)\n",
		textutils.FormatInt(int64(s.Mismatched)),
		textutils.FormatInt(int64(s.InvalidCoordinateMismatches)),
		textutils.FormatInt(int64(s.DistanceMismatches)))
	fmt.Fprintf(w, "  skipped:    %s\n", textutils.FormatInt(int64(s.Skipped)))

	for _, status := range []geocode.Status{
		geocode.StatusEmptyAddress,
		geocode.StatusNoResult,
		geocode.StatusAmbiguous,
		geocode.StatusError,
	} {
		if n := s.SkippedByReason[status]; n > 0 {
			fmt.Fprintf(w, "    %-16s %s\n", string(status)+":", textutils.FormatInt(int64(n)))
		}
	}
}
