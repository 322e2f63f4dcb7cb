// Copyright 2026 The GeoCheck Authors
// SPDX-License-Identifier: Apache-2.0

package checker

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/jcodagnone/geocheck/geocode"
	"github.com/jcodagnone/geocheck/spatial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildReporter accumulates a representative run: two matches, one distance
// mismatch, one invalid-coordinate mismatch, two skips.
func buildReporter(t *testing.T) *Reporter {
	t.Helper()

	reporter := NewReporter("properties.csv", 50)

	add := func(record *PropertyRecord, geocoded geocode.Result) {
		reporter.Add(Evaluate(record, geocoded, 50))
	}

	add(&PropertyRecord{ID: "1", Address: "a", Latitude: "37.4220", Longitude: "-122.0841"},
		okResult(37.4224, -122.0841))
	add(&PropertyRecord{ID: "2", Address: "b", Latitude: "-34.9011", Longitude: "-56.1645"},
		okResult(-34.9011, -56.1645))
	add(&PropertyRecord{ID: "3", Address: "c", Latitude: "37.0", Longitude: "-122.0"},
		okResult(37.4224, -122.0841))
	add(&PropertyRecord{ID: "4", Address: "d", Latitude: "bogus", Longitude: "-56.0"},
		okResult(-34.9, -56.0))
	add(&PropertyRecord{ID: "5", Address: "", Latitude: "1", Longitude: "2"},
		geocode.Result{Status: geocode.StatusEmptyAddress})
	add(&PropertyRecord{ID: "6", Address: "f", Latitude: "1", Longitude: "2"},
		geocode.Result{Status: geocode.StatusNoResult})

	return reporter
}

func TestReporterSummary(t *testing.T) {
	t.Parallel()

	summary := buildReporter(t).Summary()

	assert.Equal(t, 6, summary.TotalRows)
	assert.Equal(t, 2, summary.Matched)
	assert.Equal(t, 2, summary.Mismatched)
	assert.Equal(t, 2, summary.Skipped)
	assert.Equal(t, summary.TotalRows, summary.Matched+summary.Mismatched+summary.Skipped)

	assert.Equal(t, 1, summary.InvalidCoordinateMismatches)
	assert.Equal(t, 1, summary.DistanceMismatches)
	assert.Equal(t, map[geocode.Status]int{
		geocode.StatusEmptyAddress: 1,
		geocode.StatusNoResult:     1,
	}, summary.SkippedByReason)
}

func TestWriteMismatchesCSV(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, buildReporter(t).WriteMismatchesCSV(&buf))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3) // header + two mismatches, in input order

	assert.Equal(t, mismatchHeader, rows[0])
	assert.Equal(t, []string{"3", "c", "37.0", "-122.0", "37.4224", "-122.0841"}, rows[1])
	// Raw cells pass through verbatim; google columns come from geocoding.
	assert.Equal(t, []string{"4", "d", "bogus", "-56.0", "-34.9", "-56"}, rows[2])
}

func TestWriteMismatchesCSVHeaderOnly(t *testing.T) {
	t.Parallel()

	reporter := NewReporter("in.csv", 10)

	var buf bytes.Buffer
	require.NoError(t, reporter.WriteMismatchesCSV(&buf))

	assert.Equal(t, strings.Join(mismatchHeader, ",")+"\n", buf.String())
}

func TestWriteMismatchesCSVUnresolvedAddress(t *testing.T) {
	t.Parallel()

	reporter := NewReporter("in.csv", 10)
	reporter.Add(Evaluate(
		&PropertyRecord{ID: "1", Address: "a", Latitude: "", Longitude: ""},
		geocode.Result{Status: geocode.StatusNoResult},
		10,
	))

	var buf bytes.Buffer
	require.NoError(t, reporter.WriteMismatchesCSV(&buf))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"1", "a", "", "", "", ""}, rows[1])
}

func TestWriteSummaryJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, buildReporter(t).WriteSummaryJSON(&buf))

	var summary Summary
	require.NoError(t, json.Unmarshal(buf.Bytes(), &summary))

	assert.Equal(t, "properties.csv", summary.Input)
	assert.Equal(t, 50.0, summary.ToleranceMeters)
	assert.Equal(t, 6, summary.TotalRows)
	assert.Equal(t, 1, summary.SkippedByReason[geocode.StatusNoResult])
}

func TestPrintSummary(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	buildReporter(t).PrintSummary(&buf)

	out := buf.String()
	assert.Contains(t, out, "Checked 6 rows from properties.csv")
	assert.Contains(t, out, "matched:    2")
	assert.Contains(t, out, "mismatched: 2 (1 invalid coordinates, 1 beyond tolerance)")
	assert.Contains(t, out, "empty_address:")
	assert.NotContains(t, out, "ambiguous_result:")
}

func TestMismatchesPoint(t *testing.T) {
	t.Parallel()

	mismatches := buildReporter(t).Mismatches()
	require.Len(t, mismatches, 2)

	require.NotNil(t, mismatches[0].Stored)
	assert.Equal(t, spatial.Point{Lat: 37.0, Lng: -122.0}, *mismatches[0].Stored)
	assert.Nil(t, mismatches[1].Stored)
}
