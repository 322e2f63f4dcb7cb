// Copyright 2026 The GeoCheck Authors
// SPDX-License-Identifier: Apache-2.0

package checker

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/jcodagnone/geocheck/geocode"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
)

// Options configuration for a validation run.
type Options struct {
	// ToleranceMeters is the inclusive distance threshold between stored
	// and geocoded coordinates for a record to count as a match.
	ToleranceMeters float64

	// MaxRows limits how many rows are processed. Zero means all.
	MaxRows int

	// SleepMs is an optional delay between geocoding requests.
	SleepMs int
}

// Runner drives the sequential read → geocode → evaluate → accumulate
// pipeline, one record at a time, in input order.
type Runner struct {
	reader   *RecordReader
	geocoder geocode.Geocoder
	options  *Options
}

// NewRunner assembles a pipeline over the given source and geocoder.
func NewRunner(reader *RecordReader, geocoder geocode.Geocoder, options *Options) *Runner {
	if options == nil {
		options = &Options{}
	}

	return &Runner{
		reader:   reader,
		geocoder: geocoder,
		options:  options,
	}
}

// Run processes every record and returns the filled accumulator. Only
// source-level failures abort the run; per-record problems become outcomes
// and diagnostics on stderr.
func (r *Runner) Run(input string) (*Reporter, error) {
	reporter := NewReporter(input, r.options.ToleranceMeters)

	var bar *progressbar.ProgressBar
	if isatty.IsTerminal(os.Stderr.Fd()) {
		bar = progressbar.NewOptions(-1,
			progressbar.OptionSetDescription("Checking"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}

	for {
		if r.options.MaxRows > 0 && reporter.Summary().TotalRows >= r.options.MaxRows {
			break
		}

		record, err := r.reader.Next()
		if err == io.EOF {
			break
		} else if err != nil {
			return reporter, fmt.Errorf("reading input: %w", err)
		}

		geocoded := r.geocoder.Geocode(record.Address)

		outcome := Evaluate(record, geocoded, r.options.ToleranceMeters)
		reporter.Add(outcome)

		switch {
		case outcome.Kind == OutcomeSkipped:
			log.Printf("Skip %s: %s", record.Tag(), strings.Join(outcome.Reasons, ", "))
		case outcome.Kind == OutcomeMismatch && outcome.Stored == nil:
			log.Printf("Mismatch %s: invalid stored coordinates (%s)",
				record.Tag(), strings.Join(outcome.Reasons, ", "))
		}

		if bar != nil {
			if err := bar.Add(1); err != nil {
				log.Printf("Updating progress bar: %s", err)
			}
		}

		if r.options.SleepMs > 0 && geocoded.Status != geocode.StatusEmptyAddress {
			time.Sleep(time.Duration(r.options.SleepMs) * time.Millisecond)
		}
	}

	if bar != nil {
		_ = bar.Finish()
	}

	return reporter, nil
}
