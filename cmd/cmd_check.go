// Copyright 2026 The GeoCheck Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	_ "github.com/duckdb/duckdb-go/v2" // register duckdb driver
	"github.com/jcodagnone/geocheck/checker"
	"github.com/jcodagnone/geocheck/geocode"
	"github.com/spf13/cobra"
)

const databaseFile = "geocheck.duckdb"

type checkFlags struct {
	input            string
	toleranceMeters  float64
	mismatchesOutput string
	summaryOutput    string
	dbPath           string

	idColumn      string
	addressColumn string
	latColumn     string
	lngColumn     string

	envFile         string
	region          string
	ambiguityMeters float64
	sleepMs         int
	maxRows         int
	dryRun          bool

	traceHTTP     bool
	traceHTTPBody bool
}

var checkOptions = &checkFlags{}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate stored coordinates by re-geocoding each address",
	Long: `Reads a CSV of properties, geocodes each address through the Google Maps
Geocoding API, and compares the returned coordinates against the stored
latitude/longitude within the given tolerance. Emits a summary and,
optionally, a CSV of mismatched rows.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cmd.SilenceUsage = true

		if checkOptions.toleranceMeters < 0 {
			return errors.New("--tolerance-meters must be >= 0")
		}

		f, err := os.Open(checkOptions.input)
		if err != nil {
			return fmt.Errorf("opening input: %w", err)
		}
		defer f.Close()

		columns := checker.Columns{
			ID:        checkOptions.idColumn,
			Address:   checkOptions.addressColumn,
			Latitude:  checkOptions.latColumn,
			Longitude: checkOptions.lngColumn,
		}

		reader, err := checker.NewRecordReader(f, columns)
		if err != nil {
			return err
		}

		if checkOptions.dryRun {
			fmt.Printf("Dry run OK: required columns found in %s:\n", checkOptions.input)
			fmt.Printf("- id: %s\n", columns.ID)
			fmt.Printf("- address: %s\n", columns.Address)
			fmt.Printf("- latitude: %s\n", columns.Latitude)
			fmt.Printf("- longitude: %s\n", columns.Longitude)

			return nil
		}

		apiKey, err := geocode.ResolveAPIKey(cmd.Context(), checkOptions.envFile)
		if err != nil {
			return err
		}

		var traceWriter io.Writer
		if checkOptions.traceHTTP {
			traceWriter = os.Stderr
		}

		geocoder := &geocode.Resolver{
			Upstream: geocode.NewGoogleMapsGeocoder(&geocode.GoogleOptions{
				APIKey:      apiKey,
				Region:      checkOptions.region,
				UserAgent:   fmt.Sprintf("geocheck/%s (+https://github.com/jcodagnone/geocheck)", Version),
				TraceWriter: traceWriter,
				TraceBody:   checkOptions.traceHTTPBody,
			}),
			AgreementMeters: checkOptions.ambiguityMeters,
		}

		runner := checker.NewRunner(reader, geocoder, &checker.Options{
			ToleranceMeters: checkOptions.toleranceMeters,
			MaxRows:         checkOptions.maxRows,
			SleepMs:         checkOptions.sleepMs,
		})

		reporter, err := runner.Run(checkOptions.input)
		if err != nil {
			return err
		}

		if checkOptions.mismatchesOutput != "" {
			if err := writeMismatches(reporter, checkOptions.mismatchesOutput); err != nil {
				return err
			}
		}

		reporter.PrintSummary(os.Stdout)

		if checkOptions.summaryOutput != "" {
			if err := writeSummary(reporter, checkOptions.summaryOutput); err != nil {
				return err
			}
		}

		if checkOptions.dbPath != "" {
			if err := recordRun(reporter, checkOptions.dbPath); err != nil {
				return err
			}
		}

		return nil
	},
}

func writeMismatches(reporter *checker.Reporter, path string) (err error) {
	out, err := os.Create(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("creating mismatches output: %w", err)
	}

	defer func() {
		if cerr := out.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("closing mismatches output: %w", cerr))
		}
	}()

	return reporter.WriteMismatchesCSV(out)
}

func writeSummary(reporter *checker.Reporter, path string) (err error) {
	out, err := os.Create(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("creating summary output: %w", err)
	}

	defer func() {
		if cerr := out.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("closing summary output: %w", cerr))
		}
	}()

	return reporter.WriteSummaryJSON(out)
}

func recordRun(reporter *checker.Reporter, dbPath string) error {
	if err := os.MkdirAll(dbPath, 0o750); err != nil {
		return fmt.Errorf("creating db directory: %w", err)
	}

	db, err := sql.Open("duckdb", filepath.Join(dbPath, databaseFile))
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	repo := checker.NewRunRepository(db)
	if err := repo.CreateSchema(); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	runID, err := repo.SaveRun(reporter)
	if err != nil {
		return fmt.Errorf("recording run: %w", err)
	}

	log.Printf("Recorded run %d - browse it with 'geocheck review --db-path %s'", runID, dbPath)

	return nil
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVar(&checkOptions.input, "input", "", "Path to the input CSV")
	checkCmd.Flags().Float64Var(
		&checkOptions.toleranceMeters,
		"tolerance-meters",
		0,
		"Distance tolerance in meters for match vs mismatch",
	)
	checkCmd.Flags().StringVar(
		&checkOptions.mismatchesOutput,
		"mismatches-output",
		"",
		"Path to write the mismatched rows CSV. If omitted, mismatches are only counted",
	)
	checkCmd.Flags().StringVar(
		&checkOptions.summaryOutput,
		"summary-output",
		"",
		"Optional path to write the summary as JSON",
	)
	checkCmd.Flags().StringVar(
		&checkOptions.dbPath,
		"db-path",
		"",
		"Optional directory holding the runs database; when set, the run is recorded for 'review'",
	)

	checkCmd.Flags().StringVar(&checkOptions.idColumn, "id-column", "id", "Column name for the property id")
	checkCmd.Flags().StringVar(&checkOptions.addressColumn, "address-column", "address", "Column name for the address")
	checkCmd.Flags().StringVar(&checkOptions.latColumn, "lat-column", "latitude", "Column name for the latitude")
	checkCmd.Flags().StringVar(&checkOptions.lngColumn, "lng-column", "longitude", "Column name for the longitude")

	checkCmd.Flags().StringVar(
		&checkOptions.envFile,
		"env-file",
		".env",
		"Path to a .env file to load when GOOGLE_MAPS_API_KEY is not set",
	)
	checkCmd.Flags().StringVar(
		&checkOptions.region,
		"region",
		"",
		"Optional ccTLD region bias for geocoding (e.g. \"us\")",
	)
	checkCmd.Flags().Float64Var(
		&checkOptions.ambiguityMeters,
		"ambiguity-meters",
		geocode.DefaultAgreementMeters,
		"Distance under which several geocoding candidates count as the same location",
	)
	checkCmd.Flags().IntVar(&checkOptions.sleepMs, "sleep-ms", 0, "Delay between geocoding requests in milliseconds")
	checkCmd.Flags().IntVar(&checkOptions.maxRows, "max-rows", 0, "Max number of rows to process (0 = all)")
	checkCmd.Flags().BoolVar(
		&checkOptions.dryRun,
		"dry-run",
		false,
		"Only validate CSV parsing and required columns, without geocoding",
	)

	checkCmd.Flags().BoolVar(&checkOptions.traceHTTP, "trace-http", false, "Display HTTP requests-responses")
	checkCmd.Flags().BoolVar(&checkOptions.traceHTTPBody, "trace-http-body", false, "Display HTTP requests-responses bodies")

	_ = checkCmd.MarkFlagRequired("input")
	_ = checkCmd.MarkFlagRequired("tolerance-meters")
}
