// Copyright 2026 The GeoCheck Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/duckdb/duckdb-go/v2" // register duckdb driver
	"github.com/jcodagnone/geocheck/checker"
	"github.com/spf13/cobra"
)

type reviewFlags struct {
	dbPath string
	addr   string
}

var reviewOptions = &reviewFlags{}

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Run the local web server to browse recorded check runs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cmd.SilenceUsage = true

		dbpath := filepath.Join(reviewOptions.dbPath, databaseFile)
		if _, err := os.Stat(dbpath); errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("database not found at %s - run 'check --db-path %s' first", dbpath, reviewOptions.dbPath)
		}

		db, err := sql.Open("duckdb", dbpath)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer db.Close()

		repo := checker.NewRunRepository(db)
		if err := repo.CreateSchema(); err != nil {
			return fmt.Errorf("creating schema: %w", err)
		}

		server := checker.NewServer(repo)

		fmt.Println("🗺️  Geocode review server starting...")
		fmt.Printf("📍 Open http://%s in your browser\n", reviewOptions.addr)
		fmt.Println("🔒 Local only - not exposed to internet")

		return server.Run(reviewOptions.addr)
	},
}

func init() {
	rootCmd.AddCommand(reviewCmd)

	reviewCmd.Flags().StringVar(&reviewOptions.dbPath, "db-path", "db", "Directory holding the runs database")
	reviewCmd.Flags().StringVar(&reviewOptions.addr, "addr", "localhost:8080", "Listen address for the review server")
}
