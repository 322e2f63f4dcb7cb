// Copyright 2026 The GeoCheck Authors
// SPDX-License-Identifier: Apache-2.0

package checker

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jcodagnone/geocheck/spatial"
	"github.com/jcodagnone/geocheck/utils/textutils"
	"github.com/uber/h3-go/v4"
)

// h3Resolutions are the H3 resolutions stored per result, coarse enough to
// group mismatches by area and fine enough to tell streets apart.
var h3Resolutions = []int{5, 6, 7, 8}

// RunRepository persists finished runs into DuckDB so they can be browsed
// later with the review server.
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository creates a repository over an open DuckDB handle.
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// DB returns the underlying database connection.
func (r *RunRepository) DB() *sql.DB {
	return r.db
}

// CreateSchema creates the runs and results tables.
func (r *RunRepository) CreateSchema() error {
	// DuckDB needs to load the spatial extension
	if _, err := r.db.Exec(`INSTALL spatial; LOAD spatial;`); err != nil {
		return err
	}

	_, err := r.db.Exec(`
		CREATE SEQUENCE IF NOT EXISTS runs_seq START 1;

		CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY DEFAULT nextval('runs_seq'),
			input VARCHAR NOT NULL,
			tolerance_meters DOUBLE NOT NULL,
			total_rows INTEGER NOT NULL,
			matched INTEGER NOT NULL,
			mismatched INTEGER NOT NULL,
			skipped INTEGER NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS results (
			run_id INTEGER NOT NULL,
			seq INTEGER NOT NULL,
			record_id VARCHAR,
			address VARCHAR,
			address_folded VARCHAR,
			outcome VARCHAR NOT NULL,
			reason VARCHAR,
			stored_point POINT_2D,
			google_point POINT_2D,
			distance_meters DOUBLE,
			confidence VARCHAR,
			h3_res5 UBIGINT,
			h3_res6 UBIGINT,
			h3_res7 UBIGINT,
			h3_res8 UBIGINT,
			UNIQUE(run_id, seq)
		);
	`)

	return err
}

// bestPoint picks the coordinate to index a result under: the geocoded
// location when the address resolved, otherwise the stored one.
func bestPoint(outcome *Outcome) *spatial.Point {
	if outcome.Geocoded.OK() {
		p := outcome.Geocoded.Point

		return &p
	}

	return outcome.Stored
}

// h3Cells computes the H3 cell for every stored resolution. All cells are
// nil when the result has no usable point.
func h3Cells(point *spatial.Point) ([]any, error) {
	cells := make([]any, len(h3Resolutions))
	if point == nil {
		return cells, nil
	}

	latLng := h3.NewLatLng(point.Lat, point.Lng)

	for i, res := range h3Resolutions {
		cell, err := h3.LatLngToCell(latLng, res)
		if err != nil {
			return nil, fmt.Errorf("converting to h3 cell at res %d: %w", res, err)
		}

		cells[i] = int64(cell)
	}

	return cells, nil
}

// SaveRun stores the summary and every outcome of a finished run, and
// returns the new run id.
func (r *RunRepository) SaveRun(reporter *Reporter) (int64, error) {
	summary := reporter.Summary()

	var runID int64

	err := r.db.QueryRow(`
		INSERT INTO runs (input, tolerance_meters, total_rows, matched, mismatched, skipped)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id
	`,
		summary.Input,
		summary.ToleranceMeters,
		summary.TotalRows,
		summary.Matched,
		summary.Mismatched,
		summary.Skipped,
	).Scan(&runID)
	if err != nil {
		return 0, fmt.Errorf("inserting run: %w", err)
	}

	tx, err := r.db.Begin()
	if err != nil {
		return 0, err
	}

	stmt, err := tx.Prepare(`
		INSERT INTO results (
			run_id, seq, record_id, address, address_folded, outcome, reason,
			stored_point, google_point, distance_meters, confidence,
			h3_res5, h3_res6, h3_res7, h3_res8
		) VALUES (?, ?, ?, ?, ?, ?, ?, ST_Point(?, ?), ST_Point(?, ?), ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, errors.Join(fmt.Errorf("preparing results insert: %w", err), tx.Rollback())
	}

	for seq, outcome := range reporter.Outcomes() {
		var storedLng, storedLat, googleLng, googleLat any
		if outcome.Stored != nil {
			storedLng, storedLat = outcome.Stored.Lng, outcome.Stored.Lat
		}

		if outcome.Geocoded.OK() {
			googleLng, googleLat = outcome.Geocoded.Point.Lng, outcome.Geocoded.Point.Lat
		}

		var distance any
		if outcome.Stored != nil && outcome.Geocoded.OK() {
			distance = outcome.DistanceMeters
		}

		cells, err := h3Cells(bestPoint(&outcome))
		if err != nil {
			return 0, errors.Join(err, tx.Rollback())
		}

		args := []any{
			runID,
			seq,
			outcome.Record.ID,
			outcome.Record.Address,
			textutils.LowerASCIIFolding(outcome.Record.Address),
			outcome.Kind.String(),
			strings.Join(outcome.Reasons, ", "),
			storedLng, storedLat,
			googleLng, googleLat,
			distance,
			outcome.Geocoded.Confidence,
		}
		args = append(args, cells...)

		if _, err := stmt.Exec(args...); err != nil {
			return 0, errors.Join(fmt.Errorf("inserting result %d: %w", seq, err), tx.Rollback())
		}
	}

	if err := stmt.Close(); err != nil {
		return 0, errors.Join(err, tx.Rollback())
	}

	return runID, tx.Commit()
}

// StoredRun is a persisted run summary.
type StoredRun struct {
	ID              int64   `json:"id"`
	Input           string  `json:"input"`
	ToleranceMeters float64 `json:"tolerance_meters"`
	TotalRows       int     `json:"total_rows"`
	Matched         int     `json:"matched"`
	Mismatched      int     `json:"mismatched"`
	Skipped         int     `json:"skipped"`
	CreatedAt       string  `json:"created_at"`
}

// LatestRun returns the most recently stored run.
func (r *RunRepository) LatestRun() (*StoredRun, error) {
	run := &StoredRun{}

	err := r.db.QueryRow(`
		SELECT id, input, tolerance_meters, total_rows, matched, mismatched, skipped,
		       strftime(created_at, '%Y-%m-%d %H:%M:%S')
		FROM runs
		ORDER BY id DESC
		LIMIT 1
	`).Scan(
		&run.ID,
		&run.Input,
		&run.ToleranceMeters,
		&run.TotalRows,
		&run.Matched,
		&run.Mismatched,
		&run.Skipped,
		&run.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return run, nil
}

// StoredResult is one persisted record outcome.
type StoredResult struct {
	Seq            int            `json:"seq"`
	RecordID       string         `json:"record_id"`
	Address        string         `json:"address"`
	Outcome        string         `json:"outcome"`
	Reason         string         `json:"reason,omitempty"`
	Stored         *spatial.Point `json:"stored,omitempty"`
	Google         *spatial.Point `json:"google,omitempty"`
	DistanceMeters *float64       `json:"distance_meters,omitempty"`
	Confidence     string         `json:"confidence,omitempty"`
}

// ListMismatches returns the mismatch results of a run, in input order,
// optionally filtered with an accent- and case-insensitive address search.
func (r *RunRepository) ListMismatches(runID int64, query string, limit int) ([]*StoredResult, error) {
	if limit <= 0 {
		limit = 500
	}

	rows, err := r.db.Query(`
		SELECT seq, record_id, address, outcome, reason,
		       stored_point, stored_point IS NOT NULL,
		       google_point, google_point IS NOT NULL,
		       distance_meters, confidence
		FROM results
		WHERE run_id = ?
		AND outcome = 'mismatch'
		AND (? = '' OR address_folded LIKE '%' || ? || '%')
		ORDER BY seq
		LIMIT ?
	`,
		runID,
		textutils.LowerASCIIFolding(query),
		textutils.LowerASCIIFolding(query),
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing mismatches: %w", err)
	}
	defer rows.Close()

	var results []*StoredResult

	for rows.Next() {
		result := &StoredResult{}

		var (
			stored, google       spatial.Point
			hasStored, hasGoogle bool
			reason, confidence   sql.NullString
			distance             sql.NullFloat64
		)

		if err := rows.Scan(
			&result.Seq,
			&result.RecordID,
			&result.Address,
			&result.Outcome,
			&reason,
			&stored, &hasStored,
			&google, &hasGoogle,
			&distance,
			&confidence,
		); err != nil {
			return nil, fmt.Errorf("scanning mismatch row: %w", err)
		}

		result.Reason = reason.String
		result.Confidence = confidence.String

		if hasStored {
			result.Stored = &stored
		}

		if hasGoogle {
			result.Google = &google
		}

		if distance.Valid {
			result.DistanceMeters = &distance.Float64
		}

		results = append(results, result)
	}

	return results, rows.Err()
}

// AreaCount is the number of mismatches inside one H3 cell.
type AreaCount struct {
	Cell       string `json:"cell"`
	Mismatches int    `json:"mismatches"`
}

// AreaCounts groups a run's mismatches by H3 cell at the given resolution.
func (r *RunRepository) AreaCounts(runID int64, resolution int) ([]*AreaCount, error) {
	column := ""

	for _, res := range h3Resolutions {
		if res == resolution {
			column = fmt.Sprintf("h3_res%d", res)

			break
		}
	}

	if column == "" {
		return nil, fmt.Errorf("unsupported h3 resolution %d (stored: %v)", resolution, h3Resolutions)
	}

	rows, err := r.db.Query(fmt.Sprintf(`
		SELECT %s, COUNT(*)
		FROM results
		WHERE run_id = ?
		AND outcome = 'mismatch'
		AND %s IS NOT NULL
		GROUP BY 1
		ORDER BY 2 DESC, 1
	`, column, column), runID)
	if err != nil {
		return nil, fmt.Errorf("grouping mismatches by area: %w", err)
	}
	defer rows.Close()

	var counts []*AreaCount

	for rows.Next() {
		var (
			cell  uint64
			count int
		)

		if err := rows.Scan(&cell, &count); err != nil {
			return nil, fmt.Errorf("scanning area row: %w", err)
		}

		counts = append(counts, &AreaCount{
			Cell:       h3.Cell(cell).String(),
			Mismatches: count,
		})
	}

	return counts, rows.Err()
}
