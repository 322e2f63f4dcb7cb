// Copyright 2026 The GeoCheck Authors
// SPDX-License-Identifier: Apache-2.0

package checker

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// Columns names the input columns holding each required field.
type Columns struct {
	ID        string
	Address   string
	Latitude  string
	Longitude string
}

// DefaultColumns returns the conventional column names.
func DefaultColumns() Columns {
	return Columns{
		ID:        "id",
		Address:   "address",
		Latitude:  "latitude",
		Longitude: "longitude",
	}
}

// RecordReader lazily produces PropertyRecords from a CSV source. The
// header is validated eagerly; cell contents are not.
type RecordReader struct {
	csv    *csv.Reader
	idIdx  int
	addIdx int
	latIdx int
	lngIdx int
}

// NewRecordReader wraps a CSV stream. It reads and validates the header
// immediately and fails when any required column is absent. Column name
// matching is exact; extra columns are ignored.
func NewRecordReader(r io.Reader, columns Columns) (*RecordReader, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // rows narrower than the header yield empty cells

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("input has no header row")
	} else if err != nil {
		return nil, fmt.Errorf("reading header row: %w", err)
	}

	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}

	reader := &RecordReader{csv: cr}

	for _, col := range []struct {
		name string
		idx  *int
	}{
		{columns.ID, &reader.idIdx},
		{columns.Address, &reader.addIdx},
		{columns.Latitude, &reader.latIdx},
		{columns.Longitude, &reader.lngIdx},
	} {
		*col.idx = -1

		for i, name := range header {
			if name == col.name {
				*col.idx = i

				break
			}
		}

		if *col.idx == -1 {
			return nil, fmt.Errorf("missing required column %q, available columns: %s",
				col.name, strings.Join(header, ", "))
		}
	}

	return reader, nil
}

// Next returns the following record, or io.EOF when the input is exhausted.
func (r *RecordReader) Next() (*PropertyRecord, error) {
	row, err := r.csv.Read()
	if err == io.EOF {
		return nil, io.EOF
	} else if err != nil {
		return nil, fmt.Errorf("reading row: %w", err)
	}

	cell := func(idx int) string {
		if idx < len(row) {
			return row[idx]
		}

		return ""
	}

	return &PropertyRecord{
		ID:        cell(r.idIdx),
		Address:   cell(r.addIdx),
		Latitude:  RawCoordinate(cell(r.latIdx)),
		Longitude: RawCoordinate(cell(r.lngIdx)),
	}, nil
}
