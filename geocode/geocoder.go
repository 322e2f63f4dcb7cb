// Copyright 2026 The GeoCheck Authors
// SPDX-License-Identifier: Apache-2.0

// Package geocode resolves free-text addresses into coordinates through the
// Google Maps Geocoding API.
package geocode

import (
	"github.com/jcodagnone/geocheck/spatial"
)

// Status classifies the outcome of geocoding one address.
type Status string

const (
	// StatusOK the address resolved to a single usable location.
	StatusOK Status = "ok"
	// StatusEmptyAddress the address was blank, no request was issued.
	StatusEmptyAddress Status = "empty_address"
	// StatusNoResult the service returned zero candidates.
	StatusNoResult Status = "no_result"
	// StatusAmbiguous the service returned several candidates at materially
	// different locations.
	StatusAmbiguous Status = "ambiguous_result"
	// StatusError the request failed (network, service or decoding failure).
	StatusError Status = "api_error"
)

// Candidate is one location candidate returned by the upstream service.
type Candidate struct {
	Point            spatial.Point
	FormattedAddress string
	LocationType     string // ROOFTOP, RANGE_INTERPOLATED, GEOMETRIC_CENTER, APPROXIMATE
	PartialMatch     bool
}

// Result is the outcome of resolving one address. It is always a value:
// failures are carried in Status and Detail, never as an error.
type Result struct {
	Status           Status
	Point            spatial.Point // meaningful only when Status is StatusOK
	FormattedAddress string
	Confidence       string // high, medium, low
	Candidates       int
	Detail           string // human-readable failure detail
}

// OK reports whether the address resolved to a usable location.
func (r Result) OK() bool {
	return r.Status == StatusOK
}

// Geocoder resolves one address into a Result.
type Geocoder interface {
	Geocode(address string) Result
}
