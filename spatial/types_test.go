// Copyright 2026 The GeoCheck Authors
// SPDX-License-Identifier: Apache-2.0

package spatial

import (
	"math"
	"testing"
)

func TestDistanceMeters(t *testing.T) {
	tests := []struct {
		name      string
		a         Point
		b         Point
		want      float64
		tolerance float64
	}{
		{
			name:      "point to itself is zero",
			a:         Point{Lat: 37.4220, Lng: -122.0841},
			b:         Point{Lat: 37.4220, Lng: -122.0841},
			want:      0,
			tolerance: 0,
		},
		{
			name:      "googleplex stored vs geocoded",
			a:         Point{Lat: 37.4220, Lng: -122.0841},
			b:         Point{Lat: 37.4224, Lng: -122.0841},
			want:      44.5,
			tolerance: 0.5,
		},
		{
			name:      "montevideo to punta del este",
			a:         Point{Lat: -34.9011, Lng: -56.1645},
			b:         Point{Lat: -34.9608, Lng: -54.9433},
			want:      111600,
			tolerance: 500,
		},
		{
			name:      "across the antimeridian",
			a:         Point{Lat: 0, Lng: 179.5},
			b:         Point{Lat: 0, Lng: -179.5},
			want:      111195,
			tolerance: 200,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.a.DistanceMeters(tt.b)
			if math.Abs(got-tt.want) > tt.tolerance {
				t.Errorf("DistanceMeters() = %f, want %f ± %f", got, tt.want, tt.tolerance)
			}

			// The formula is symmetric.
			if back := tt.b.DistanceMeters(tt.a); back != got {
				t.Errorf("DistanceMeters() not symmetric: %f vs %f", got, back)
			}
		})
	}
}

func TestPointInRange(t *testing.T) {
	tests := []struct {
		name string
		p    Point
		want bool
	}{
		{"valid", Point{Lat: -34.9, Lng: -56.1}, true},
		{"lat boundary", Point{Lat: 90, Lng: 0}, true},
		{"lng boundary", Point{Lat: 0, Lng: -180}, true},
		{"lat too high", Point{Lat: 90.0001, Lng: 0}, false},
		{"lat too low", Point{Lat: -91, Lng: 0}, false},
		{"lng too high", Point{Lat: 0, Lng: 180.5}, false},
		{"lng too low", Point{Lat: 0, Lng: -181}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.p.InRange(); got != tt.want {
				t.Errorf("InRange() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPointScan(t *testing.T) {
	var p Point
	if err := p.Scan([]byte("POINT (-122.0841 37.4220)")); err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	if p.Lat != 37.4220 || p.Lng != -122.0841 {
		t.Errorf("Scan() = %+v, want lat 37.4220 lng -122.0841", p)
	}

	if err := p.Scan(map[string]interface{}{"x": -56.1645, "y": -34.9011}); err != nil {
		t.Fatalf("Scan(map) error = %v", err)
	}

	if p.Lat != -34.9011 || p.Lng != -56.1645 {
		t.Errorf("Scan(map) = %+v", p)
	}

	if err := p.Scan(42); err == nil {
		t.Error("Scan(int) expected error, got nil")
	}
}
