// Copyright 2026 The GeoCheck Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestClassifyHTTPStatus(t *testing.T) {
	tests := []struct {
		code     int
		wantType ErrorType
	}{
		{http.StatusTooManyRequests, ErrorTypeRateLimit},
		{http.StatusForbidden, ErrorTypeQuotaExceeded},
		{http.StatusBadRequest, ErrorTypeInvalidRequest},
		{http.StatusServiceUnavailable, ErrorTypeNetworkError},
		{http.StatusBadGateway, ErrorTypeNetworkError},
		{http.StatusGatewayTimeout, ErrorTypeNetworkError},
		{http.StatusTeapot, ErrorTypeUnknown},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("code %d", tt.code), func(t *testing.T) {
			got := ClassifyHTTPStatus(tt.code)
			if got.Type != tt.wantType {
				t.Errorf("ClassifyHTTPStatus(%d).Type = %d, want %d", tt.code, got.Type, tt.wantType)
			}
		})
	}
}

func TestClassifyAPIStatus(t *testing.T) {
	tests := []struct {
		status   string
		message  string
		wantType ErrorType
	}{
		{"OVER_QUERY_LIMIT", "", ErrorTypeRateLimit},
		{"OVER_DAILY_LIMIT", "", ErrorTypeQuotaExceeded},
		{"REQUEST_DENIED", "The provided API key is invalid.", ErrorTypeQuotaExceeded},
		{"INVALID_REQUEST", "", ErrorTypeInvalidRequest},
		{"UNKNOWN_ERROR", "", ErrorTypeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			got := ClassifyAPIStatus(tt.status, tt.message)
			if got.Type != tt.wantType {
				t.Errorf("ClassifyAPIStatus(%s).Type = %d, want %d", tt.status, got.Type, tt.wantType)
			}

			if tt.message != "" && got.Error() != "status "+tt.status+": "+tt.message {
				t.Errorf("Error() = %q", got.Error())
			}
		})
	}
}

func TestIsRateLimitError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "typed rate limit",
			err:  &GeocodingError{Type: ErrorTypeRateLimit, Message: "rate limit reached"},
			want: true,
		},
		{
			name: "typed quota",
			err:  &GeocodingError{Type: ErrorTypeQuotaExceeded, Message: "quota"},
			want: false,
		},
		{
			name: "message match",
			err:  errors.New("upstream said: Too Many Requests"),
			want: true,
		},
		{
			name: "unrelated",
			err:  errors.New("connection refused"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRateLimitError(tt.err); got != tt.want {
				t.Errorf("IsRateLimitError() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsTimeoutError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "typed timeout",
			err:  &GeocodingError{Type: ErrorTypeTimeout, Message: "request timed out"},
			want: true,
		},
		{
			name: "context deadline",
			err:  errors.New("context deadline exceeded"),
			want: true,
		},
		{
			name: "client timeout",
			err:  errors.New("Client.Timeout exceeded while awaiting headers"),
			want: true,
		},
		{
			name: "unrelated",
			err:  errors.New("connection reset by peer"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTimeoutError(tt.err); got != tt.want {
				t.Errorf("IsTimeoutError() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGeocodingErrorUnwrap(t *testing.T) {
	inner := errors.New("dial tcp: i/o timeout")
	err := &GeocodingError{Type: ErrorTypeNetworkError, Message: "geocoding request failed", Err: inner}

	if !errors.Is(err, inner) {
		t.Error("errors.Is() should reach the wrapped error")
	}

	if got := err.Error(); got != "geocoding request failed: dial tcp: i/o timeout" {
		t.Errorf("Error() = %q", got)
	}
}
