// Copyright 2026 The GeoCheck Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/jcodagnone/geocheck/spatial"
	"github.com/jcodagnone/geocheck/utils/httputils"
)

const defaultEndpoint = "https://maps.googleapis.com/maps/api/geocode/json"

// GoogleOptions configuration for GoogleMapsGeocoder.
type GoogleOptions struct {
	// APIKey is the Google Maps API key. Required.
	APIKey string

	// Region biases results towards a ccTLD region (e.g. "us"). Optional.
	Region string

	// UserAgent is the User-Agent header to use in HTTP requests
	UserAgent string

	// Endpoint overrides the geocoding endpoint. Used in tests.
	Endpoint string

	// Timeout for the whole HTTP transaction. Defaults to 20s.
	Timeout time.Duration

	// TraceWriter enables light tracing of HTTP requests and responses
	TraceWriter io.Writer

	// TraceBody enables full HTTP body tracing
	TraceBody bool
}

// GoogleMapsGeocoder issues candidate queries against the Google Maps
// Geocoding API. One address in, every candidate out; resolution policy
// lives in Resolver.
type GoogleMapsGeocoder struct {
	options  *GoogleOptions
	endpoint string
	client   *http.Client
}

// NewGoogleMapsGeocoder creates a new Google Maps candidate source.
func NewGoogleMapsGeocoder(options *GoogleOptions) *GoogleMapsGeocoder {
	if options == nil {
		options = &GoogleOptions{}
	}

	timeout := options.Timeout
	if timeout == 0 {
		timeout = 20 * time.Second
	}

	endpoint := options.Endpoint
	if endpoint == "" {
		endpoint = defaultEndpoint
	}

	userAgent := "geocheck/unknown"
	if options.UserAgent != "" {
		userAgent = options.UserAgent
	}

	transport := &http.Transport{
		MaxIdleConns:          2,
		MaxIdleConnsPerHost:   2,
		IdleConnTimeout:       30 * time.Second,
		ResponseHeaderTimeout: timeout,
	}

	loggingTransport := &httputils.LoggingRoundTripper{
		Writer:    options.TraceWriter,
		DumpBody:  options.TraceBody,
		Transport: transport,
	}

	headerTransport := &httputils.AppendRequestHeadersRoundTripper{
		Headers: map[string]string{
			"User-Agent": userAgent,
			"Accept":     "application/json",
		},
		Transport: loggingTransport,
	}

	return &GoogleMapsGeocoder{
		options:  options,
		endpoint: endpoint,
		client: &http.Client{
			Timeout:   timeout,
			Transport: headerTransport,
		},
	}
}

type googleMapsResponse struct {
	Results []struct {
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
			LocationType string `json:"location_type"`
		} `json:"geometry"`
		FormattedAddress string `json:"formatted_address"`
		PartialMatch     bool   `json:"partial_match"`
	} `json:"results"`
	Status       string `json:"status"` // OK, ZERO_RESULTS, OVER_QUERY_LIMIT, ...
	ErrorMessage string `json:"error_message"`
}

// Query issues a single geocoding request and returns every candidate the
// service produced. A service answer of "no such place" is (nil, nil);
// everything else that prevents an answer is an error.
func (g *GoogleMapsGeocoder) Query(address string) ([]Candidate, error) {
	params := url.Values{}
	params.Set("address", address)
	params.Set("key", g.options.APIKey)

	if g.options.Region != "" {
		params.Set("region", g.options.Region)
	}

	resp, err := g.client.Get(g.endpoint + "?" + params.Encode())
	if err != nil {
		if IsTimeoutError(err) {
			return nil, &GeocodingError{Type: ErrorTypeTimeout, Message: "geocoding request timed out", Err: err}
		}

		return nil, &GeocodingError{Type: ErrorTypeNetworkError, Message: "geocoding request failed", Err: err}
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, ClassifyHTTPStatus(resp.StatusCode)
	}

	var gmResp googleMapsResponse
	if err := json.NewDecoder(resp.Body).Decode(&gmResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	if gmResp.Status == "ZERO_RESULTS" {
		return nil, nil
	}

	if gmResp.Status != "OK" {
		return nil, ClassifyAPIStatus(gmResp.Status, gmResp.ErrorMessage)
	}

	candidates := make([]Candidate, 0, len(gmResp.Results))

	for _, result := range gmResp.Results {
		candidates = append(candidates, Candidate{
			Point: spatial.Point{
				Lat: result.Geometry.Location.Lat,
				Lng: result.Geometry.Location.Lng,
			},
			FormattedAddress: result.FormattedAddress,
			LocationType:     result.Geometry.LocationType,
			PartialMatch:     result.PartialMatch,
		})
	}

	return candidates, nil
}

// confidenceFor maps a Google location_type to a coarse confidence level.
func confidenceFor(locationType string) string {
	switch locationType {
	case "ROOFTOP":
		return "high"
	case "RANGE_INTERPOLATED":
		return "high"
	case "GEOMETRIC_CENTER":
		return "medium"
	default:
		return "low"
	}
}
