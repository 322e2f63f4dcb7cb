// Copyright 2026 The GeoCheck Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"fmt"
	"strings"

	"github.com/jcodagnone/geocheck/utils/textutils"
)

// DefaultAgreementMeters is how close two candidates must be to count as
// the same location when deciding ambiguity.
const DefaultAgreementMeters = 30.0

// CandidateSource produces raw location candidates for an address.
type CandidateSource interface {
	Query(address string) ([]Candidate, error)
}

// Resolver turns raw candidate lists into a single Result, applying the
// empty-address and ambiguity policies. It never returns an error: every
// failure becomes a Result value so record-at-a-time processing can
// continue.
type Resolver struct {
	Upstream CandidateSource

	// AgreementMeters is the distance under which two candidates are
	// considered the same location. Zero means DefaultAgreementMeters.
	AgreementMeters float64
}

// Geocode implements the Geocoder interface.
func (r *Resolver) Geocode(address string) Result {
	if strings.TrimSpace(address) == "" {
		return Result{
			Status: StatusEmptyAddress,
			Detail: "address is empty",
		}
	}

	candidates, err := r.Upstream.Query(textutils.CollapseWhitespace(address))
	if err != nil {
		return Result{
			Status: StatusError,
			Detail: err.Error(),
		}
	}

	if len(candidates) == 0 {
		return Result{
			Status: StatusNoResult,
			Detail: "no results found",
		}
	}

	threshold := r.AgreementMeters
	if threshold == 0 {
		threshold = DefaultAgreementMeters
	}

	clusters := clusterCandidates(candidates, threshold)
	if len(clusters) > 1 {
		return Result{
			Status:     StatusAmbiguous,
			Candidates: len(candidates),
			Detail: fmt.Sprintf("%d candidates at %d materially different locations",
				len(candidates), len(clusters)),
		}
	}

	first := candidates[0]

	return Result{
		Status:           StatusOK,
		Point:            first.Point,
		FormattedAddress: first.FormattedAddress,
		Confidence:       confidenceFor(first.LocationType),
		Candidates:       len(candidates),
	}
}

// clusterCandidates groups candidates into clusters based on a distance
// threshold. Candidates join a cluster when they are within the threshold
// of any member.
func clusterCandidates(candidates []Candidate, distanceThreshold float64) [][]Candidate {
	clusters := make([][]Candidate, 0, len(candidates))

	visited := make([]bool, len(candidates))

	for i, c1 := range candidates {
		if visited[i] {
			continue
		}

		cluster := []Candidate{c1}
		visited[i] = true

		for j, c2 := range candidates {
			if visited[j] {
				continue
			}

			for _, member := range cluster {
				if c2.Point.DistanceMeters(member.Point) <= distanceThreshold {
					cluster = append(cluster, c2)
					visited[j] = true

					break
				}
			}
		}

		clusters = append(clusters, cluster)
	}

	return clusters
}
