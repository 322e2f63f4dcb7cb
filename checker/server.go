// Copyright 2026 The GeoCheck Authors
// SPDX-License-Identifier: Apache-2.0

package checker

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Server exposes a stored run for local browsing: summary, filtered
// mismatch listing, and mismatch counts grouped by area.
type Server struct {
	repo *RunRepository
}

// NewServer creates a review server over a run repository.
func NewServer(repo *RunRepository) *Server {
	return &Server{repo: repo}
}

// Run serves until the listener fails. Local only.
func (s *Server) Run(addr string) error {
	r := gin.Default()

	r.GET("/", s.indexView)
	r.GET("/api/summary", s.getSummary)
	r.GET("/api/mismatches", s.listMismatches)
	r.GET("/api/areas", s.getAreaCounts)

	return r.Run(addr)
}

const indexPage = `<!DOCTYPE html>
<html>
<head><title>geocheck review</title></head>
<body>
<h1>geocheck review</h1>
<ul>
<li><a href="/api/summary">summary of the latest run</a></li>
<li><a href="/api/mismatches">mismatches (filter with ?q=address)</a></li>
<li><a href="/api/areas?res=7">mismatches grouped by H3 area (res 5-8)</a></li>
</ul>
</body>
</html>
`

func (s *Server) indexView(ctx *gin.Context) {
	ctx.Data(http.StatusOK, "text/html; charset=utf-8", []byte(indexPage))
}

// latestRun resolves the run to display, answering the request itself on
// failure.
func (s *Server) latestRun(ctx *gin.Context) *StoredRun {
	run, err := s.repo.LatestRun()
	if errors.Is(err, sql.ErrNoRows) {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "no recorded runs - run 'geocheck check --db-path' first"})

		return nil
	} else if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return nil
	}

	return run
}

func (s *Server) getSummary(ctx *gin.Context) {
	run := s.latestRun(ctx)
	if run == nil {
		return
	}

	ctx.JSON(http.StatusOK, run)
}

func (s *Server) listMismatches(ctx *gin.Context) {
	run := s.latestRun(ctx)
	if run == nil {
		return
	}

	limit := 0
	if raw := ctx.Query("limit"); raw != "" {
		var err error

		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit parameter"})

			return
		}
	}

	results, err := s.repo.ListMismatches(run.ID, ctx.Query("q"), limit)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"run_id":     run.ID,
		"mismatches": results,
	})
}

func (s *Server) getAreaCounts(ctx *gin.Context) {
	run := s.latestRun(ctx)
	if run == nil {
		return
	}

	resolution := 7
	if raw := ctx.Query("res"); raw != "" {
		var err error

		resolution, err = strconv.Atoi(raw)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid res parameter"})

			return
		}
	}

	counts, err := s.repo.AreaCounts(run.ID, resolution)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"run_id":     run.ID,
		"resolution": resolution,
		"areas":      counts,
	})
}
