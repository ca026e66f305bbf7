// Vibecatalog - Media Catalog Consolidation and Vibe Search
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vibecatalog

// Package search ranks catalog records against free-text queries.
//
// A query first tries an exact title match (page 1 only), then falls back to
// cosine similarity over the vectors aligned to the snapshot's catalog.
// The engine never holds a snapshot; callers pass the one they loaded for the
// request so that catalog and vectors always come from the same reload.
package search

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"math/rand"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/vibecatalog/internal/catalog"
	"github.com/tomtom215/vibecatalog/internal/embedding"
	"github.com/tomtom215/vibecatalog/internal/metrics"
	"github.com/tomtom215/vibecatalog/internal/models"
)

// ErrEmptyQuery is returned for a blank query string.
var ErrEmptyQuery = errors.New("query must not be empty")

// Search paths reported in results and metrics.
const (
	PathExact       = "exact"
	PathApproximate = "approximate"
	PathEmpty       = "empty"
)

// Config tunes ranking and the secondary listings.
type Config struct {
	CandidateLimit      int
	DefaultPageSize     int
	TrendingPoolSize    int
	TrendingLimit       int
	AutocompleteScan    int
	AutocompletePerType int
	Seed                int64
}

// DefaultConfig returns the stock tuning.
func DefaultConfig() Config {
	return Config{
		CandidateLimit:      100,
		DefaultPageSize:     12,
		TrendingPoolSize:    250,
		TrendingLimit:       15,
		AutocompleteScan:    50,
		AutocompletePerType: 3,
	}
}

// Query is one search request.
type Query struct {
	Text     string
	Type     models.TypeFilter
	Page     int
	PageSize int
}

// Hit is a ranked catalog record.
type Hit struct {
	Position int
	Record   models.CatalogRecord
	Score    float64
}

// Result is the outcome of a search.
type Result struct {
	Hits []Hit
	Path string
}

// Engine executes searches. It is safe for concurrent use.
type Engine struct {
	embedder embedding.Embedder
	cfg      Config
	logger   zerolog.Logger

	rng   *rand.Rand
	rngMu sync.Mutex
}

// NewEngine creates an engine embedding queries with embedder.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewEngine(embedder embedding.Embedder, cfg Config, logger zerolog.Logger) *Engine {
	def := DefaultConfig()
	if cfg.CandidateLimit <= 0 {
		cfg.CandidateLimit = def.CandidateLimit
	}
	if cfg.DefaultPageSize <= 0 {
		cfg.DefaultPageSize = def.DefaultPageSize
	}
	if cfg.TrendingPoolSize <= 0 {
		cfg.TrendingPoolSize = def.TrendingPoolSize
	}
	if cfg.TrendingLimit <= 0 {
		cfg.TrendingLimit = def.TrendingLimit
	}
	if cfg.AutocompleteScan <= 0 {
		cfg.AutocompleteScan = def.AutocompleteScan
	}
	if cfg.AutocompletePerType <= 0 {
		cfg.AutocompletePerType = def.AutocompletePerType
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &Engine{
		embedder: embedder,
		cfg:      cfg,
		logger:   logger.With().Str("component", "search").Logger(),
		rng:      rand.New(rand.NewSource(seed)), //nolint:gosec // sampling for trending lists only
	}
}

// Search ranks snap's records against q.
func (e *Engine) Search(ctx context.Context, snap *catalog.Snapshot, q Query) (Result, error) {
	text := strings.TrimSpace(q.Text)
	if text == "" {
		return Result{}, ErrEmptyQuery
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = e.cfg.DefaultPageSize
	}
	if q.Type == "" {
		q.Type = models.FilterAll
	}

	if snap.Len() == 0 {
		return Result{Path: PathEmpty}, nil
	}

	start := time.Now()
	if q.Page == 1 {
		if hit, ok := exactMatch(snap.Catalog, strings.ToLower(text), q.Type); ok {
			metrics.RecordSearch(PathExact, time.Since(start))
			return Result{Hits: []Hit{hit}, Path: PathExact}, nil
		}
	}

	hits, err := e.approximate(ctx, snap, text, q)
	if err != nil {
		return Result{}, err
	}
	metrics.RecordSearch(PathApproximate, time.Since(start))
	return Result{Hits: hits, Path: PathApproximate}, nil
}

// exactMatch finds the most popular record whose normalized title equals
// needle, preferring the earliest position on ties.
func exactMatch(store *catalog.Store, needle string, filter models.TypeFilter) (Hit, bool) {
	best := -1
	for i := 0; i < store.Len(); i++ {
		rec := store.Peek(i)
		if !filter.Matches(rec.MediaType) {
			continue
		}
		if strings.ToLower(strings.TrimSpace(rec.Title)) != needle {
			continue
		}
		if best < 0 || rec.Popularity > store.Peek(best).Popularity {
			best = i
		}
	}
	if best < 0 {
		return Hit{}, false
	}
	return Hit{Position: best, Record: store.At(best), Score: 1.0}, true
}

type scored struct {
	pos   int
	score float64
}

func (e *Engine) approximate(ctx context.Context, snap *catalog.Snapshot, text string, q Query) ([]Hit, error) {
	searchable := make([]int, 0, snap.Len())
	for i := 0; i < snap.Len(); i++ {
		if snap.Vector(i) == nil {
			continue
		}
		if q.Type.Matches(snap.Catalog.Peek(i).MediaType) {
			searchable = append(searchable, i)
		}
	}
	if len(searchable) == 0 {
		return nil, nil
	}

	qvec, err := e.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	candidates := make([]scored, len(searchable))
	for i, pos := range searchable {
		candidates[i] = scored{pos: pos, score: embedding.Cosine(qvec, snap.Vector(pos))}
	}
	// Positions are ascending, so a stable sort keeps the earlier position
	// first among equal scores.
	slices.SortStableFunc(candidates, func(a, b scored) int {
		return cmp.Compare(b.score, a.score)
	})
	candidates = candidates[:min(e.cfg.CandidateLimit, len(candidates))]

	from := (q.Page - 1) * q.PageSize
	if from >= len(candidates) {
		return nil, nil
	}
	to := min(from+q.PageSize, len(candidates))

	hits := make([]Hit, 0, to-from)
	for _, c := range candidates[from:to] {
		hits = append(hits, Hit{Position: c.pos, Record: snap.Catalog.At(c.pos), Score: c.score})
	}
	return hits, nil
}
