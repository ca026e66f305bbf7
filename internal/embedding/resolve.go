// Vibecatalog - Media Catalog Consolidation and Vibe Search
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vibecatalog

package embedding

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/vibecatalog/internal/catalog"
	"github.com/tomtom215/vibecatalog/internal/metrics"
)

// StalenessPolicy decides what happens when a persisted index does not match
// the current catalog.
type StalenessPolicy string

const (
	// ReuseStale keeps the persisted index and aligns what it can.
	ReuseStale StalenessPolicy = "reuse-stale"
	// RebuildOnMismatch rebuilds and re-persists the index.
	RebuildOnMismatch StalenessPolicy = "rebuild-on-mismatch"
)

// ParseStalenessPolicy validates a policy name. Empty means reuse-stale.
func ParseStalenessPolicy(s string) (StalenessPolicy, error) {
	switch StalenessPolicy(s) {
	case "", ReuseStale:
		return ReuseStale, nil
	case RebuildOnMismatch:
		return RebuildOnMismatch, nil
	default:
		return "", fmt.Errorf("unknown staleness policy %q", s)
	}
}

// Resolver obtains the index for a catalog: load the persisted one, or build
// and persist a new one.
type Resolver struct {
	embedder Embedder
	path     string
	policy   StalenessPolicy
	workers  int
	logger   zerolog.Logger
}

// NewResolver creates a resolver persisting to path (without extension).
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewResolver(embedder Embedder, path string, policy StalenessPolicy, workers int, logger zerolog.Logger) *Resolver {
	return &Resolver{
		embedder: embedder,
		path:     path,
		policy:   policy,
		workers:  workers,
		logger:   logger.With().Str("component", "embedding").Logger(),
	}
}

// Resolve returns vectors aligned to store.
func (r *Resolver) Resolve(ctx context.Context, store *catalog.Store) (Alignment, error) {
	ix, err := Load(r.path)
	switch {
	case errors.Is(err, ErrIndexNotFound):
		r.logger.Info().Str("path", r.path).Msg("No persisted index, building")
		return r.build(ctx, store)
	case err != nil:
		r.logger.Warn().Err(err).Str("path", r.path).Msg("Persisted index unreadable, rebuilding")
		return r.build(ctx, store)
	}

	if ix.Matches(store) {
		metrics.IndexResolutions.WithLabelValues("loaded").Inc()
		return ix.Align(store), nil
	}

	if r.policy == RebuildOnMismatch {
		r.logger.Info().
			Int("catalog", store.Len()).
			Int("index", ix.Len()).
			Msg("Persisted index does not match catalog, rebuilding")
		return r.build(ctx, store)
	}

	alignment := ix.Align(store)
	metrics.IndexResolutions.WithLabelValues("reused_stale").Inc()
	metrics.IndexMismatches.Inc()
	r.logger.Warn().
		Int("catalog", alignment.Catalog).
		Int("index", alignment.IndexLen).
		Int("aligned", alignment.Aligned).
		Bool("by_id", alignment.ByID).
		Msg("Reusing stale index; unaligned records are excluded from similarity search")
	return alignment, nil
}

func (r *Resolver) build(ctx context.Context, store *catalog.Store) (Alignment, error) {
	ix, err := Build(ctx, r.embedder, store, r.workers)
	if err != nil {
		metrics.IndexResolutions.WithLabelValues("failed").Inc()
		return Alignment{}, fmt.Errorf("build index: %w", err)
	}
	metrics.IndexResolutions.WithLabelValues("built").Inc()

	if err := ix.Save(r.path); err != nil {
		r.logger.Warn().Err(err).Str("path", r.path).Msg("Failed to persist index")
	} else {
		r.logger.Info().Int("rows", ix.Len()).Int("dimensions", ix.Dimensions).Msg("Index built and persisted")
	}
	return ix.Align(store), nil
}
