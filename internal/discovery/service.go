// Vibecatalog - Media Catalog Consolidation and Vibe Search
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vibecatalog

// Package discovery owns the live catalog snapshot and serves searches,
// trending lists, autocomplete and previews against it.
//
// A reload consolidates the sources, resolves the embedding index, and
// publishes the new catalog and its aligned vectors as one snapshot. Requests
// load the snapshot once and use it throughout, so a concurrent reload never
// mixes two catalogs in one response.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/vibecatalog/internal/cache"
	"github.com/tomtom215/vibecatalog/internal/catalog"
	"github.com/tomtom215/vibecatalog/internal/embedding"
	"github.com/tomtom215/vibecatalog/internal/events"
	"github.com/tomtom215/vibecatalog/internal/ingest"
	"github.com/tomtom215/vibecatalog/internal/metrics"
	"github.com/tomtom215/vibecatalog/internal/models"
	"github.com/tomtom215/vibecatalog/internal/search"
)

var (
	// ErrEmptyQuery is returned for a blank search query.
	ErrEmptyQuery = search.ErrEmptyQuery
	// ErrReloadInProgress is returned when a reload is already running.
	ErrReloadInProgress = errors.New("catalog reload already in progress")
	// ErrEmptyCatalog is returned when consolidation produced no records.
	ErrEmptyCatalog = errors.New("consolidated catalog is empty")
)

// Consolidator builds a catalog from sources.
type Consolidator interface {
	Consolidate(ctx context.Context, sources []ingest.Source) (*catalog.Store, ingest.Stats, error)
}

// IndexResolver produces vectors aligned to a catalog.
type IndexResolver interface {
	Resolve(ctx context.Context, store *catalog.Store) (embedding.Alignment, error)
}

// ArtworkLoader restores previously discovered metadata.
type ArtworkLoader interface {
	LoadArtwork(ctx context.Context) (map[string]models.Artwork, error)
}

// Enricher fills display metadata for result records.
type Enricher interface {
	Enrich(ctx context.Context, store *catalog.Store, records []models.CatalogRecord) []models.CatalogRecord
	Preview(ctx context.Context, store *catalog.Store, title, artist string) string
}

// ReloadPublisher announces new snapshots.
type ReloadPublisher interface {
	PublishReloaded(ctx context.Context, ev events.CatalogReloaded) error
}

// Deps wires a Service. Artwork and Publisher are optional.
type Deps struct {
	Consolidator Consolidator
	Sources      []ingest.Source
	Resolver     IndexResolver
	Artwork      ArtworkLoader
	Engine       *search.Engine
	Enricher     Enricher
	Cache        *cache.SearchCache
	Publisher    ReloadPublisher
	Logger       zerolog.Logger
}

// ReloadReport describes a completed reload.
type ReloadReport struct {
	Version  uint64        `json:"version"`
	Records  int           `json:"records"`
	Indexed  int           `json:"indexed"`
	ByID     bool          `json:"alignedById"`
	Stale    bool          `json:"staleIndex"`
	Ingest   ingest.Stats  `json:"ingest"`
	Duration time.Duration `json:"durationNs"`
}

// Status summarizes the live snapshot.
type Status struct {
	Ready    bool      `json:"ready"`
	Version  uint64    `json:"version"`
	Records  int       `json:"records"`
	Indexed  int       `json:"indexed"`
	LoadedAt time.Time `json:"loadedAt"`
}

// Service serves discovery requests. It is safe for concurrent use.
type Service struct {
	holder catalog.Holder

	consolidator Consolidator
	sources      []ingest.Source
	resolver     IndexResolver
	artwork      ArtworkLoader
	engine       *search.Engine
	enricher     Enricher
	cache        *cache.SearchCache
	publisher    ReloadPublisher
	logger       zerolog.Logger

	reloadMu sync.Mutex
}

// NewService creates a service with no snapshot; call Reload to load one.
//
//nolint:gocritic // Deps carries a zerolog.Logger by value
func NewService(d Deps) *Service {
	return &Service{
		consolidator: d.Consolidator,
		sources:      d.Sources,
		resolver:     d.Resolver,
		artwork:      d.Artwork,
		engine:       d.Engine,
		enricher:     d.Enricher,
		cache:        d.Cache,
		publisher:    d.Publisher,
		logger:       d.Logger.With().Str("component", "discovery").Logger(),
	}
}

// Reload rebuilds the catalog and swaps it in. On failure the previous
// snapshot stays live.
func (s *Service) Reload(ctx context.Context) (ReloadReport, error) {
	if !s.reloadMu.TryLock() {
		metrics.RecordReload("busy", 0)
		return ReloadReport{}, ErrReloadInProgress
	}
	defer s.reloadMu.Unlock()

	start := time.Now()
	report, err := s.reload(ctx)
	report.Duration = time.Since(start)
	if err != nil {
		metrics.RecordReload("failure", report.Duration)
		s.logger.Error().Err(err).Dur("duration", report.Duration).Msg("Catalog reload failed; keeping previous snapshot")
		return report, err
	}
	metrics.RecordReload("success", report.Duration)
	s.logger.Info().
		Uint64("version", report.Version).
		Int("records", report.Records).
		Int("indexed", report.Indexed).
		Bool("stale_index", report.Stale).
		Dur("duration", report.Duration).
		Msg("Catalog snapshot published")
	return report, nil
}

func (s *Service) reload(ctx context.Context) (ReloadReport, error) {
	store, stats, err := s.consolidator.Consolidate(ctx, s.sources)
	if err != nil {
		return ReloadReport{Ingest: stats}, fmt.Errorf("consolidate: %w", err)
	}
	if store.Len() == 0 {
		return ReloadReport{Ingest: stats}, ErrEmptyCatalog
	}

	alignment, err := s.resolver.Resolve(ctx, store)
	if err != nil {
		return ReloadReport{Ingest: stats}, fmt.Errorf("resolve index: %w", err)
	}

	if s.artwork != nil {
		known, err := s.artwork.LoadArtwork(ctx)
		if err != nil {
			s.logger.Warn().Err(err).Msg("Failed to restore discovered metadata")
		} else {
			store.Hydrate(known)
		}
	}

	snap := catalog.NewSnapshot(store, alignment.Vectors, s.holder.NextVersion())
	s.holder.Publish(snap)
	indexed := snap.Indexed()
	metrics.SetSnapshotSize(snap.Len(), indexed)

	if s.publisher != nil {
		ev := events.CatalogReloaded{
			Version:  snap.Version,
			Records:  snap.Len(),
			Indexed:  indexed,
			LoadedAt: snap.LoadedAt,
		}
		if err := s.publisher.PublishReloaded(ctx, ev); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to publish reload event")
		}
	}

	return ReloadReport{
		Version: snap.Version,
		Records: snap.Len(),
		Indexed: indexed,
		ByID:    alignment.ByID,
		Stale:   alignment.Mismatch(),
		Ingest:  stats,
	}, nil
}

// Snapshot returns the live snapshot, or nil before the first reload.
func (s *Service) Snapshot() *catalog.Snapshot {
	return s.holder.Load()
}

// Status reports on the live snapshot.
func (s *Service) Status() Status {
	snap := s.holder.Load()
	if snap == nil {
		return Status{}
	}
	return Status{
		Ready:    true,
		Version:  snap.Version,
		Records:  snap.Len(),
		Indexed:  snap.Indexed(),
		LoadedAt: snap.LoadedAt,
	}
}

// SearchParams is a validated search request.
type SearchParams struct {
	Query    string
	Type     models.TypeFilter
	Page     int
	PageSize int
}

// Search runs a query and returns enriched results. Without a snapshot the
// result is empty.
func (s *Service) Search(ctx context.Context, p SearchParams) (models.SearchResponse, error) {
	if strings.TrimSpace(p.Query) == "" {
		return models.SearchResponse{}, ErrEmptyQuery
	}
	if p.Type == "" {
		p.Type = models.FilterAll
	}
	empty := models.SearchResponse{Query: p.Query, Results: []models.MediaResult{}}

	snap := s.holder.Load()
	if snap == nil {
		return empty, nil
	}

	start := time.Now()
	key := cache.NewSearchKey(snap.Version, p.Query, p.Type, p.Page, p.PageSize)
	if s.cache != nil {
		if resp, ok := s.cache.Get(key); ok {
			metrics.RecordSearch("cache", time.Since(start))
			resp.Query = p.Query
			return resp, nil
		}
	}

	res, err := s.engine.Search(ctx, snap, search.Query{
		Text:     p.Query,
		Type:     p.Type,
		Page:     p.Page,
		PageSize: p.PageSize,
	})
	if err != nil {
		return empty, err
	}

	resp := empty
	resp.Results = s.present(ctx, snap, res.Hits, true)
	resp.Count = len(resp.Results)

	if s.cache != nil {
		s.cache.Put(key, resp)
	}
	return resp, nil
}

// Trending returns a sample of popular records.
func (s *Service) Trending(ctx context.Context, filter models.TypeFilter, limit int) []models.MediaResult {
	snap := s.holder.Load()
	if snap == nil {
		return []models.MediaResult{}
	}
	return s.present(ctx, snap, s.engine.Trending(snap, filter, limit), false)
}

// Autocomplete suggests titles containing prefix.
func (s *Service) Autocomplete(prefix string) []models.Suggestion {
	out := s.engine.Autocomplete(s.holder.Load(), prefix)
	if out == nil {
		return []models.Suggestion{}
	}
	return out
}

// Preview looks up a song preview.
func (s *Service) Preview(ctx context.Context, title, artist string) models.PreviewResponse {
	var store *catalog.Store
	if snap := s.holder.Load(); snap != nil {
		store = snap.Catalog
	}
	return models.PreviewResponse{URL: s.enricher.Preview(ctx, store, title, artist)}
}

func (s *Service) present(ctx context.Context, snap *catalog.Snapshot, hits []search.Hit, scored bool) []models.MediaResult {
	records := make([]models.CatalogRecord, len(hits))
	for i := range hits {
		records[i] = hits[i].Record
	}
	if s.enricher != nil && len(records) > 0 {
		records = s.enricher.Enrich(ctx, snap.Catalog, records)
	}

	out := make([]models.MediaResult, len(records))
	for i := range records {
		score := 0.0
		if scored {
			score = hits[i].Score
		}
		out[i] = models.NewMediaResult(&records[i], score)
	}
	return out
}
