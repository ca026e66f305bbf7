// Vibecatalog - Media Catalog Consolidation and Vibe Search
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vibecatalog

package enrich

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/vibecatalog/internal/catalog"
	"github.com/tomtom215/vibecatalog/internal/models"
)

// Publisher announces metadata discovered by a lookup.
type Publisher interface {
	PublishDiscovered(ctx context.Context, title, yearOrArtist string, art models.Artwork) error
}

// Options wires an Orchestrator. Nil providers disable their lookups.
type Options struct {
	Posters  PosterProvider
	Artwork  ArtworkProvider
	Previews PreviewProvider
	Videos   VideoSearcher

	Chain         []TrailerMatcher
	MaxConcurrent int
	Timeout       time.Duration
	Guard         GuardSettings

	Publisher Publisher
	Logger    zerolog.Logger
}

// Orchestrator fans metadata lookups for a page of results out to the
// providers and writes what it finds back to the catalog.
type Orchestrator struct {
	posters  PosterProvider
	artwork  ArtworkProvider
	previews PreviewProvider
	videos   VideoSearcher

	posterGuard  *Guard
	artworkGuard *Guard
	previewGuard *Guard
	trailerGuard *Guard

	chain         []TrailerMatcher
	maxConcurrent int
	timeout       time.Duration
	publisher     Publisher
	logger        zerolog.Logger
}

// New creates an orchestrator.
//
//nolint:gocritic // Options carries a zerolog.Logger by value
func New(opts Options) *Orchestrator {
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 16
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	if len(opts.Chain) == 0 {
		opts.Chain = DefaultTrailerChain
	}
	logger := opts.Logger.With().Str("component", "enrich").Logger()

	return &Orchestrator{
		posters:       opts.Posters,
		artwork:       opts.Artwork,
		previews:      opts.Previews,
		videos:        opts.Videos,
		posterGuard:   NewGuard("tmdb-poster", opts.Guard, logger),
		artworkGuard:  NewGuard("itunes-artwork", opts.Guard, logger),
		previewGuard:  NewGuard("itunes-preview", opts.Guard, logger),
		trailerGuard:  NewGuard("youtube-trailer", opts.Guard, logger),
		chain:         opts.Chain,
		maxConcurrent: opts.MaxConcurrent,
		timeout:       opts.Timeout,
		publisher:     opts.Publisher,
		logger:        logger,
	}
}

// Enrich returns copies of records with missing images and movie trailers
// filled in where a provider knows them. Music previews are left alone.
//
// Discoveries are written back to store (which may be nil) and published.
// A trailer that had to fall back to a search link is shown but not kept.
func (o *Orchestrator) Enrich(ctx context.Context, store *catalog.Store, records []models.CatalogRecord) []models.CatalogRecord {
	out := make([]models.CatalogRecord, len(records))
	copy(out, records)
	found := make([]models.Artwork, len(records))

	var g errgroup.Group
	g.SetLimit(o.maxConcurrent)

	for i := range out {
		rec := &out[i]
		if rec.ImageURL == "" {
			switch rec.MediaType {
			case models.MediaTypeMovie:
				if o.posters != nil {
					g.Go(func() error {
						found[i].ImageURL = o.lookupPoster(ctx, rec.Title)
						return nil
					})
				}
			case models.MediaTypeMusic:
				if o.artwork != nil {
					g.Go(func() error {
						found[i].ImageURL = o.lookupArtwork(ctx, rec.Title, rec.YearOrArtist)
						return nil
					})
				}
			}
		}
		if rec.MediaType == models.MediaTypeMovie && rec.TrailerURL == "" {
			if o.videos == nil {
				rec.TrailerURL = SearchLink(TrailerQuery(rec.Title, rec.YearOrArtist))
				continue
			}
			g.Go(func() error {
				found[i].TrailerURL, rec.TrailerURL = o.lookupTrailer(ctx, rec.Title, rec.YearOrArtist)
				return nil
			})
		}
	}
	_ = g.Wait() // tasks swallow their errors

	for i := range out {
		if found[i].ImageURL != "" {
			out[i].ImageURL = found[i].ImageURL
		}
		if found[i].IsZero() {
			continue
		}
		o.writeBack(ctx, store, out[i].Title, out[i].YearOrArtist, found[i])
	}
	return out
}

// Preview looks up the audio preview for a song. It returns "" when none is
// known or the provider is unavailable.
func (o *Orchestrator) Preview(ctx context.Context, store *catalog.Store, title, artist string) string {
	if o.previews == nil || title == "" {
		return ""
	}
	lctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	preview, err := Call(lctx, o.previewGuard, func(ctx context.Context) (string, error) {
		return o.previews.Preview(ctx, title, artist)
	})
	if err != nil {
		o.logger.Debug().Err(err).Str("title", title).Msg("Preview lookup failed")
		return ""
	}
	if preview != "" {
		o.writeBack(ctx, store, title, artist, models.Artwork{PreviewURL: preview})
	}
	return preview
}

func (o *Orchestrator) lookupPoster(ctx context.Context, title string) string {
	lctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	poster, err := Call(lctx, o.posterGuard, func(ctx context.Context) (string, error) {
		return o.posters.Poster(ctx, title)
	})
	if err != nil {
		o.logger.Debug().Err(err).Str("title", title).Msg("Poster lookup failed")
		return ""
	}
	return poster
}

func (o *Orchestrator) lookupArtwork(ctx context.Context, title, artist string) string {
	lctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	art, err := Call(lctx, o.artworkGuard, func(ctx context.Context) (string, error) {
		return o.artwork.Artwork(ctx, title, artist)
	})
	if err != nil {
		o.logger.Debug().Err(err).Str("title", title).Msg("Artwork lookup failed")
		return ""
	}
	return art
}

// lookupTrailer returns the authoritative trailer URL (possibly empty) and
// the URL to display, which falls back to a search link when no candidate
// matched.
func (o *Orchestrator) lookupTrailer(ctx context.Context, title, year string) (found, display string) {
	query := TrailerQuery(title, year)
	lctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	videos, err := Call(lctx, o.trailerGuard, func(ctx context.Context) ([]Video, error) {
		return o.videos.SearchVideos(ctx, query)
	})
	if err != nil {
		o.logger.Debug().Err(err).Str("title", title).Msg("Trailer lookup failed")
		return "", ""
	}
	if v, ok := PickTrailer(videos, o.chain); ok {
		u := WatchURL(v.ID)
		return u, u
	}
	return "", SearchLink(query)
}

func (o *Orchestrator) writeBack(ctx context.Context, store *catalog.Store, title, yearOrArtist string, art models.Artwork) {
	if store != nil {
		store.WriteBack(title, yearOrArtist, art)
	}
	if o.publisher == nil {
		return
	}
	if err := o.publisher.PublishDiscovered(ctx, title, yearOrArtist, art); err != nil {
		o.logger.Warn().Err(err).Str("title", title).Msg("Failed to publish discovered metadata")
	}
}
