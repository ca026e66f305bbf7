// Vibecatalog - Media Catalog Consolidation and Vibe Search
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vibecatalog

package main

import (
	"github.com/rs/zerolog"

	"github.com/tomtom215/vibecatalog/internal/config"
	"github.com/tomtom215/vibecatalog/internal/enrich"
	"github.com/tomtom215/vibecatalog/internal/logging"
)

// newEnricher wires the metadata providers. A provider whose API key is not
// configured is left nil, which disables its lookups.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func newEnricher(cfg *config.Config, publisher enrich.Publisher, logger zerolog.Logger) *enrich.Orchestrator {
	timeout := cfg.Enrich.ProviderTimeout
	opts := enrich.Options{
		MaxConcurrent: cfg.Enrich.MaxConcurrent,
		Timeout:       timeout,
		Guard: enrich.GuardSettings{
			Rate:  cfg.Enrich.RateLimit,
			Burst: cfg.Enrich.RateBurst,
		},
		Publisher: publisher,
		Logger:    logger,
	}

	if cfg.TMDB.APIKey != "" {
		opts.Posters = enrich.NewTMDBClient(cfg.TMDB.APIKey, cfg.TMDB.BaseURL, cfg.TMDB.ImageBaseURL, timeout)
	} else {
		logging.Warn().Msg("TMDB_API_KEY not set; movie posters disabled")
	}

	itunes := enrich.NewITunesClient(cfg.ITunes.BaseURL, cfg.ITunes.Country, timeout)
	opts.Artwork = itunes
	opts.Previews = itunes

	if cfg.YouTube.APIKey != "" {
		opts.Videos = enrich.NewYouTubeClient(cfg.YouTube.APIKey, cfg.YouTube.BaseURL, cfg.YouTube.MaxResults, timeout)
	} else {
		logging.Warn().Msg("YOUTUBE_API_KEY not set; trailers fall back to search links")
	}

	return enrich.New(opts)
}
