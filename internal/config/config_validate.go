// Vibecatalog - Media Catalog Consolidation and Vibe Search
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vibecatalog

package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks every configuration section.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateSources(); err != nil {
		return err
	}
	if err := c.validateIngest(); err != nil {
		return err
	}
	if err := c.validateEmbedding(); err != nil {
		return err
	}
	if err := c.validateSearch(); err != nil {
		return err
	}
	if err := c.validateEnrich(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	return nil
}

func (c *Config) validateSources() error {
	if len(c.Sources) == 0 {
		return errors.New("at least one source must be configured")
	}
	for i, src := range c.Sources {
		if strings.TrimSpace(src.Path) == "" {
			return fmt.Errorf("sources[%d]: path is required", i)
		}
		if src.MediaType != "movie" && src.MediaType != "music" {
			return fmt.Errorf("sources[%d]: media_type must be movie or music, got %q", i, src.MediaType)
		}
		if src.Columns["title"] == "" {
			return fmt.Errorf("sources[%d]: columns.title is required", i)
		}
		if src.Limit < 0 {
			return fmt.Errorf("sources[%d]: limit must be non-negative", i)
		}
	}
	return nil
}

func (c *Config) validateIngest() error {
	switch c.Ingest.MergePolicy {
	case "first-seen", "highest-popularity":
	default:
		return fmt.Errorf("MERGE_POLICY must be first-seen or highest-popularity, got %q", c.Ingest.MergePolicy)
	}
	if c.Ingest.RowLimit < 1 {
		return fmt.Errorf("INGEST_ROW_LIMIT must be positive")
	}
	return nil
}

func (c *Config) validateEmbedding() error {
	if c.Embedding.URL == "" {
		return errors.New("EMBEDDING_URL is required")
	}
	if c.Embedding.Model == "" {
		return errors.New("EMBEDDING_MODEL is required")
	}
	if c.Embedding.BuildWorkers < 1 {
		return errors.New("EMBEDDING_BUILD_WORKERS must be at least 1")
	}
	if c.Index.Path == "" {
		return errors.New("INDEX_PATH is required")
	}
	switch c.Index.StalenessPolicy {
	case "reuse-stale", "rebuild-on-mismatch":
	default:
		return fmt.Errorf("INDEX_STALENESS_POLICY must be reuse-stale or rebuild-on-mismatch, got %q", c.Index.StalenessPolicy)
	}
	return nil
}

func (c *Config) validateSearch() error {
	s := c.Search
	if s.CandidateLimit < 1 {
		return errors.New("SEARCH_CANDIDATE_LIMIT must be positive")
	}
	if s.DefaultPageSize < 1 || s.DefaultPageSize > s.MaxPageSize {
		return fmt.Errorf("SEARCH_DEFAULT_PAGE_SIZE must be between 1 and %d", s.MaxPageSize)
	}
	if s.TrendingPoolSize < 1 || s.TrendingLimit < 1 {
		return errors.New("trending pool size and limit must be positive")
	}
	if s.AutocompleteScan < 1 || s.AutocompletePerType < 1 {
		return errors.New("autocomplete limits must be positive")
	}
	return nil
}

func (c *Config) validateEnrich() error {
	e := c.Enrich
	if e.MaxConcurrent < 1 {
		return errors.New("ENRICH_MAX_CONCURRENT must be at least 1")
	}
	if e.ProviderTimeout <= 0 {
		return errors.New("ENRICH_PROVIDER_TIMEOUT must be positive")
	}
	if e.RateLimit < 0 || e.RateBurst < 0 {
		return errors.New("enrichment rate limits must be non-negative")
	}
	if e.CacheCapacity < 1 {
		return errors.New("RESPONSE_CACHE_CAPACITY must be at least 1")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of trace, debug, info, warn, error; got %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	return nil
}
