// Vibecatalog - Media Catalog Consolidation and Vibe Search
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vibecatalog

// Package config loads Vibecatalog configuration with koanf.
//
// Precedence (lowest to highest): struct defaults, an optional YAML file
// (CONFIG_PATH, ./config.yaml, /etc/vibecatalog/config.yaml), then
// environment variables. Source feeds are only configurable from YAML
// because they are a list of structured entries.
package config

import "time"

// Config is the root configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Sources   []SourceConfig  `koanf:"sources"`
	Ingest    IngestConfig    `koanf:"ingest"`
	Embedding EmbeddingConfig `koanf:"embedding"`
	Index     IndexConfig     `koanf:"index"`
	Search    SearchConfig    `koanf:"search"`
	Enrich    EnrichConfig    `koanf:"enrich"`
	TMDB      TMDBConfig      `koanf:"tmdb"`
	ITunes    ITunesConfig    `koanf:"itunes"`
	YouTube   YouTubeConfig   `koanf:"youtube"`
	Store     StoreConfig     `koanf:"store"`
	Reload    ReloadConfig    `koanf:"reload"`
	Security  SecurityConfig  `koanf:"security"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// SourceConfig describes one tabular source feed.
//
// Columns maps target field names (title, description, genre, release_date,
// year, artist, popularity, image_url, trailer_url, preview_url,
// danceability, energy) to the column names used by the file.
type SourceConfig struct {
	Name      string            `koanf:"name"`
	Path      string            `koanf:"path"`
	MediaType string            `koanf:"media_type"`
	Columns   map[string]string `koanf:"columns"`
	Limit     int               `koanf:"limit"`
}

// IngestConfig controls consolidation.
type IngestConfig struct {
	// MergePolicy decides which duplicate survives: first-seen or highest-popularity.
	MergePolicy string `koanf:"merge_policy"`
	// RowLimit caps rows read per source when the source sets no limit.
	RowLimit int `koanf:"row_limit"`
}

// EmbeddingConfig configures the embedding service client.
type EmbeddingConfig struct {
	URL          string        `koanf:"url"`
	Model        string        `koanf:"model"`
	Timeout      time.Duration `koanf:"timeout"`
	BuildWorkers int           `koanf:"build_workers"`
}

// IndexConfig configures the persisted embedding index.
type IndexConfig struct {
	Path string `koanf:"path"`
	// StalenessPolicy is reuse-stale or rebuild-on-mismatch.
	StalenessPolicy string `koanf:"staleness_policy"`
}

// SearchConfig holds retrieval limits.
type SearchConfig struct {
	CandidateLimit      int `koanf:"candidate_limit"`
	DefaultPageSize     int `koanf:"default_page_size"`
	MaxPageSize         int `koanf:"max_page_size"`
	TrendingPoolSize    int `koanf:"trending_pool_size"`
	TrendingLimit       int `koanf:"trending_limit"`
	AutocompleteScan    int `koanf:"autocomplete_scan"`
	AutocompletePerType int `koanf:"autocomplete_per_type"`
}

// EnrichConfig controls metadata lookups and the response cache.
type EnrichConfig struct {
	MaxConcurrent   int           `koanf:"max_concurrent"`
	ProviderTimeout time.Duration `koanf:"provider_timeout"`
	RateLimit       float64       `koanf:"rate_limit"`
	RateBurst       int           `koanf:"rate_burst"`
	CacheTTL        time.Duration `koanf:"cache_ttl"`
	CacheCapacity   int           `koanf:"cache_capacity"`
}

// TMDBConfig configures the poster provider.
type TMDBConfig struct {
	APIKey       string `koanf:"api_key"`
	BaseURL      string `koanf:"base_url"`
	ImageBaseURL string `koanf:"image_base_url"`
}

// ITunesConfig configures the artwork and preview provider.
type ITunesConfig struct {
	BaseURL string `koanf:"base_url"`
	Country string `koanf:"country"`
}

// YouTubeConfig configures the trailer provider.
type YouTubeConfig struct {
	APIKey     string `koanf:"api_key"`
	BaseURL    string `koanf:"base_url"`
	MaxResults int    `koanf:"max_results"`
}

// StoreConfig configures the badger store. An empty path runs in memory.
type StoreConfig struct {
	Path string `koanf:"path"`
}

// ReloadConfig controls catalog reloads. A zero interval disables periodic reloads.
type ReloadConfig struct {
	Interval time.Duration `koanf:"interval"`
	Timeout  time.Duration `koanf:"timeout"`
}

// SecurityConfig holds HTTP edge settings.
type SecurityConfig struct {
	CORSOrigins     []string      `koanf:"cors_origins"`
	RateLimitReqs   int           `koanf:"rate_limit_reqs"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
	AdminToken      string        `koanf:"admin_token"`
}

// LoggingConfig mirrors logging.Config.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}
