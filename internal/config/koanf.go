// Vibecatalog - Media Catalog Consolidation and Vibe Search
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vibecatalog

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/vibecatalog/config.yaml",
	"/etc/vibecatalog/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config with all default values.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			Timeout:         30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Sources: []SourceConfig{
			{
				Name:      "movies",
				Path:      "data/movies.csv",
				MediaType: "movie",
				Columns: map[string]string{
					"title":        "title",
					"description":  "overview",
					"genre":        "genres",
					"release_date": "release_date",
					"popularity":   "popularity",
				},
			},
			{
				Name:      "music",
				Path:      "data/music.csv",
				MediaType: "music",
				Columns: map[string]string{
					"title":        "track_name",
					"artist":       "artists",
					"genre":        "track_genre",
					"popularity":   "popularity",
					"danceability": "danceability",
					"energy":       "energy",
				},
			},
		},
		Ingest: IngestConfig{
			MergePolicy: "first-seen",
			RowLimit:    5000,
		},
		Embedding: EmbeddingConfig{
			URL:          "http://localhost:11434",
			Model:        "nomic-embed-text",
			Timeout:      30 * time.Second,
			BuildWorkers: 4,
		},
		Index: IndexConfig{
			Path:            "data/media_embeddings",
			StalenessPolicy: "reuse-stale",
		},
		Search: SearchConfig{
			CandidateLimit:      100,
			DefaultPageSize:     12,
			MaxPageSize:         100,
			TrendingPoolSize:    250,
			TrendingLimit:       15,
			AutocompleteScan:    50,
			AutocompletePerType: 3,
		},
		Enrich: EnrichConfig{
			MaxConcurrent:   16,
			ProviderTimeout: 5 * time.Second,
			RateLimit:       20,
			RateBurst:       20,
			CacheTTL:        5 * time.Minute,
			CacheCapacity:   512,
		},
		TMDB: TMDBConfig{
			BaseURL:      "https://api.themoviedb.org/3",
			ImageBaseURL: "https://image.tmdb.org/t/p/w500",
		},
		ITunes: ITunesConfig{
			BaseURL: "https://itunes.apple.com",
			Country: "US",
		},
		YouTube: YouTubeConfig{
			BaseURL:    "https://www.googleapis.com/youtube/v3",
			MaxResults: 5,
		},
		Store: StoreConfig{
			Path: "data/badger",
		},
		Reload: ReloadConfig{
			Interval: 0,
			Timeout:  30 * time.Minute,
		},
		Security: SecurityConfig{
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   120,
			RateLimitWindow: time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file and
// the environment, then validates it.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// EMBEDDING_MODEL -> embedding.model, TMDB_API_KEY -> tmdb.api_key
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths are string lists that may arrive comma-separated from env.
var sliceConfigPaths = []string{
	"security.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

var envMappings = map[string]string{
	"http_host":                "server.host",
	"http_port":                "server.port",
	"http_timeout":             "server.timeout",
	"shutdown_timeout":         "server.shutdown_timeout",
	"merge_policy":             "ingest.merge_policy",
	"ingest_row_limit":         "ingest.row_limit",
	"embedding_url":            "embedding.url",
	"embedding_model":          "embedding.model",
	"embedding_timeout":        "embedding.timeout",
	"embedding_build_workers":  "embedding.build_workers",
	"index_path":               "index.path",
	"index_staleness_policy":   "index.staleness_policy",
	"search_candidate_limit":   "search.candidate_limit",
	"search_default_page_size": "search.default_page_size",
	"search_max_page_size":     "search.max_page_size",
	"trending_pool_size":       "search.trending_pool_size",
	"trending_limit":           "search.trending_limit",
	"enrich_max_concurrent":    "enrich.max_concurrent",
	"enrich_provider_timeout":  "enrich.provider_timeout",
	"enrich_rate_limit":        "enrich.rate_limit",
	"enrich_rate_burst":        "enrich.rate_burst",
	"response_cache_ttl":       "enrich.cache_ttl",
	"response_cache_capacity":  "enrich.cache_capacity",
	"tmdb_api_key":             "tmdb.api_key",
	"tmdb_base_url":            "tmdb.base_url",
	"itunes_base_url":          "itunes.base_url",
	"itunes_country":           "itunes.country",
	"youtube_api_key":          "youtube.api_key",
	"youtube_base_url":         "youtube.base_url",
	"store_path":               "store.path",
	"reload_interval":          "reload.interval",
	"reload_timeout":           "reload.timeout",
	"cors_origins":             "security.cors_origins",
	"rate_limit_requests":      "security.rate_limit_reqs",
	"rate_limit_window":        "security.rate_limit_window",
	"admin_token":              "security.admin_token",
	"log_level":                "logging.level",
	"log_format":               "logging.format",
	"log_caller":               "logging.caller",
}

// envTransformFunc maps known environment variables to koanf paths.
// Unmapped variables are dropped so unrelated environment cannot leak in.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
