// Vibecatalog - Media Catalog Consolidation and Vibe Search
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vibecatalog

/*
Package main is the entry point for the Vibecatalog server.

Vibecatalog consolidates movie and music feeds into one catalog, embeds each
record's description, and serves free-text "vibe" search over it with
lazily discovered posters, trailers and song previews.

# Application Architecture

	RootSupervisor ("vibecatalog")
	├── catalog-layer
	│   └── ReloadService (initial load, then every RELOAD_INTERVAL)
	├── events-layer
	│   └── EventBusService (watermill router: cache invalidation, metadata persistence)
	└── api-layer
	    └── HTTPServerService (chi router)

Component initialization order:

 1. Configuration: koanf v2 (defaults, config.yaml, environment)
 2. Logging: zerolog with JSON/console output
 3. Badger: embedding memo and discovered metadata
 4. DuckDB: CSV and Parquet source reader
 5. Embedding: Ollama client behind the badger memo, index resolver
 6. Enrichment: TMDB, iTunes and YouTube clients behind breakers and limiters
 7. Event bus, response cache and discovery service
 8. Supervisor tree and HTTP server

# Configuration

The most common settings:

	EMBEDDING_URL=http://localhost:11434
	EMBEDDING_MODEL=nomic-embed-text
	INDEX_STALENESS_POLICY=reuse-stale
	TMDB_API_KEY=...        (posters; disabled when empty)
	YOUTUBE_API_KEY=...     (trailers; search links only when empty)
	ADMIN_TOKEN=...     (guards POST /api/v1/admin/reload)
	RELOAD_INTERVAL=1h

Sources are a list and are configured in config.yaml.

# Signal Handling

SIGINT and SIGTERM cancel the root context; the supervisor stops the HTTP
server gracefully and the event bus and stores are closed on exit.
*/
package main
