// Vibecatalog - Media Catalog Consolidation and Vibe Search
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vibecatalog

package main

import (
	"github.com/rs/zerolog"

	"github.com/tomtom215/vibecatalog/internal/config"
	"github.com/tomtom215/vibecatalog/internal/embedding"
)

// Embedders separates description embedding from query embedding. Only the
// index builder goes through the persistent memo; user queries are
// unbounded and would grow it without limit.
type Embedders struct {
	Index embedding.Embedder
	Query embedding.Embedder
}

//nolint:gocritic // zerolog.Logger is designed to be passed by value
func newEmbedders(cfg config.EmbeddingConfig, memo embedding.VectorMemo, logger zerolog.Logger) Embedders {
	ollama := embedding.NewOllamaClient(cfg.URL, cfg.Model, cfg.Timeout)
	return Embedders{
		Index: embedding.NewMemoEmbedder(ollama, memo, cfg.Model, logger),
		Query: ollama,
	}
}
