// Vibecatalog - Media Catalog Consolidation and Vibe Search
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vibecatalog

package embedding

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/tomtom215/vibecatalog/internal/metrics"
	"github.com/tomtom215/vibecatalog/internal/store"
)

// VectorMemo persists embeddings between builds.
type VectorMemo interface {
	GetVector(ctx context.Context, key string) ([]float32, bool, error)
	PutVector(ctx context.Context, key string, vec []float32) error
}

// MemoEmbedder serves repeated descriptions from a VectorMemo so a rebuild
// after a reload only embeds new text. Memo failures fall through to the
// wrapped embedder.
type MemoEmbedder struct {
	next   Embedder
	memo   VectorMemo
	model  string
	logger zerolog.Logger
}

// NewMemoEmbedder wraps next. model scopes memo keys so switching models
// never serves vectors from another model.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewMemoEmbedder(next Embedder, memo VectorMemo, model string, logger zerolog.Logger) *MemoEmbedder {
	return &MemoEmbedder{next: next, memo: memo, model: model, logger: logger}
}

// Embed returns the memoized vector for text, computing it on a miss.
func (m *MemoEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	key := store.VectorKey(m.model, text)

	vec, ok, err := m.memo.GetVector(ctx, key)
	if err != nil {
		m.logger.Debug().Err(err).Msg("Embedding memo read failed")
	}
	if ok {
		metrics.EmbeddingCalls.WithLabelValues("memo_hit").Inc()
		return vec, nil
	}

	vec, err = m.next.Embed(ctx, text)
	if err != nil {
		metrics.EmbeddingCalls.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.EmbeddingCalls.WithLabelValues("computed").Inc()

	if err := m.memo.PutVector(ctx, key, vec); err != nil {
		m.logger.Debug().Err(err).Msg("Embedding memo write failed")
	}
	return vec, nil
}
