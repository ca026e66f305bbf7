// Vibecatalog - Media Catalog Consolidation and Vibe Search
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vibecatalog

// Package embedding builds, persists and aligns the vector index over
// catalog descriptions.
//
// Row i of an index holds the vector for catalog position i at build time.
// The persisted sidecar also records the ID of each row, so a later catalog
// can be aligned by ID; indexes without IDs are aligned positionally and
// clipped to the shorter of the two sequences.
package embedding

import (
	"context"
	"fmt"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/vibecatalog/internal/catalog"
)

// Index is an ordered collection of vectors.
type Index struct {
	Dimensions int
	IDs        []string
	Vectors    [][]float32
	BuiltAt    time.Time
}

// Len returns the number of rows.
func (ix *Index) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.Vectors)
}

// Build embeds every description of store in catalog order. Embedding calls
// are dispatched in order and run on up to workers goroutines; each writes
// its own row so the result order never depends on completion order.
func Build(ctx context.Context, embedder Embedder, store *catalog.Store, workers int) (*Index, error) {
	if workers < 1 {
		workers = 1
	}
	descriptions := store.Descriptions()
	vectors := make([][]float32, len(descriptions))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, text := range descriptions {
		g.Go(func() error {
			vec, err := embedder.Embed(gctx, text)
			if err != nil {
				return fmt.Errorf("embed record %d: %w", i, err)
			}
			vectors[i] = vec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	dims := 0
	for i, v := range vectors {
		if i == 0 {
			dims = len(v)
			continue
		}
		if len(v) != dims {
			return nil, fmt.Errorf("record %d: embedding has %d dimensions, want %d", i, len(v), dims)
		}
	}

	return &Index{
		Dimensions: dims,
		IDs:        store.IDs(),
		Vectors:    vectors,
		BuiltAt:    time.Now().UTC(),
	}, nil
}

// Alignment describes how an index was matched to a catalog.
type Alignment struct {
	Vectors  [][]float32
	ByID     bool
	Aligned  int
	Catalog  int
	IndexLen int
}

// Mismatch reports whether any catalog position lacks a vector or the index
// holds rows the catalog no longer has.
func (a Alignment) Mismatch() bool {
	return a.Aligned != a.Catalog || a.IndexLen != a.Catalog
}

// Align produces one vector slot per catalog position. With persisted IDs
// every record is matched to the row built for it; otherwise position i maps
// to row i for i < min(catalog, index).
func (ix *Index) Align(store *catalog.Store) Alignment {
	n := store.Len()
	a := Alignment{
		Vectors:  make([][]float32, n),
		Catalog:  n,
		IndexLen: ix.Len(),
	}
	if ix == nil {
		return a
	}

	if len(ix.IDs) == len(ix.Vectors) && len(ix.IDs) > 0 {
		a.ByID = true
		rows := make(map[string]int, len(ix.IDs))
		for row, id := range ix.IDs {
			rows[id] = row
		}
		for pos := 0; pos < n; pos++ {
			if row, ok := rows[store.Peek(pos).ID]; ok {
				a.Vectors[pos] = ix.Vectors[row]
				a.Aligned++
			}
		}
		return a
	}

	limit := min(n, len(ix.Vectors))
	copy(a.Vectors, ix.Vectors[:limit])
	a.Aligned = limit
	return a
}

// Matches reports whether the index was built for exactly this catalog
// sequence.
func (ix *Index) Matches(store *catalog.Store) bool {
	if ix.Len() != store.Len() {
		return false
	}
	if len(ix.IDs) != len(ix.Vectors) {
		// Positional index of the right length; nothing more to check.
		return true
	}
	for i, id := range ix.IDs {
		if store.Peek(i).ID != id {
			return false
		}
	}
	return true
}

// Cosine returns the cosine similarity of a and b, or 0 when either is
// empty, their lengths differ, or either has zero magnitude.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
