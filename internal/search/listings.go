// Vibecatalog - Media Catalog Consolidation and Vibe Search
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vibecatalog

package search

import (
	"cmp"
	"slices"
	"strings"

	"github.com/tomtom215/vibecatalog/internal/catalog"
	"github.com/tomtom215/vibecatalog/internal/models"
)

// Trending samples up to limit records from the most popular records of each
// type admitted by filter. A single type is returned in popularity order; the
// pooled list for FilterAll is shuffled.
func (e *Engine) Trending(snap *catalog.Snapshot, filter models.TypeFilter, limit int) []Hit {
	if limit <= 0 {
		limit = e.cfg.TrendingLimit
	}
	if snap.Len() == 0 {
		return nil
	}

	var pool []int
	for _, t := range []models.MediaType{models.MediaTypeMovie, models.MediaTypeMusic} {
		if filter.Matches(t) {
			pool = append(pool, topByPopularity(snap.Catalog, t, e.cfg.TrendingPoolSize)...)
		}
	}
	if len(pool) == 0 {
		return nil
	}

	picked := e.sample(pool, limit)
	if filter != models.FilterAll && filter != "" {
		slices.SortStableFunc(picked, func(a, b int) int {
			return cmp.Compare(snap.Catalog.Peek(b).Popularity, snap.Catalog.Peek(a).Popularity)
		})
	}

	hits := make([]Hit, len(picked))
	for i, pos := range picked {
		hits[i] = Hit{Position: pos, Record: snap.Catalog.At(pos)}
	}
	return hits
}

// topByPopularity returns the positions of the n most popular records of
// type t, most popular first, earliest position on ties.
func topByPopularity(store *catalog.Store, t models.MediaType, n int) []int {
	var positions []int
	for i := 0; i < store.Len(); i++ {
		if store.Peek(i).MediaType == t {
			positions = append(positions, i)
		}
	}
	slices.SortStableFunc(positions, func(a, b int) int {
		return cmp.Compare(store.Peek(b).Popularity, store.Peek(a).Popularity)
	})
	return positions[:min(n, len(positions))]
}

// sample returns min(k, len(pool)) distinct elements of pool in random order.
func (e *Engine) sample(pool []int, k int) []int {
	shuffled := slices.Clone(pool)
	e.rngMu.Lock()
	e.rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	e.rngMu.Unlock()
	return shuffled[:min(k, len(shuffled))]
}

// Autocomplete suggests titles containing prefix, case-insensitively. At most
// AutocompleteScan matches are considered, of which AutocompletePerType per
// media type are kept in catalog order.
func (e *Engine) Autocomplete(snap *catalog.Snapshot, prefix string) []models.Suggestion {
	needle := strings.ToLower(strings.TrimSpace(prefix))
	if needle == "" || snap.Len() == 0 {
		return nil
	}

	var matches []int
	for i := 0; i < snap.Len() && len(matches) < e.cfg.AutocompleteScan; i++ {
		if strings.Contains(strings.ToLower(snap.Catalog.Peek(i).Title), needle) {
			matches = append(matches, i)
		}
	}

	perType := make(map[models.MediaType]int)
	out := make([]models.Suggestion, 0, len(matches))
	for _, pos := range matches {
		rec := snap.Catalog.Peek(pos)
		if perType[rec.MediaType] >= e.cfg.AutocompletePerType {
			continue
		}
		perType[rec.MediaType]++
		out = append(out, models.Suggestion{
			Title:        rec.Title,
			Type:         rec.MediaType,
			YearOrArtist: rec.YearOrArtist,
		})
	}
	return out
}
