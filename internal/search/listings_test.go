// Vibecatalog - Media Catalog Consolidation and Vibe Search
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vibecatalog

package search

import (
	"fmt"
	"io"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/vibecatalog/internal/catalog"
	"github.com/tomtom215/vibecatalog/internal/models"
)

// popularityCatalog has movies with popularity 0..n-1 at even positions and
// music with the same popularities at odd positions.
func popularityCatalog(n int) *catalog.Snapshot {
	var records []models.CatalogRecord
	for i := 0; i < n; i++ {
		records = append(records,
			models.CatalogRecord{ID: fmt.Sprint("mv", i), Title: fmt.Sprint("Movie ", i), MediaType: models.MediaTypeMovie, Popularity: float64(i)},
			models.CatalogRecord{ID: fmt.Sprint("mu", i), Title: fmt.Sprint("Song ", i), MediaType: models.MediaTypeMusic, Popularity: float64(i)},
		)
	}
	return catalog.NewSnapshot(catalog.NewStore(records), nil, 1)
}

func TestTrending_SingleTypeFromTopPoolInPopularityOrder(t *testing.T) {
	snap := popularityCatalog(40)
	e := NewEngine(&fixedEmbedder{}, Config{TrendingPoolSize: 10, TrendingLimit: 6, Seed: 3}, zerolog.New(io.Discard))

	hits := e.Trending(snap, models.FilterMovie, 0)
	if len(hits) != 6 {
		t.Fatalf("expected 6 hits, got %d", len(hits))
	}
	for i, h := range hits {
		if h.Record.MediaType != models.MediaTypeMovie {
			t.Errorf("hit %d is %s", i, h.Record.MediaType)
		}
		if h.Record.Popularity < 30 {
			t.Errorf("hit %d (popularity %v) is outside the top-10 pool", i, h.Record.Popularity)
		}
		if i > 0 && h.Record.Popularity > hits[i-1].Record.Popularity {
			t.Errorf("not in popularity order at %d", i)
		}
	}
}

func TestTrending_AllPoolsBothTypes(t *testing.T) {
	snap := popularityCatalog(5)
	e := NewEngine(&fixedEmbedder{}, Config{Seed: 11}, zerolog.New(io.Discard))

	hits := e.Trending(snap, models.FilterAll, 100)
	if len(hits) != 10 {
		t.Fatalf("expected whole pool of 10, got %d", len(hits))
	}
	seen := make(map[int]bool)
	counts := make(map[models.MediaType]int)
	for _, h := range hits {
		if seen[h.Position] {
			t.Fatalf("position %d sampled twice", h.Position)
		}
		seen[h.Position] = true
		counts[h.Record.MediaType]++
	}
	if counts[models.MediaTypeMovie] != 5 || counts[models.MediaTypeMusic] != 5 {
		t.Errorf("unexpected type mix %v", counts)
	}

	if got := e.Trending(nil, models.FilterAll, 5); len(got) != 0 {
		t.Errorf("nil snapshot should yield nothing, got %d", len(got))
	}
}

func TestAutocomplete(t *testing.T) {
	snap := popularityCatalog(30)
	e := NewEngine(&fixedEmbedder{}, Config{}, zerolog.New(io.Discard))

	got := e.Autocomplete(snap, "  MOVIE 1")
	// Movie 1, Movie 10, Movie 11 in catalog order; capped at 3.
	if len(got) != 3 {
		t.Fatalf("expected 3 suggestions, got %v", got)
	}
	want := []string{"Movie 1", "Movie 10", "Movie 11"}
	for i, s := range got {
		if s.Title != want[i] || s.Type != models.MediaTypeMovie {
			t.Errorf("suggestion %d = %+v, want %s", i, s, want[i])
		}
	}

	mixed := e.Autocomplete(snap, "2")
	counts := make(map[models.MediaType]int)
	for _, s := range mixed {
		counts[s.Type]++
	}
	if counts[models.MediaTypeMovie] != 3 || counts[models.MediaTypeMusic] != 3 {
		t.Errorf("expected 3 per type, got %v", counts)
	}

	if got := e.Autocomplete(snap, " "); got != nil {
		t.Errorf("blank prefix should yield nothing, got %v", got)
	}
}

func TestAutocomplete_ScanCap(t *testing.T) {
	snap := popularityCatalog(30)
	e := NewEngine(&fixedEmbedder{}, Config{AutocompleteScan: 2, AutocompletePerType: 5}, zerolog.New(io.Discard))

	// The first two matches are Movie 0 and Song 0.
	got := e.Autocomplete(snap, "0")
	if len(got) != 2 || got[0].Title != "Movie 0" || got[1].Title != "Song 0" {
		t.Errorf("unexpected suggestions %v", got)
	}
}
