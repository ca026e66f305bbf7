// Vibecatalog - Media Catalog Consolidation and Vibe Search
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vibecatalog

package ingest

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/vibecatalog/internal/models"
)

// memReader serves rows from memory and records requested limits.
type memReader struct {
	files  map[string][]Row
	limits map[string]int
}

func (m *memReader) ReadRows(_ context.Context, path string, limit int) ([]Row, error) {
	if m.limits == nil {
		m.limits = make(map[string]int)
	}
	m.limits[path] = limit
	rows, ok := m.files[path]
	if !ok {
		return nil, errors.New("no such file")
	}
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

var (
	movieColumns = map[string]string{
		FieldTitle:       "title",
		FieldDescription: "overview",
		FieldGenre:       "genres",
		FieldReleaseDate: "release_date",
		FieldPopularity:  "popularity",
	}
	musicColumns = map[string]string{
		FieldTitle:        "track_name",
		FieldArtist:       "artists",
		FieldGenre:        "track_genre",
		FieldPopularity:   "popularity",
		FieldDanceability: "danceability",
		FieldEnergy:       "energy",
	}
)

func newTestPipeline(reader RowReader, policy MergePolicy) *Pipeline {
	return NewPipeline(reader, policy, 0, zerolog.New(io.Discard))
}

func TestConsolidate_FirstSeenWins(t *testing.T) {
	reader := &memReader{files: map[string][]Row{
		"a.csv": {{"title": "Dune", "release_date": "2021-10-22", "popularity": "60"}},
		"b.csv": {{"title": "dune", "release_date": "2021", "popularity": "85"}},
	}}
	sources := []Source{
		{Name: "a", Path: "a.csv", MediaType: models.MediaTypeMovie, Columns: movieColumns},
		{Name: "b", Path: "b.csv", MediaType: models.MediaTypeMovie, Columns: movieColumns},
	}

	store, stats, err := newTestPipeline(reader, MergeFirstSeen).Consolidate(context.Background(), sources)
	if err != nil {
		t.Fatalf("Consolidate() error = %v", err)
	}
	if store.Len() != 1 {
		t.Fatalf("expected 1 record, got %d", store.Len())
	}
	if got := store.At(0); got.Popularity != 60 || got.Title != "Dune" {
		t.Errorf("first-seen record should win, got %+v", got)
	}
	if stats.DuplicatesDropped != 1 {
		t.Errorf("DuplicatesDropped = %d, want 1", stats.DuplicatesDropped)
	}
}

func TestConsolidate_HighestPopularityPolicy(t *testing.T) {
	reader := &memReader{files: map[string][]Row{
		"a.csv": {
			{"title": "Dune", "release_date": "2021", "popularity": "60"},
			{"title": "Arrival", "release_date": "2016", "popularity": "40"},
		},
		"b.csv": {
			{"title": "dune", "release_date": "2021", "popularity": "85"},
			{"title": "ARRIVAL", "release_date": "2016", "popularity": "40"},
		},
	}}
	sources := []Source{
		{Path: "a.csv", MediaType: models.MediaTypeMovie, Columns: movieColumns},
		{Path: "b.csv", MediaType: models.MediaTypeMovie, Columns: movieColumns},
	}

	store, _, err := newTestPipeline(reader, MergeHighestPopularity).Consolidate(context.Background(), sources)
	if err != nil {
		t.Fatalf("Consolidate() error = %v", err)
	}
	if store.Len() != 2 {
		t.Fatalf("expected 2 records, got %d", store.Len())
	}
	if got := store.At(0); got.Title != "dune" || got.Popularity != 85 {
		t.Errorf("more popular duplicate should take slot 0, got %+v", got)
	}
	if got := store.At(1); got.Title != "Arrival" {
		t.Errorf("ties should keep the earlier record, got %q", got.Title)
	}
}

func TestConsolidate_SkipsUnreadableSourceAndDropsEmptyTitles(t *testing.T) {
	reader := &memReader{files: map[string][]Row{
		"music.csv": {
			{"track_name": "Blinding Lights", "artists": "The Weeknd", "track_genre": "pop", "popularity": "95", "danceability": "0.8", "energy": "0.9"},
			{"track_name": "", "artists": "Nobody", "popularity": "10"},
			{"track_name": "nan", "artists": "Nobody Else", "popularity": "10"},
		},
	}}
	sources := []Source{
		{Name: "broken", Path: "missing.csv", MediaType: models.MediaTypeMovie, Columns: movieColumns},
		{Name: "music", Path: "music.csv", MediaType: models.MediaTypeMusic, Columns: musicColumns},
	}

	store, stats, err := newTestPipeline(reader, MergeFirstSeen).Consolidate(context.Background(), sources)
	if err != nil {
		t.Fatalf("Consolidate() error = %v", err)
	}
	if store.Len() != 1 {
		t.Fatalf("expected 1 record, got %d", store.Len())
	}
	if !stats.Sources[0].Skipped || stats.Sources[1].Read != 3 {
		t.Errorf("unexpected source stats: %+v", stats.Sources)
	}
	if stats.EmptyTitleDropped != 2 {
		t.Errorf("EmptyTitleDropped = %d, want 2", stats.EmptyTitleDropped)
	}

	rec := store.At(0)
	if rec.YearOrArtist != "The Weeknd" || rec.MediaType != models.MediaTypeMusic {
		t.Errorf("unexpected music record: %+v", rec)
	}
	if rec.Description != "A danceable and energetic pop song by The Weeknd." {
		t.Errorf("Description = %q", rec.Description)
	}
}

func TestConsolidate_AppliesRowLimit(t *testing.T) {
	rows := make([]Row, 0, 20)
	for i := 0; i < 20; i++ {
		rows = append(rows, Row{"title": "Movie " + strings.Repeat("x", i+1), "release_date": "1999"})
	}
	reader := &memReader{files: map[string][]Row{"m.csv": rows, "n.csv": rows}}
	sources := []Source{
		{Path: "m.csv", MediaType: models.MediaTypeMovie, Columns: movieColumns, Limit: 5},
		{Path: "n.csv", MediaType: models.MediaTypeMovie, Columns: movieColumns},
	}

	p := NewPipeline(reader, MergeFirstSeen, 7, zerolog.New(io.Discard))
	store, _, err := p.Consolidate(context.Background(), sources)
	if err != nil {
		t.Fatalf("Consolidate() error = %v", err)
	}
	if reader.limits["m.csv"] != 5 || reader.limits["n.csv"] != 7 {
		t.Errorf("unexpected limits: %v", reader.limits)
	}
	// n.csv repeats m.csv's first five titles.
	if store.Len() != 7 {
		t.Errorf("expected 7 records after dedupe, got %d", store.Len())
	}
}

func TestConsolidate_DedupeKeysUniqueAndIDsStable(t *testing.T) {
	reader := &memReader{files: map[string][]Row{
		"a.csv": {
			{"title": "Heat", "release_date": "1995"},
			{"title": "Heat!", "release_date": "1995-12-15"},
			{"title": "Heat", "release_date": "1986"},
		},
	}}
	sources := []Source{{Path: "a.csv", MediaType: models.MediaTypeMovie, Columns: movieColumns}}

	first, _, _ := newTestPipeline(reader, MergeFirstSeen).Consolidate(context.Background(), sources)
	second, _, _ := newTestPipeline(reader, MergeFirstSeen).Consolidate(context.Background(), sources)

	seen := map[string]bool{}
	for i := 0; i < first.Len(); i++ {
		key := first.Peek(i).DedupeKey
		if seen[key] {
			t.Errorf("duplicate dedupe key %q", key)
		}
		seen[key] = true
		if first.Peek(i).ID != second.Peek(i).ID {
			t.Errorf("record ID at %d not stable across runs", i)
		}
	}
	if first.Len() != 2 {
		t.Errorf("expected 2 records, got %d", first.Len())
	}
}

func TestConsolidate_MissingColumnsUseDefaults(t *testing.T) {
	reader := &memReader{files: map[string][]Row{
		"a.csv": {{"title": "Solaris"}},
	}}
	cols := map[string]string{FieldTitle: "title", FieldGenre: "not_in_file"}
	sources := []Source{{Path: "a.csv", MediaType: models.MediaTypeMovie, Columns: cols}}

	store, _, err := newTestPipeline(reader, MergeFirstSeen).Consolidate(context.Background(), sources)
	if err != nil {
		t.Fatalf("Consolidate() error = %v", err)
	}
	rec := store.At(0)
	if rec.YearOrArtist != DefaultYear || rec.Genre != DefaultGenre ||
		rec.Description != DefaultMovieDescription || rec.Popularity != 0 {
		t.Errorf("defaults not applied: %+v", rec)
	}
}

func TestConsolidate_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := newTestPipeline(&memReader{}, MergeFirstSeen).Consolidate(ctx, []Source{{Path: "x"}})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestParseMergePolicy(t *testing.T) {
	if p, err := ParseMergePolicy(""); err != nil || p != MergeFirstSeen {
		t.Errorf("empty policy = %q, %v", p, err)
	}
	if p, err := ParseMergePolicy("highest-popularity"); err != nil || p != MergeHighestPopularity {
		t.Errorf("highest-popularity = %q, %v", p, err)
	}
	if _, err := ParseMergePolicy("newest"); err == nil {
		t.Error("expected error for unknown policy")
	}
}
