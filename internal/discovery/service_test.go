// Vibecatalog - Media Catalog Consolidation and Vibe Search
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vibecatalog

package discovery

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/vibecatalog/internal/cache"
	"github.com/tomtom215/vibecatalog/internal/catalog"
	"github.com/tomtom215/vibecatalog/internal/embedding"
	"github.com/tomtom215/vibecatalog/internal/events"
	"github.com/tomtom215/vibecatalog/internal/ingest"
	"github.com/tomtom215/vibecatalog/internal/models"
	"github.com/tomtom215/vibecatalog/internal/search"
)

type fakeConsolidator struct {
	mu      sync.Mutex
	records []models.CatalogRecord
	err     error
	entered chan struct{}
	block   chan struct{}
}

func (f *fakeConsolidator) set(records []models.CatalogRecord, err error) {
	f.mu.Lock()
	f.records, f.err = records, err
	f.mu.Unlock()
}

func (f *fakeConsolidator) Consolidate(ctx context.Context, _ []ingest.Source) (*catalog.Store, ingest.Stats, error) {
	if f.block != nil {
		f.entered <- struct{}{}
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, ingest.Stats{}, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, ingest.Stats{}, f.err
	}
	return catalog.NewStore(f.records), ingest.Stats{Records: len(f.records)}, nil
}

// unitResolver gives every record the same vector except for the ones named
// in far, which point the other way.
type unitResolver struct {
	err error
	far map[string]bool
}

func (r *unitResolver) Resolve(_ context.Context, store *catalog.Store) (embedding.Alignment, error) {
	if r.err != nil {
		return embedding.Alignment{}, r.err
	}
	vecs := make([][]float32, store.Len())
	for i := range vecs {
		if r.far[store.Peek(i).ID] {
			vecs[i] = []float32{-1, 0}
		} else {
			vecs[i] = []float32{1, 0}
		}
	}
	return embedding.Alignment{Vectors: vecs, Aligned: len(vecs), Catalog: len(vecs), IndexLen: len(vecs)}, nil
}

type queryEmbedder struct{ calls atomic.Int32 }

func (q *queryEmbedder) Embed(context.Context, string) ([]float32, error) {
	q.calls.Add(1)
	return []float32{1, 0}, nil
}

type fakeEnricher struct {
	calls   atomic.Int32
	preview string
}

func (f *fakeEnricher) Enrich(_ context.Context, _ *catalog.Store, records []models.CatalogRecord) []models.CatalogRecord {
	f.calls.Add(1)
	out := make([]models.CatalogRecord, len(records))
	for i, r := range records {
		r.ImageURL = "https://img.example/" + r.ID
		out[i] = r
	}
	return out
}

func (f *fakeEnricher) Preview(_ context.Context, store *catalog.Store, title, artist string) string {
	if store != nil {
		store.WriteBack(title, artist, models.Artwork{PreviewURL: f.preview})
	}
	return f.preview
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.CatalogReloaded
}

func (p *recordingPublisher) PublishReloaded(_ context.Context, ev events.CatalogReloaded) error {
	p.mu.Lock()
	p.events = append(p.events, ev)
	p.mu.Unlock()
	return nil
}

type mapArtwork map[string]models.Artwork

func (m mapArtwork) LoadArtwork(context.Context) (map[string]models.Artwork, error) {
	return m, nil
}

func sampleRecords() []models.CatalogRecord {
	return []models.CatalogRecord{
		{ID: "m1", Title: "Heat", MediaType: models.MediaTypeMovie, YearOrArtist: "1995", Popularity: 40, Description: "crime"},
		{ID: "m2", Title: "Drive", MediaType: models.MediaTypeMovie, YearOrArtist: "2011", Popularity: 55, Description: "neon"},
		{ID: "s1", Title: "Midnight City", MediaType: models.MediaTypeMusic, YearOrArtist: "M83", Popularity: 80, Description: "synth"},
		{ID: "s2", Title: "Nightcall", MediaType: models.MediaTypeMusic, YearOrArtist: "Kavinsky", Popularity: 70, Description: "synth"},
	}
}

type fixture struct {
	svc       *Service
	cons      *fakeConsolidator
	resolver  *unitResolver
	embedder  *queryEmbedder
	enricher  *fakeEnricher
	publisher *recordingPublisher
	cache     *cache.SearchCache
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		cons:      &fakeConsolidator{records: sampleRecords()},
		resolver:  &unitResolver{far: map[string]bool{}},
		embedder:  &queryEmbedder{},
		enricher:  &fakeEnricher{preview: "https://audio.example/p.m4a"},
		publisher: &recordingPublisher{},
		cache:     cache.NewSearchCache(32, time.Minute),
	}
	logger := zerolog.New(io.Discard)
	f.svc = NewService(Deps{
		Consolidator: f.cons,
		Resolver:     f.resolver,
		Artwork:      mapArtwork{models.WriteBackKey("Heat", "1995"): {TrailerURL: "https://www.youtube.com/watch?v=heat"}},
		Engine:       search.NewEngine(f.embedder, search.Config{Seed: 3}, logger),
		Enricher:     f.enricher,
		Cache:        f.cache,
		Publisher:    f.publisher,
		Logger:       logger,
	})
	return f
}

func TestService_BeforeFirstReload(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if f.svc.Status().Ready {
		t.Error("service reports ready without a snapshot")
	}
	resp, err := f.svc.Search(ctx, SearchParams{Query: "synth", Page: 1, PageSize: 12})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Count != 0 || resp.Results == nil {
		t.Errorf("expected empty non-nil results, got %+v", resp)
	}
	if got := f.svc.Trending(ctx, models.FilterAll, 5); len(got) != 0 || got == nil {
		t.Errorf("Trending = %v", got)
	}
	if got := f.svc.Autocomplete("hea"); len(got) != 0 || got == nil {
		t.Errorf("Autocomplete = %v", got)
	}
	if got := f.svc.Preview(ctx, "Midnight City", "M83"); got.URL == "" {
		t.Error("preview should not need a snapshot")
	}
}

func TestService_ReloadPublishesSnapshot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	report, err := f.svc.Reload(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if report.Version != 1 || report.Records != 4 || report.Indexed != 4 || report.Stale {
		t.Errorf("unexpected report %+v", report)
	}

	st := f.svc.Status()
	if !st.Ready || st.Version != 1 || st.Records != 4 {
		t.Errorf("unexpected status %+v", st)
	}
	if len(f.publisher.events) != 1 || f.publisher.events[0].Version != 1 {
		t.Errorf("expected one reload event, got %+v", f.publisher.events)
	}

	// Persisted discoveries are restored into the new catalog.
	heat := f.svc.Snapshot().Catalog.At(0)
	if heat.TrailerURL == "" {
		t.Error("restored trailer not applied")
	}
}

func TestService_FailedReloadKeepsPreviousSnapshot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if _, err := f.svc.Reload(ctx); err != nil {
		t.Fatal(err)
	}
	before := f.svc.Snapshot()

	f.cons.set(nil, nil)
	if _, err := f.svc.Reload(ctx); !errors.Is(err, ErrEmptyCatalog) {
		t.Errorf("expected ErrEmptyCatalog, got %v", err)
	}

	f.cons.set(sampleRecords(), nil)
	f.resolver.err = errors.New("ollama down")
	if _, err := f.svc.Reload(ctx); err == nil {
		t.Error("expected resolve failure")
	}

	if f.svc.Snapshot() != before {
		t.Error("failed reload replaced the snapshot")
	}
	if len(f.publisher.events) != 1 {
		t.Errorf("failed reloads must not publish events, got %d", len(f.publisher.events))
	}
}

func TestService_ConcurrentReloadIsRejected(t *testing.T) {
	f := newFixture(t)
	f.cons.entered = make(chan struct{}, 1)
	f.cons.block = make(chan struct{})

	done := make(chan error, 1)
	go func() {
		_, err := f.svc.Reload(context.Background())
		done <- err
	}()

	select {
	case <-f.cons.entered:
	case <-time.After(5 * time.Second):
		t.Fatal("first reload never started")
	}
	if _, err := f.svc.Reload(context.Background()); !errors.Is(err, ErrReloadInProgress) {
		t.Errorf("expected ErrReloadInProgress, got %v", err)
	}

	close(f.cons.block)
	if err := <-done; err != nil {
		t.Fatalf("first reload failed: %v", err)
	}
}

func TestService_SearchEnrichesAndCaches(t *testing.T) {
	f := newFixture(t)
	f.resolver.far["m1"] = true
	ctx := context.Background()
	if _, err := f.svc.Reload(ctx); err != nil {
		t.Fatal(err)
	}

	params := SearchParams{Query: "Neon Synth", Type: models.FilterAll, Page: 1, PageSize: 12}
	resp, err := f.svc.Search(ctx, params)
	if err != nil {
		t.Fatal(err)
	}
	if resp.Query != "Neon Synth" || resp.Count != 4 {
		t.Fatalf("unexpected response %+v", resp)
	}
	if resp.Results[3].Title != "Heat" {
		t.Errorf("opposite vector should rank last, got %q", resp.Results[3].Title)
	}
	if resp.Results[0].Score != 1 || resp.Results[0].ImageURL == "" {
		t.Errorf("unexpected first result %+v", resp.Results[0])
	}

	again, err := f.svc.Search(ctx, SearchParams{Query: "  Neon Synth ", Type: models.FilterAll, Page: 1, PageSize: 12})
	if err != nil {
		t.Fatal(err)
	}
	if f.embedder.calls.Load() != 1 || f.enricher.calls.Load() != 1 {
		t.Errorf("cached search recomputed: embeds %d enrich %d", f.embedder.calls.Load(), f.enricher.calls.Load())
	}
	if again.Query != "  Neon Synth " || again.Count != 4 {
		t.Errorf("cached response not echoed with caller query: %+v", again)
	}

	// The query is embedded as typed, so a different case is a new search.
	if _, err := f.svc.Search(ctx, SearchParams{Query: "neon synth", Type: models.FilterAll, Page: 1, PageSize: 12}); err != nil {
		t.Fatal(err)
	}
	if f.embedder.calls.Load() != 2 {
		t.Errorf("differently cased query served from cache: embeds %d", f.embedder.calls.Load())
	}

	// A new snapshot never serves the previous snapshot's pages.
	if _, err := f.svc.Reload(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.Search(ctx, params); err != nil {
		t.Fatal(err)
	}
	if f.embedder.calls.Load() != 3 {
		t.Errorf("expected recompute after reload, embeds %d", f.embedder.calls.Load())
	}
}

func TestService_SearchExactAndEmpty(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if _, err := f.svc.Reload(ctx); err != nil {
		t.Fatal(err)
	}

	resp, err := f.svc.Search(ctx, SearchParams{Query: "drive", Page: 1, PageSize: 12})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Count != 1 || resp.Results[0].Title != "Drive" || resp.Results[0].Score != 1 {
		t.Errorf("expected exact match, got %+v", resp)
	}
	if f.embedder.calls.Load() != 0 {
		t.Error("exact match should not embed the query")
	}

	if _, err := f.svc.Search(ctx, SearchParams{Query: "   "}); !errors.Is(err, ErrEmptyQuery) {
		t.Errorf("expected ErrEmptyQuery, got %v", err)
	}
}

func TestService_TrendingAutocompletePreview(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if _, err := f.svc.Reload(ctx); err != nil {
		t.Fatal(err)
	}

	music := f.svc.Trending(ctx, models.FilterMusic, 5)
	if len(music) != 2 || music[0].Title != "Midnight City" || music[1].Title != "Nightcall" {
		t.Errorf("unexpected music trending %+v", music)
	}
	for _, r := range music {
		if r.ImageURL == "" || r.Score != 0 {
			t.Errorf("trending result not enriched or scored: %+v", r)
		}
	}

	sugg := f.svc.Autocomplete("NIGHT")
	if len(sugg) != 2 || sugg[0].Title != "Midnight City" || sugg[1].Title != "Nightcall" {
		t.Errorf("Autocomplete = %+v", sugg)
	}

	if got := f.svc.Preview(ctx, "Nightcall", "Kavinsky"); got.URL != f.enricher.preview {
		t.Errorf("Preview = %+v", got)
	}
	if rec := f.svc.Snapshot().Catalog.At(3); rec.PreviewURL != f.enricher.preview {
		t.Errorf("preview not written back: %+v", rec)
	}
}
