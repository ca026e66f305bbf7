// Vibecatalog - Media Catalog Consolidation and Vibe Search
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vibecatalog

package embedding

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/fnv"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/vibecatalog/internal/catalog"
	"github.com/tomtom215/vibecatalog/internal/models"
)

// hashEmbedder derives a deterministic 8-dimensional vector from text.
type hashEmbedder struct {
	calls atomic.Int64
	fail  string
}

func (h *hashEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	h.calls.Add(1)
	if h.fail != "" && text == h.fail {
		return nil, errors.New("embedding service unavailable")
	}
	vec := make([]float32, 8)
	for i := range vec {
		f := fnv.New32a()
		fmt.Fprintf(f, "%d:%s", i, text)
		vec[i] = float32(f.Sum32()%1000) / 1000
	}
	return vec, nil
}

func makeStore(n int) *catalog.Store {
	records := make([]models.CatalogRecord, n)
	for i := range records {
		records[i] = models.CatalogRecord{
			ID:          fmt.Sprintf("id-%04d", i),
			Title:       fmt.Sprintf("Title %d", i),
			Description: fmt.Sprintf("description number %d", i),
			MediaType:   models.MediaTypeMovie,
		}
	}
	return catalog.NewStore(records)
}

func discard() zerolog.Logger { return zerolog.New(io.Discard) }

func TestBuild_OneCallPerRecordInOrder(t *testing.T) {
	store := makeStore(25)
	emb := &hashEmbedder{}

	ix, err := Build(context.Background(), emb, store, 4)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if emb.calls.Load() != 25 {
		t.Errorf("expected 25 embed calls, got %d", emb.calls.Load())
	}
	if ix.Len() != 25 || ix.Dimensions != 8 {
		t.Fatalf("unexpected index shape: len=%d dims=%d", ix.Len(), ix.Dimensions)
	}
	for i := 0; i < 25; i++ {
		want, _ := (&hashEmbedder{}).Embed(context.Background(), store.Peek(i).Description)
		if Cosine(ix.Vectors[i], want) < 0.9999 {
			t.Fatalf("row %d is not the embedding of record %d", i, i)
		}
		if ix.IDs[i] != store.Peek(i).ID {
			t.Fatalf("row %d ID = %s", i, ix.IDs[i])
		}
	}
}

func TestBuild_Deterministic(t *testing.T) {
	store := makeStore(40)
	a, err := Build(context.Background(), &hashEmbedder{}, store, 8)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Build(context.Background(), &hashEmbedder{}, store, 1)
	if err != nil {
		t.Fatal(err)
	}
	for i := range a.Vectors {
		for j := range a.Vectors[i] {
			if a.Vectors[i][j] != b.Vectors[i][j] {
				t.Fatalf("builds differ at row %d", i)
			}
		}
	}
}

func TestBuild_PropagatesEmbedError(t *testing.T) {
	store := makeStore(5)
	emb := &hashEmbedder{fail: "description number 3"}
	if _, err := Build(context.Background(), emb, store, 2); err == nil {
		t.Fatal("expected build error")
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	base := filepath.Join(t.TempDir(), "idx", "media_embeddings")
	store := makeStore(10)
	ix, err := Build(context.Background(), &hashEmbedder{}, store, 2)
	if err != nil {
		t.Fatal(err)
	}
	if err := ix.Save(base); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(base)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Len() != 10 || loaded.Dimensions != 8 || len(loaded.IDs) != 10 {
		t.Fatalf("unexpected loaded shape: len=%d dims=%d ids=%d", loaded.Len(), loaded.Dimensions, len(loaded.IDs))
	}
	for i := range ix.Vectors {
		for j := range ix.Vectors[i] {
			if loaded.Vectors[i][j] != ix.Vectors[i][j] {
				t.Fatalf("vector mismatch at %d,%d", i, j)
			}
		}
	}
	if !loaded.Matches(store) {
		t.Error("reloaded index should match its catalog")
	}
}

func TestLoad_MissingAndCorrupt(t *testing.T) {
	dir := t.TempDir()
	if _, err := Load(filepath.Join(dir, "absent")); !errors.Is(err, ErrIndexNotFound) {
		t.Errorf("expected ErrIndexNotFound, got %v", err)
	}

	bad := filepath.Join(dir, "bad")
	if err := os.WriteFile(bad+".vec", []byte("not an index file"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(bad); err == nil || errors.Is(err, ErrIndexNotFound) {
		t.Errorf("expected decode error, got %v", err)
	}

	headers := []struct {
		name       string
		rows, dims uint32
		payload    int
	}{
		{"oversized", 0xFFFFFFFF, 0xFFFFFFFF, 0},
		{"truncated", 10, 8, 9 * 8 * 4},
		{"trailing bytes", 2, 4, 3 * 4 * 4},
		{"rows without dimensions", 0xFFFFFFFF, 0, 0},
		{"empty rows with huge dimensions", 0, 0xFFFFFFFF, 4},
	}
	for _, tt := range headers {
		t.Run(tt.name, func(t *testing.T) {
			base := filepath.Join(dir, strings.ReplaceAll(tt.name, " ", "-"))
			data := make([]byte, vecHeaderSize+tt.payload)
			copy(data, vecFileMagic)
			binary.LittleEndian.PutUint32(data[4:8], vecFileVersion)
			binary.LittleEndian.PutUint32(data[8:12], tt.rows)
			binary.LittleEndian.PutUint32(data[12:16], tt.dims)
			if err := os.WriteFile(base+".vec", data, 0o600); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(base); err == nil || errors.Is(err, ErrIndexNotFound) {
				t.Errorf("expected header rejection, got %v", err)
			}
		})
	}
}

func TestResolve_CorruptIndexIsRebuilt(t *testing.T) {
	base := filepath.Join(t.TempDir(), "media")
	header := make([]byte, vecHeaderSize)
	copy(header, vecFileMagic)
	binary.LittleEndian.PutUint32(header[4:8], vecFileVersion)
	binary.LittleEndian.PutUint32(header[8:12], 0xFFFFFFFF)
	binary.LittleEndian.PutUint32(header[12:16], 0xFFFFFFFF)
	if err := os.WriteFile(base+".vec", header, 0o600); err != nil {
		t.Fatal(err)
	}

	emb := &hashEmbedder{}
	a, err := NewResolver(emb, base, ReuseStale, 2, discard()).Resolve(context.Background(), makeStore(3))
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if a.Aligned != 3 || emb.calls.Load() != 3 {
		t.Errorf("expected a rebuild of 3 rows, aligned=%d calls=%d", a.Aligned, emb.calls.Load())
	}
	if _, err := Load(base); err != nil {
		t.Errorf("rebuilt index not persisted: %v", err)
	}
}

func TestLoad_WithoutSidecarIsPositional(t *testing.T) {
	base := filepath.Join(t.TempDir(), "legacy")
	ix, _ := Build(context.Background(), &hashEmbedder{}, makeStore(4), 1)
	if err := ix.Save(base); err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(base + ".meta"); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(base)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.IDs != nil {
		t.Error("index without sidecar should carry no IDs")
	}
	if a := loaded.Align(makeStore(4)); a.ByID || a.Aligned != 4 {
		t.Errorf("expected positional alignment of 4, got %+v", a)
	}
}

func TestAlign_PositionalClipsToShorterIndex(t *testing.T) {
	store := makeStore(1000)
	ix := &Index{Dimensions: 2, Vectors: make([][]float32, 998)}
	for i := range ix.Vectors {
		ix.Vectors[i] = []float32{1, float32(i)}
	}

	a := ix.Align(store)
	if a.ByID || a.Aligned != 998 || len(a.Vectors) != 1000 || !a.Mismatch() {
		t.Fatalf("unexpected alignment: aligned=%d len=%d byID=%v", a.Aligned, len(a.Vectors), a.ByID)
	}
	if a.Vectors[997] == nil || a.Vectors[998] != nil || a.Vectors[999] != nil {
		t.Error("only the first 998 positions should have vectors")
	}
}

func TestAlign_ByIDAfterReorder(t *testing.T) {
	original := makeStore(5)
	ix, _ := Build(context.Background(), &hashEmbedder{}, original, 1)

	// New catalog: reversed, one record gone, one new record.
	var records []models.CatalogRecord
	for i := 4; i >= 1; i-- {
		records = append(records, *original.Peek(i))
	}
	records = append(records, models.CatalogRecord{ID: "new", Description: "fresh"})
	reordered := catalog.NewStore(records)

	a := ix.Align(reordered)
	if !a.ByID || a.Aligned != 4 || !a.Mismatch() {
		t.Fatalf("unexpected alignment: %+v", a)
	}
	for pos := 0; pos < 4; pos++ {
		row := 4 - pos
		if Cosine(a.Vectors[pos], ix.Vectors[row]) < 0.9999 {
			t.Errorf("position %d should carry row %d", pos, row)
		}
	}
	if a.Vectors[4] != nil {
		t.Error("new record should have no vector")
	}
	if ix.Matches(reordered) {
		t.Error("reordered catalog must not match")
	}
}

func TestResolve_Policies(t *testing.T) {
	base := filepath.Join(t.TempDir(), "media")
	emb := &hashEmbedder{}

	// Build for 998 records, then resolve against 1000.
	seed, _ := Build(context.Background(), emb, makeStore(998), 4)
	if err := seed.Save(base); err != nil {
		t.Fatal(err)
	}
	grown := makeStore(1000)

	emb.calls.Store(0)
	stale := NewResolver(emb, base, ReuseStale, 4, discard())
	a, err := stale.Resolve(context.Background(), grown)
	if err != nil {
		t.Fatalf("Resolve(reuse-stale) error = %v", err)
	}
	if emb.calls.Load() != 0 {
		t.Errorf("reuse-stale must not embed, made %d calls", emb.calls.Load())
	}
	if a.Aligned != 998 || a.Vectors[998] != nil || a.Vectors[999] != nil {
		t.Errorf("stale alignment = %d, want 998", a.Aligned)
	}

	rebuild := NewResolver(emb, base, RebuildOnMismatch, 4, discard())
	a, err = rebuild.Resolve(context.Background(), grown)
	if err != nil {
		t.Fatalf("Resolve(rebuild-on-mismatch) error = %v", err)
	}
	if emb.calls.Load() != 1000 || a.Aligned != 1000 {
		t.Errorf("rebuild: calls=%d aligned=%d", emb.calls.Load(), a.Aligned)
	}

	// The rebuilt index was persisted and now matches.
	emb.calls.Store(0)
	if a, err = stale.Resolve(context.Background(), grown); err != nil || a.Aligned != 1000 {
		t.Errorf("persisted rebuild not reused: aligned=%d err=%v", a.Aligned, err)
	}
	if emb.calls.Load() != 0 {
		t.Error("matching index should load without embedding")
	}
}

func TestResolve_BuildFailure(t *testing.T) {
	base := filepath.Join(t.TempDir(), "media")
	emb := &hashEmbedder{fail: "description number 0"}
	r := NewResolver(emb, base, ReuseStale, 1, discard())
	if _, err := r.Resolve(context.Background(), makeStore(3)); err == nil {
		t.Fatal("expected error when the index cannot be built")
	}
	if _, err := os.Stat(base + ".vec"); !errors.Is(err, os.ErrNotExist) {
		t.Error("failed build must not persist an index")
	}
}

func TestParseStalenessPolicy(t *testing.T) {
	if p, err := ParseStalenessPolicy(""); err != nil || p != ReuseStale {
		t.Errorf("default policy = %q, %v", p, err)
	}
	if _, err := ParseStalenessPolicy("sometimes"); err == nil {
		t.Error("expected error")
	}
}

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 1}, []float32{-1, -1}, -1},
		{"length mismatch", []float32{1, 2}, []float32{1}, 0},
		{"zero vector", []float32{0, 0}, []float32{1, 1}, 0},
		{"empty", nil, nil, 0},
	}
	for _, tt := range tests {
		if got := Cosine(tt.a, tt.b); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("%s: Cosine = %v, want %v", tt.name, got, tt.want)
		}
	}
}
