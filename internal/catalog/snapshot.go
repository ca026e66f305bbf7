// Vibecatalog - Media Catalog Consolidation and Vibe Search
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vibecatalog

package catalog

import (
	"sync/atomic"
	"time"
)

// Snapshot pairs a catalog with the embedding vector aligned to each
// position. Vectors[i] belongs to catalog position i; a nil entry means the
// position has no vector and is excluded from similarity search.
type Snapshot struct {
	Catalog  *Store
	Vectors  [][]float32
	Version  uint64
	LoadedAt time.Time
}

// NewSnapshot builds a snapshot, padding or truncating vectors so that there
// is exactly one slot per catalog position.
func NewSnapshot(store *Store, vectors [][]float32, version uint64) *Snapshot {
	n := store.Len()
	aligned := make([][]float32, n)
	copy(aligned, vectors)
	return &Snapshot{
		Catalog:  store,
		Vectors:  aligned,
		Version:  version,
		LoadedAt: time.Now(),
	}
}

// Len returns the catalog length.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return s.Catalog.Len()
}

// Vector returns the vector aligned to position i, or nil.
func (s *Snapshot) Vector(i int) []float32 {
	if i < 0 || i >= len(s.Vectors) {
		return nil
	}
	return s.Vectors[i]
}

// Indexed returns the number of positions with a vector.
func (s *Snapshot) Indexed() int {
	n := 0
	for _, v := range s.Vectors {
		if v != nil {
			n++
		}
	}
	return n
}

// Holder publishes the current snapshot. Readers take one snapshot per
// request and never see a catalog paired with another catalog's vectors.
type Holder struct {
	current atomic.Pointer[Snapshot]
	version atomic.Uint64
}

// Load returns the current snapshot, or nil before the first publish.
func (h *Holder) Load() *Snapshot {
	return h.current.Load()
}

// NextVersion reserves the version number for the next snapshot.
func (h *Holder) NextVersion() uint64 {
	return h.version.Add(1)
}

// Publish swaps in snap and returns the snapshot it replaced.
func (h *Holder) Publish(snap *Snapshot) *Snapshot {
	return h.current.Swap(snap)
}
