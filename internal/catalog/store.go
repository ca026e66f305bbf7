// Vibecatalog - Media Catalog Consolidation and Vibe Search
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vibecatalog

// Package catalog holds the consolidated, ordered record sequence and the
// snapshot that pairs it with its aligned embedding vectors.
//
// Records are immutable once a Store is built. The only mutation is the
// write-back of discovered display metadata, which lands in an overlay keyed
// by models.WriteBackKey and is merged into records on read. Writes are last
// writer wins and idempotent.
package catalog

import (
	"sync"

	"github.com/tomtom215/vibecatalog/internal/models"
)

// Store is an ordered, read-mostly catalog.
type Store struct {
	records []models.CatalogRecord
	byID    map[string]int

	mu      sync.RWMutex
	overlay map[string]models.Artwork
}

// NewStore wraps records in catalog order. The slice is owned by the store
// afterwards.
func NewStore(records []models.CatalogRecord) *Store {
	byID := make(map[string]int, len(records))
	for i := range records {
		if records[i].ID != "" {
			byID[records[i].ID] = i
		}
	}
	return &Store{
		records: records,
		byID:    byID,
		overlay: make(map[string]models.Artwork),
	}
}

// Len returns the number of records.
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return len(s.records)
}

// At returns a copy of the record at position i with any discovered
// metadata applied.
func (s *Store) At(i int) models.CatalogRecord {
	rec := s.records[i]
	s.mu.RLock()
	art, ok := s.overlay[models.WriteBackKey(rec.Title, rec.YearOrArtist)]
	s.mu.RUnlock()
	if ok {
		rec.ApplyArtwork(art)
	}
	return rec
}

// Peek returns a pointer to the stored record at position i without the
// overlay. Callers must not modify it.
func (s *Store) Peek(i int) *models.CatalogRecord {
	return &s.records[i]
}

// PositionOf returns the catalog position of the record with the given ID.
func (s *Store) PositionOf(id string) (int, bool) {
	pos, ok := s.byID[id]
	return pos, ok
}

// IDs returns record IDs in catalog order.
func (s *Store) IDs() []string {
	ids := make([]string, len(s.records))
	for i := range s.records {
		ids[i] = s.records[i].ID
	}
	return ids
}

// Descriptions returns record descriptions in catalog order.
func (s *Store) Descriptions() []string {
	out := make([]string, len(s.records))
	for i := range s.records {
		out[i] = s.records[i].Description
	}
	return out
}

// WriteBack records discovered metadata for every record sharing title and
// yearOrArtist. Empty fields in art never clear known values.
func (s *Store) WriteBack(title, yearOrArtist string, art models.Artwork) {
	if art.IsZero() {
		return
	}
	key := models.WriteBackKey(title, yearOrArtist)
	s.mu.Lock()
	s.overlay[key] = art.Merge(s.overlay[key])
	s.mu.Unlock()
}

// Hydrate preloads overlay entries, typically restored from persistent
// storage after a reload.
func (s *Store) Hydrate(entries map[string]models.Artwork) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, art := range entries {
		s.overlay[key] = art.Merge(s.overlay[key])
	}
}

// Discovered returns a copy of the overlay.
func (s *Store) Discovered() map[string]models.Artwork {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]models.Artwork, len(s.overlay))
	for k, v := range s.overlay {
		out[k] = v
	}
	return out
}
