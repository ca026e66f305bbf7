// Vibecatalog - Media Catalog Consolidation and Vibe Search
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vibecatalog

package ingest

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/tomtom215/vibecatalog/internal/models"
)

// MergePolicy decides which of two records sharing a dedupe key survives.
type MergePolicy string

const (
	// MergeFirstSeen keeps the record from the earliest source.
	MergeFirstSeen MergePolicy = "first-seen"
	// MergeHighestPopularity keeps the most popular record. The winner takes
	// the position of the first occurrence; ties go to the earlier record.
	MergeHighestPopularity MergePolicy = "highest-popularity"
)

// ParseMergePolicy validates a policy name. Empty means first-seen.
func ParseMergePolicy(s string) (MergePolicy, error) {
	switch MergePolicy(s) {
	case "", MergeFirstSeen:
		return MergeFirstSeen, nil
	case MergeHighestPopularity:
		return MergeHighestPopularity, nil
	default:
		return "", fmt.Errorf("unknown merge policy %q", s)
	}
}

// recordNamespace scopes record IDs derived from dedupe keys.
var recordNamespace = uuid.MustParse("6f1c2a8e-5b7d-4c1e-9a3f-2d8e4b6c0a17")

// Normalize lowercases s and strips every non-alphanumeric rune.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// DedupeKey joins the normalized title and yearOrArtist. Movies and music
// share the key space; a film and a song only collide when title and
// year/artist normalize identically.
func DedupeKey(title, yearOrArtist string) string {
	return Normalize(title) + Normalize(yearOrArtist)
}

// RecordID derives the stable identifier for a dedupe key.
func RecordID(dedupeKey string) string {
	return uuid.NewSHA1(recordNamespace, []byte(dedupeKey)).String()
}

// merge drops duplicate dedupe keys from records, which must already be in
// source order, and returns the survivors plus the number dropped.
func merge(records []models.CatalogRecord, policy MergePolicy) ([]models.CatalogRecord, int) {
	slot := make(map[string]int, len(records))
	out := make([]models.CatalogRecord, 0, len(records))
	dropped := 0

	for i := range records {
		rec := records[i]
		pos, seen := slot[rec.DedupeKey]
		if !seen {
			slot[rec.DedupeKey] = len(out)
			out = append(out, rec)
			continue
		}
		dropped++
		if policy == MergeHighestPopularity && rec.Popularity > out[pos].Popularity {
			out[pos] = rec
		}
	}
	return out, dropped
}
