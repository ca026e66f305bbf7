// Vibecatalog - Media Catalog Consolidation and Vibe Search
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vibecatalog

// Package models defines the catalog record and API result types shared by
// the ingest, search, enrichment and API layers.
package models

import (
	"fmt"
	"math"
	"strings"
)

// MediaType identifies the kind of catalog record.
type MediaType string

const (
	MediaTypeMovie MediaType = "movie"
	MediaTypeMusic MediaType = "music"
)

// Valid reports whether t is a known media type.
func (t MediaType) Valid() bool {
	return t == MediaTypeMovie || t == MediaTypeMusic
}

// TypeFilter restricts queries to one media type or to all of them.
type TypeFilter string

const (
	FilterAll   TypeFilter = "all"
	FilterMovie TypeFilter = "movie"
	FilterMusic TypeFilter = "music"
)

// ParseTypeFilter parses a query parameter; empty means all.
func ParseTypeFilter(s string) (TypeFilter, error) {
	switch TypeFilter(strings.ToLower(strings.TrimSpace(s))) {
	case "", FilterAll:
		return FilterAll, nil
	case FilterMovie:
		return FilterMovie, nil
	case FilterMusic:
		return FilterMusic, nil
	default:
		return "", fmt.Errorf("unknown type filter %q", s)
	}
}

// Matches reports whether a record of type t passes the filter.
func (f TypeFilter) Matches(t MediaType) bool {
	return f == FilterAll || f == "" || string(f) == string(t)
}

// CatalogRecord is one consolidated catalog entry.
//
// YearOrArtist holds the release year for movies and the artist for music.
// DedupeKey is derived during consolidation and never leaves the process.
type CatalogRecord struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Genre        string    `json:"genre"`
	MediaType    MediaType `json:"type"`
	YearOrArtist string    `json:"yearOrArtist"`
	Popularity   float64   `json:"popularity"`
	ImageURL     string    `json:"imageUrl,omitempty"`
	TrailerURL   string    `json:"trailerUrl,omitempty"`
	PreviewURL   string    `json:"previewUrl,omitempty"`
	DedupeKey    string    `json:"-"`
}

// Artwork is the lazily discovered display metadata for a record.
type Artwork struct {
	ImageURL   string `json:"imageUrl,omitempty"`
	TrailerURL string `json:"trailerUrl,omitempty"`
	PreviewURL string `json:"previewUrl,omitempty"`
}

// IsZero reports whether no field has been discovered.
func (a Artwork) IsZero() bool {
	return a.ImageURL == "" && a.TrailerURL == "" && a.PreviewURL == ""
}

// Merge returns a with empty fields filled from other.
func (a Artwork) Merge(other Artwork) Artwork {
	if a.ImageURL == "" {
		a.ImageURL = other.ImageURL
	}
	if a.TrailerURL == "" {
		a.TrailerURL = other.TrailerURL
	}
	if a.PreviewURL == "" {
		a.PreviewURL = other.PreviewURL
	}
	return a
}

// Artwork returns the display metadata currently held by the record.
func (r *CatalogRecord) Artwork() Artwork {
	return Artwork{ImageURL: r.ImageURL, TrailerURL: r.TrailerURL, PreviewURL: r.PreviewURL}
}

// ApplyArtwork fills empty display fields from a.
func (r *CatalogRecord) ApplyArtwork(a Artwork) {
	merged := r.Artwork().Merge(a)
	r.ImageURL, r.TrailerURL, r.PreviewURL = merged.ImageURL, merged.TrailerURL, merged.PreviewURL
}

// WriteBackKey identifies a record for enrichment write-back. It is the
// lowercased title and yearOrArtist, so every record sharing both receives
// the discovered metadata.
func WriteBackKey(title, yearOrArtist string) string {
	return strings.ToLower(strings.TrimSpace(title)) + "\x1f" + strings.ToLower(strings.TrimSpace(yearOrArtist))
}

// MediaResult is one search, trending or autocomplete result as returned by
// the API.
type MediaResult struct {
	Title        string    `json:"title"`
	Type         MediaType `json:"type"`
	Description  string    `json:"description"`
	Genre        string    `json:"genre"`
	YearOrArtist string    `json:"yearOrArtist"`
	Popularity   int       `json:"popularity"`
	Score        float64   `json:"score"`
	ImageURL     string    `json:"imageUrl"`
	TrailerURL   string    `json:"trailerUrl,omitempty"`
	PreviewURL   string    `json:"previewUrl,omitempty"`
}

// NewMediaResult converts a record and its similarity score to the API shape.
// Popularity is truncated to an integer and the score rounded to 2 decimals.
func NewMediaResult(r *CatalogRecord, score float64) MediaResult {
	result := MediaResult{
		Title:        r.Title,
		Type:         r.MediaType,
		Description:  r.Description,
		Genre:        r.Genre,
		YearOrArtist: r.YearOrArtist,
		Popularity:   int(r.Popularity),
		Score:        math.Round(score*100) / 100,
		ImageURL:     r.ImageURL,
	}
	if r.MediaType == MediaTypeMusic {
		result.PreviewURL = r.PreviewURL
	} else {
		result.TrailerURL = r.TrailerURL
	}
	return result
}

// SearchResponse is the payload of the search endpoint.
type SearchResponse struct {
	Query   string        `json:"query"`
	Count   int           `json:"count"`
	Results []MediaResult `json:"results"`
}

// Suggestion is one autocomplete entry.
type Suggestion struct {
	Title        string    `json:"title"`
	Type         MediaType `json:"type"`
	YearOrArtist string    `json:"yearOrArtist"`
}

// PreviewResponse is the payload of the preview endpoint.
type PreviewResponse struct {
	URL string `json:"url,omitempty"`
}
