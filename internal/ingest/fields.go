// Vibecatalog - Media Catalog Consolidation and Vibe Search
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vibecatalog

package ingest

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// Target field names accepted in a source column map.
const (
	FieldTitle        = "title"
	FieldDescription  = "description"
	FieldGenre        = "genre"
	FieldReleaseDate  = "release_date"
	FieldYear         = "year"
	FieldArtist       = "artist"
	FieldPopularity   = "popularity"
	FieldImageURL     = "image_url"
	FieldTrailerURL   = "trailer_url"
	FieldPreviewURL   = "preview_url"
	FieldDanceability = "danceability"
	FieldEnergy       = "energy"
)

const (
	// DefaultGenre is used when no genre can be extracted.
	DefaultGenre = "Media"
	// DefaultYear is used when a movie has no parseable release year.
	DefaultYear = "2000"
	// DefaultMovieDescription replaces an absent overview.
	DefaultMovieDescription = "No description available."

	genreSeparator = " | "
)

var (
	yearPattern = regexp.MustCompile(`\b(\d{4})\b`)
	// Matches 'name': 'Drama' and "name": "Drama" inside list literals.
	genreNamePattern = regexp.MustCompile(`['"]name['"]\s*:\s*(?:'([^']*)'|"([^"]*)")`)
)

// isBlank treats empty strings and pandas-style missing markers as absent.
func isBlank(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "nan", "null", "none":
		return true
	}
	return false
}

// ParseGenres extracts genre names from a list of {name} objects (JSON or
// single-quoted literal), or a plain comma list. Names are joined with
// " | ". Empty or unparseable input yields DefaultGenre.
func ParseGenres(raw string) string {
	raw = strings.TrimSpace(raw)
	if isBlank(raw) {
		return DefaultGenre
	}

	var names []string
	if strings.HasPrefix(raw, "[") {
		names = structuredGenreNames(raw)
	} else {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				names = append(names, part)
			}
		}
	}

	if len(names) == 0 {
		return DefaultGenre
	}
	return strings.Join(names, genreSeparator)
}

func structuredGenreNames(raw string) []string {
	var objects []struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal([]byte(raw), &objects); err == nil {
		names := make([]string, 0, len(objects))
		for _, o := range objects {
			if n := strings.TrimSpace(o.Name); n != "" {
				names = append(names, n)
			}
		}
		return names
	}

	var names []string
	for _, m := range genreNamePattern.FindAllStringSubmatch(raw, -1) {
		n := m[1]
		if n == "" {
			n = m[2]
		}
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}
	return names
}

// ExtractYear returns the first 4-digit year in s, or DefaultYear.
func ExtractYear(s string) string {
	if m := yearPattern.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return DefaultYear
}

// ParsePopularity coerces s to a finite, non-negative number. Anything else
// becomes 0.
func ParsePopularity(s string) float64 {
	return parseNonNegative(s)
}

func parseNonNegative(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

// MusicDescription builds the sentence embedded for a track: audio-feature
// tags, genre and artist.
func MusicDescription(genre, artist string, danceability, energy float64) string {
	var tags []string
	if danceability > 0.6 {
		tags = append(tags, "danceable")
	}
	if energy > 0.7 {
		tags = append(tags, "energetic")
	}
	if len(tags) == 0 {
		tags = append(tags, "unique")
	}
	return "A " + strings.Join(tags, " and ") + " " + genre + " song by " + artist + "."
}

// MovieDescription returns the overview, or the default sentence when it is
// absent.
func MovieDescription(overview string) string {
	if isBlank(overview) {
		return DefaultMovieDescription
	}
	return strings.TrimSpace(overview)
}

// normalizeArtist turns "A;B" artist lists into "A, B".
func normalizeArtist(s string) string {
	if isBlank(s) {
		return ""
	}
	parts := strings.Split(s, ";")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return strings.Join(parts, ", ")
}

// urlOrEmpty keeps only absolute http(s) URLs.
func urlOrEmpty(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") {
		return s
	}
	return ""
}
