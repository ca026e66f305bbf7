// Vibecatalog - Media Catalog Consolidation and Vibe Search
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vibecatalog

package enrich

import (
	"net/url"
	"strings"
)

// TrailerMatcher picks a trailer from search results.
type TrailerMatcher func(videos []Video) (Video, bool)

// DefaultTrailerChain prefers official trailers, then any trailer, then the
// top result.
var DefaultTrailerChain = []TrailerMatcher{
	TitleContainsAll("official", "trailer"),
	TitleContainsAll("trailer"),
	FirstResult,
}

// TitleContainsAll matches the first video whose title contains every word,
// case-insensitively.
func TitleContainsAll(words ...string) TrailerMatcher {
	return func(videos []Video) (Video, bool) {
		for _, v := range videos {
			title := strings.ToLower(v.Title)
			ok := true
			for _, w := range words {
				if !strings.Contains(title, w) {
					ok = false
					break
				}
			}
			if ok {
				return v, true
			}
		}
		return Video{}, false
	}
}

// FirstResult matches the first video.
func FirstResult(videos []Video) (Video, bool) {
	if len(videos) == 0 {
		return Video{}, false
	}
	return videos[0], true
}

// PickTrailer runs chain in order and returns the first match.
func PickTrailer(videos []Video, chain []TrailerMatcher) (Video, bool) {
	for _, match := range chain {
		if v, ok := match(videos); ok {
			return v, true
		}
	}
	return Video{}, false
}

// TrailerQuery builds the search query for a movie trailer.
func TrailerQuery(title, year string) string {
	q := strings.TrimSpace(title) + " official trailer"
	if year = strings.TrimSpace(year); year != "" {
		q += " " + year
	}
	return q
}

// WatchURL returns the watch page of a video.
func WatchURL(id string) string {
	return "https://www.youtube.com/watch?v=" + url.QueryEscape(id)
}

// SearchLink returns a search results page for query. It is a fallback for
// display only and is never persisted.
func SearchLink(query string) string {
	return "https://www.youtube.com/results?search_query=" + url.QueryEscape(query)
}
