// Vibecatalog - Media Catalog Consolidation and Vibe Search
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vibecatalog

// Package enrich fills in display metadata (posters, artwork, trailers,
// previews) for search results by querying external providers.
//
// Lookups are best effort. A failed, slow or rejected lookup leaves the field
// empty; it never fails the request that triggered it.
package enrich

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// PosterProvider finds a poster image for a movie title.
type PosterProvider interface {
	Poster(ctx context.Context, title string) (string, error)
}

// ArtworkProvider finds cover artwork for a song.
type ArtworkProvider interface {
	Artwork(ctx context.Context, title, artist string) (string, error)
}

// PreviewProvider finds an audio preview for a song.
type PreviewProvider interface {
	Preview(ctx context.Context, title, artist string) (string, error)
}

// Video is one video search result.
type Video struct {
	ID    string
	Title string
}

// VideoSearcher searches a video catalog.
type VideoSearcher interface {
	SearchVideos(ctx context.Context, query string) ([]Video, error)
}

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

func getJSON(ctx context.Context, client *http.Client, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// TMDBClient looks up movie posters through the TMDB search API.
type TMDBClient struct {
	apiKey     string
	baseURL    string
	imageBase  string
	httpClient *http.Client
}

// NewTMDBClient creates a TMDB client.
func NewTMDBClient(apiKey, baseURL, imageBaseURL string, timeout time.Duration) *TMDBClient {
	return &TMDBClient{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		imageBase:  strings.TrimRight(imageBaseURL, "/"),
		httpClient: newHTTPClient(timeout),
	}
}

type tmdbSearchResponse struct {
	Results []struct {
		PosterPath string `json:"poster_path"`
	} `json:"results"`
}

// Poster returns the poster URL of the first search result, or "" when
// there is none.
func (c *TMDBClient) Poster(ctx context.Context, title string) (string, error) {
	params := url.Values{}
	params.Set("api_key", c.apiKey)
	params.Set("query", title)

	var result tmdbSearchResponse
	if err := getJSON(ctx, c.httpClient, c.baseURL+"/search/movie?"+params.Encode(), &result); err != nil {
		return "", fmt.Errorf("tmdb search: %w", err)
	}
	if len(result.Results) == 0 || result.Results[0].PosterPath == "" {
		return "", nil
	}
	return c.imageBase + result.Results[0].PosterPath, nil
}

// ITunesClient looks up song artwork and previews through the iTunes
// Search API.
type ITunesClient struct {
	baseURL    string
	country    string
	httpClient *http.Client
}

// NewITunesClient creates an iTunes Search client.
func NewITunesClient(baseURL, country string, timeout time.Duration) *ITunesClient {
	return &ITunesClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		country:    country,
		httpClient: newHTTPClient(timeout),
	}
}

type itunesTrack struct {
	ArtworkURL100 string `json:"artworkUrl100"`
	PreviewURL    string `json:"previewUrl"`
}

type itunesSearchResponse struct {
	ResultCount int           `json:"resultCount"`
	Results     []itunesTrack `json:"results"`
}

func (c *ITunesClient) lookup(ctx context.Context, title, artist string) (*itunesTrack, error) {
	params := url.Values{}
	params.Set("term", strings.TrimSpace(title+" "+artist))
	params.Set("entity", "song")
	params.Set("limit", "1")
	if c.country != "" {
		params.Set("country", c.country)
	}

	var result itunesSearchResponse
	if err := getJSON(ctx, c.httpClient, c.baseURL+"/search?"+params.Encode(), &result); err != nil {
		return nil, fmt.Errorf("itunes search: %w", err)
	}
	if len(result.Results) == 0 {
		return nil, nil
	}
	return &result.Results[0], nil
}

// Artwork returns high resolution cover art, or "" when there is none.
func (c *ITunesClient) Artwork(ctx context.Context, title, artist string) (string, error) {
	track, err := c.lookup(ctx, title, artist)
	if err != nil || track == nil {
		return "", err
	}
	return strings.Replace(track.ArtworkURL100, "100x100bb", "600x600bb", 1), nil
}

// Preview returns the audio preview URL, or "" when there is none.
func (c *ITunesClient) Preview(ctx context.Context, title, artist string) (string, error) {
	track, err := c.lookup(ctx, title, artist)
	if err != nil || track == nil {
		return "", err
	}
	return track.PreviewURL, nil
}

// YouTubeClient searches videos through the YouTube Data API.
type YouTubeClient struct {
	apiKey     string
	baseURL    string
	maxResults int
	httpClient *http.Client
}

// NewYouTubeClient creates a YouTube Data API client.
func NewYouTubeClient(apiKey, baseURL string, maxResults int, timeout time.Duration) *YouTubeClient {
	if maxResults <= 0 {
		maxResults = 5
	}
	return &YouTubeClient{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		maxResults: maxResults,
		httpClient: newHTTPClient(timeout),
	}
}

type youtubeSearchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Title string `json:"title"`
		} `json:"snippet"`
	} `json:"items"`
}

// SearchVideos returns matching videos in relevance order.
func (c *YouTubeClient) SearchVideos(ctx context.Context, query string) ([]Video, error) {
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("type", "video")
	params.Set("maxResults", fmt.Sprint(c.maxResults))
	params.Set("q", query)
	params.Set("key", c.apiKey)

	var result youtubeSearchResponse
	if err := getJSON(ctx, c.httpClient, c.baseURL+"/search?"+params.Encode(), &result); err != nil {
		return nil, fmt.Errorf("youtube search: %w", err)
	}

	videos := make([]Video, 0, len(result.Items))
	for _, item := range result.Items {
		if item.ID.VideoID == "" {
			continue
		}
		videos = append(videos, Video{ID: item.ID.VideoID, Title: item.Snippet.Title})
	}
	return videos, nil
}
