// Vibecatalog - Media Catalog Consolidation and Vibe Search
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vibecatalog

package cache

import (
	"strings"
	"time"

	"github.com/tomtom215/vibecatalog/internal/metrics"
	"github.com/tomtom215/vibecatalog/internal/models"
)

// SearchKey identifies one page of one search against one snapshot.
type SearchKey struct {
	Version  uint64
	Query    string
	Type     models.TypeFilter
	Page     int
	PageSize int
}

// NewSearchKey trims the query so that requests differing only in
// surrounding space share an entry. Case is kept because the query is
// embedded as typed.
func NewSearchKey(version uint64, query string, filter models.TypeFilter, page, pageSize int) SearchKey {
	return SearchKey{
		Version:  version,
		Query:    strings.TrimSpace(query),
		Type:     filter,
		Page:     page,
		PageSize: pageSize,
	}
}

// SearchCache holds fully enriched search responses.
type SearchCache struct {
	lru *LRU[SearchKey, models.SearchResponse]
}

// NewSearchCache creates a response cache.
func NewSearchCache(capacity int, ttl time.Duration) *SearchCache {
	return &SearchCache{lru: NewLRU[SearchKey, models.SearchResponse](capacity, ttl)}
}

// Get returns a cached response.
func (c *SearchCache) Get(key SearchKey) (models.SearchResponse, bool) {
	resp, ok := c.lru.Get(key)
	if ok {
		metrics.ResponseCacheResults.WithLabelValues("hit").Inc()
	} else {
		metrics.ResponseCacheResults.WithLabelValues("miss").Inc()
	}
	return resp, ok
}

// Put stores a response.
func (c *SearchCache) Put(key SearchKey, resp models.SearchResponse) {
	c.lru.Add(key, resp)
}

// Clear drops every cached response.
func (c *SearchCache) Clear() {
	c.lru.Clear()
}

// Len returns the number of cached responses.
func (c *SearchCache) Len() int {
	return c.lru.Len()
}
