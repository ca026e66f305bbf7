// Vibecatalog - Media Catalog Consolidation and Vibe Search
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vibecatalog

package validation

// SearchRequest is GET /api/v1/search.
type SearchRequest struct {
	Query    string `query:"q" validate:"required,max=200"`
	Type     string `query:"type" validate:"omitempty,oneof=all movie music"`
	Page     int    `query:"page" validate:"gte=1,lte=1000"`
	PageSize int    `query:"pageSize" validate:"gte=1,lte=100"`
}

// TrendingRequest is GET /api/v1/trending.
type TrendingRequest struct {
	Type  string `query:"type" validate:"omitempty,oneof=all movie music"`
	Limit int    `query:"limit" validate:"gte=1,lte=100"`
}

// AutocompleteRequest is GET /api/v1/autocomplete.
type AutocompleteRequest struct {
	Query string `query:"q" validate:"max=100"`
}

// PreviewRequest is GET /api/v1/preview.
type PreviewRequest struct {
	Title  string `query:"title" validate:"required,max=300"`
	Artist string `query:"artist" validate:"max=300"`
}
