// Vibecatalog - Media Catalog Consolidation and Vibe Search
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vibecatalog

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/tomtom215/vibecatalog/internal/discovery"
	"github.com/tomtom215/vibecatalog/internal/logging"
	"github.com/tomtom215/vibecatalog/internal/models"
	"github.com/tomtom215/vibecatalog/internal/validation"
)

// Discovery is the service behind the handlers.
type Discovery interface {
	Search(ctx context.Context, p discovery.SearchParams) (models.SearchResponse, error)
	Trending(ctx context.Context, filter models.TypeFilter, limit int) []models.MediaResult
	Autocomplete(prefix string) []models.Suggestion
	Preview(ctx context.Context, title, artist string) models.PreviewResponse
	Reload(ctx context.Context) (discovery.ReloadReport, error)
	Status() discovery.Status
}

// HandlerConfig holds request defaults.
type HandlerConfig struct {
	DefaultPageSize int
	MaxPageSize     int
	TrendingLimit   int
	ReloadTimeout   time.Duration
}

// Handler contains dependencies for API handlers.
type Handler struct {
	svc       Discovery
	cfg       HandlerConfig
	startTime time.Time
}

// NewHandler creates a handler.
func NewHandler(svc Discovery, cfg HandlerConfig) *Handler {
	if cfg.DefaultPageSize <= 0 {
		cfg.DefaultPageSize = 12
	}
	if cfg.TrendingLimit <= 0 {
		cfg.TrendingLimit = 15
	}
	if cfg.ReloadTimeout <= 0 {
		cfg.ReloadTimeout = 15 * time.Minute
	}
	return &Handler{svc: svc, cfg: cfg, startTime: time.Now()}
}

// Search handles GET /api/v1/search.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	req := validation.SearchRequest{
		Query:    r.URL.Query().Get("q"),
		Type:     getTypeParam(r),
		Page:     getIntParam(r, "page", 1),
		PageSize: getIntParam(r, "pageSize", h.cfg.DefaultPageSize),
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidation(w, r, apiErr)
		return
	}

	if h.cfg.MaxPageSize > 0 && req.PageSize > h.cfg.MaxPageSize {
		req.PageSize = h.cfg.MaxPageSize
	}

	filter, _ := models.ParseTypeFilter(req.Type)
	resp, err := h.svc.Search(r.Context(), discovery.SearchParams{
		Query:    req.Query,
		Type:     filter,
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	switch {
	case errors.Is(err, discovery.ErrEmptyQuery):
		respondError(w, r, http.StatusBadRequest, ErrCodeValidationFailed, "q must not be blank", nil)
		return
	case err != nil:
		respondError(w, r, http.StatusBadGateway, ErrCodeEmbeddingFailed, "Query embedding is unavailable", err)
		return
	}

	logging.Ctx(r.Context()).Debug().
		Str("query", sanitizeLogValue(req.Query)).
		Str("type", string(filter)).
		Int("page", req.Page).
		Int("count", resp.Count).
		Msg("Search served")
	respondJSON(w, http.StatusOK, resp)
}

// Trending handles GET /api/v1/trending.
func (h *Handler) Trending(w http.ResponseWriter, r *http.Request) {
	req := validation.TrendingRequest{
		Type:  getTypeParam(r),
		Limit: getIntParam(r, "limit", h.cfg.TrendingLimit),
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidation(w, r, apiErr)
		return
	}

	filter, _ := models.ParseTypeFilter(req.Type)
	respondJSON(w, http.StatusOK, h.svc.Trending(r.Context(), filter, req.Limit))
}

// Autocomplete handles GET /api/v1/autocomplete.
func (h *Handler) Autocomplete(w http.ResponseWriter, r *http.Request) {
	req := validation.AutocompleteRequest{Query: r.URL.Query().Get("q")}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidation(w, r, apiErr)
		return
	}
	respondJSON(w, http.StatusOK, h.svc.Autocomplete(req.Query))
}

// Preview handles GET /api/v1/preview.
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := validation.PreviewRequest{Title: q.Get("title"), Artist: q.Get("artist")}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidation(w, r, apiErr)
		return
	}
	respondJSON(w, http.StatusOK, h.svc.Preview(r.Context(), req.Title, req.Artist))
}

// Reload handles POST /api/v1/admin/reload. It runs synchronously and
// detaches from the client so a dropped connection does not abort the build.
func (h *Handler) Reload(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), h.cfg.ReloadTimeout)
	defer cancel()

	report, err := h.svc.Reload(ctx)
	switch {
	case errors.Is(err, discovery.ErrReloadInProgress):
		respondError(w, r, http.StatusConflict, ErrCodeConflict, "A reload is already in progress", nil)
		return
	case err != nil:
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternalError, "Catalog reload failed; previous catalog kept", err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}
