// Vibecatalog - Media Catalog Consolidation and Vibe Search
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vibecatalog

package api

import (
	"net/http"
	"time"
)

// HealthLive handles liveness probe requests (Kubernetes-style).
// Returns 200 OK if the process is alive, regardless of dependencies.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	})
}

// HealthReady handles readiness probe requests (Kubernetes-style).
// Returns 200 OK once a catalog snapshot is published, 503 before.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	status := h.svc.Status()
	if !status.Ready {
		respondErrorWithDetails(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable,
			"Catalog not loaded yet", status, nil)
		return
	}
	respondJSON(w, http.StatusOK, status)
}
