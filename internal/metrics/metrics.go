// Vibecatalog - Media Catalog Consolidation and Vibe Search
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vibecatalog

// Package metrics registers the Prometheus collectors exposed on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Search Metrics
	SearchRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vibecatalog_search_requests_total",
			Help: "Total number of searches by the path that answered them",
		},
		[]string{"path"}, // "exact", "approximate", "cache", "empty"
	)

	SearchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vibecatalog_search_duration_seconds",
			Help:    "Duration of searches including enrichment",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path"},
	)

	ResponseCacheResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vibecatalog_response_cache_total",
			Help: "Response cache lookups by result",
		},
		[]string{"result"}, // "hit", "miss"
	)

	// Catalog and Index Metrics
	CatalogRecords = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vibecatalog_catalog_records",
			Help: "Number of records in the published catalog",
		},
	)

	IndexedRecords = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vibecatalog_indexed_records",
			Help: "Number of catalog positions with an aligned embedding vector",
		},
	)

	IndexMismatches = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vibecatalog_index_mismatch_total",
			Help: "Times a persisted index did not match the catalog it was aligned to",
		},
	)

	IndexResolutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vibecatalog_index_resolutions_total",
			Help: "Index resolutions by outcome",
		},
		[]string{"outcome"}, // "loaded", "reused_stale", "built", "failed"
	)

	EmbeddingCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vibecatalog_embedding_calls_total",
			Help: "Embedding requests by outcome",
		},
		[]string{"outcome"}, // "memo_hit", "computed", "error"
	)

	// Reload Metrics
	ReloadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vibecatalog_reloads_total",
			Help: "Catalog reloads by outcome",
		},
		[]string{"outcome"}, // "success", "failure", "busy"
	)

	ReloadDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vibecatalog_reload_duration_seconds",
			Help:    "Duration of catalog reloads",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 300, 900},
		},
	)

	// Enrichment Metrics
	ProviderLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vibecatalog_provider_lookups_total",
			Help: "Metadata provider lookups by provider and outcome",
		},
		[]string{"provider", "outcome"}, // outcome: "found", "not_found", "error", "rejected"
	)

	ProviderDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vibecatalog_provider_duration_seconds",
			Help:    "Duration of metadata provider lookups",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"provider"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "vibecatalog_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vibecatalog_circuit_breaker_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// Event Metrics
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vibecatalog_events_published_total",
			Help: "Events published on the internal bus",
		},
		[]string{"topic"},
	)

	EventsHandled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vibecatalog_events_handled_total",
			Help: "Events handled by subscribers",
		},
		[]string{"topic", "outcome"},
	)

	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vibecatalog_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vibecatalog_api_request_duration_seconds",
			Help:    "Duration of API requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)
)

// RecordSearch records a served search.
func RecordSearch(path string, duration time.Duration) {
	SearchRequests.WithLabelValues(path).Inc()
	SearchDuration.WithLabelValues(path).Observe(duration.Seconds())
}

// RecordProviderLookup records one provider call.
func RecordProviderLookup(provider, outcome string, duration time.Duration) {
	ProviderLookups.WithLabelValues(provider, outcome).Inc()
	ProviderDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

// RecordReload records a reload attempt.
func RecordReload(outcome string, duration time.Duration) {
	ReloadsTotal.WithLabelValues(outcome).Inc()
	if outcome != "busy" {
		ReloadDuration.Observe(duration.Seconds())
	}
}

// RecordAPIRequest records an HTTP request.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// SetSnapshotSize publishes catalog and index gauges.
func SetSnapshotSize(records, indexed int) {
	CatalogRecords.Set(float64(records))
	IndexedRecords.Set(float64(indexed))
}
