// Vibecatalog - Media Catalog Consolidation and Vibe Search
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vibecatalog

package enrich

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/vibecatalog/internal/metrics"
)

// ErrProviderUnavailable marks a lookup refused by an open or half-open
// breaker.
var ErrProviderUnavailable = errors.New("provider unavailable")

// Lookup outcomes reported to metrics.
const (
	outcomeFound    = "found"
	outcomeNotFound = "not_found"
	outcomeError    = "error"
	outcomeRejected = "rejected"
	outcomeLimited  = "rate_limited"
)

// GuardSettings configures a Guard.
type GuardSettings struct {
	// Rate is the sustained requests per second; zero disables limiting.
	Rate  float64
	Burst int

	// Breaker tuning; zero values take the defaults below.
	MaxRequests  uint32
	Interval     time.Duration
	Timeout      time.Duration
	MinRequests  uint32
	FailureRatio float64
}

func (s *GuardSettings) applyDefaults() {
	if s.Burst <= 0 {
		s.Burst = 1
	}
	if s.MaxRequests == 0 {
		s.MaxRequests = 3
	}
	if s.Interval == 0 {
		s.Interval = time.Minute
	}
	if s.Timeout == 0 {
		s.Timeout = 2 * time.Minute
	}
	if s.MinRequests == 0 {
		s.MinRequests = 10
	}
	if s.FailureRatio == 0 {
		s.FailureRatio = 0.6
	}
}

// Guard protects one provider with a token bucket limiter and a circuit
// breaker. Lookups that come back empty count as successes.
type Guard struct {
	name    string
	limiter *rate.Limiter
	cb      *gobreaker.CircuitBreaker[any]
}

// NewGuard creates a guard for the named provider.
//
// The breaker allows MaxRequests trial calls when half-open, resets its
// counts every Interval while closed, stays open for Timeout, and opens once
// at least MinRequests calls have failed at FailureRatio or worse.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewGuard(name string, settings GuardSettings, logger zerolog.Logger) *Guard {
	settings.applyDefaults()
	limit := rate.Inf
	if settings.Rate > 0 {
		limit = rate.Limit(settings.Rate)
	}

	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        name,
		MaxRequests: settings.MaxRequests,
		Interval:    settings.Interval,
		Timeout:     settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < settings.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= settings.FailureRatio
			if shouldTrip {
				logger.Warn().
					Str("provider", name).
					Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", failureRatio*100).
					Msg("Opening provider circuit")
			}
			return shouldTrip
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr, toStr := stateToString(from), stateToString(to)
			logger.Info().Str("provider", name).Str("from", fromStr).Str("to", toStr).Msg("Provider circuit state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
		},
	})

	return &Guard{
		name:    name,
		limiter: rate.NewLimiter(limit, settings.Burst),
		cb:      cb,
	}
}

// Name returns the provider name.
func (g *Guard) Name() string {
	return g.name
}

// State returns the breaker state.
func (g *Guard) State() gobreaker.State {
	return g.cb.State()
}

// Call runs fn under g. The limiter wait happens outside the breaker so a
// cancelled wait never counts as a provider failure.
func Call[T any](ctx context.Context, g *Guard, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	start := time.Now()

	if err := g.limiter.Wait(ctx); err != nil {
		metrics.RecordProviderLookup(g.name, outcomeLimited, time.Since(start))
		return zero, fmt.Errorf("%s: rate limit: %w", g.name, err)
	}

	result, err := g.cb.Execute(func() (any, error) {
		return fn(ctx)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.RecordProviderLookup(g.name, outcomeRejected, time.Since(start))
			return zero, fmt.Errorf("%s: %w: %w", g.name, ErrProviderUnavailable, err)
		}
		metrics.RecordProviderLookup(g.name, outcomeError, time.Since(start))
		return zero, fmt.Errorf("%s: %w", g.name, err)
	}

	typed, ok := result.(T)
	if !ok {
		return zero, fmt.Errorf("%s: unexpected result type %T", g.name, result)
	}

	outcome := outcomeFound
	if isEmpty(typed) {
		outcome = outcomeNotFound
	}
	metrics.RecordProviderLookup(g.name, outcome, time.Since(start))
	return typed, nil
}

func isEmpty(v any) bool {
	switch x := v.(type) {
	case string:
		return x == ""
	case []Video:
		return len(x) == 0
	default:
		return false
	}
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
