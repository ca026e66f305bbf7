// Vibecatalog - Media Catalog Consolidation and Vibe Search
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vibecatalog

package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/vibecatalog/internal/discovery"
)

// Reloader rebuilds and publishes the catalog.
type Reloader interface {
	Reload(ctx context.Context) (discovery.ReloadReport, error)
}

// ReloadServiceConfig holds configuration for the reload service.
type ReloadServiceConfig struct {
	// Interval between periodic reloads. Zero loads once at startup only.
	Interval time.Duration

	// Timeout bounds a single reload, including any index build.
	Timeout time.Duration
}

// ReloadService loads the catalog at startup and then on every tick.
//
// A failed reload is logged and retried on the next tick rather than returned,
// so the supervisor does not restart the service and hammer the embedder.
type ReloadService struct {
	reloader Reloader
	config   ReloadServiceConfig
	logger   zerolog.Logger
	name     string
}

// NewReloadService creates a new reload service.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewReloadService(reloader Reloader, cfg ReloadServiceConfig, logger zerolog.Logger) *ReloadService {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Minute
	}
	return &ReloadService{
		reloader: reloader,
		config:   cfg,
		logger:   logger.With().Str("service", "reload").Logger(),
		name:     "catalog-reload",
	}
}

// Serve implements suture.Service.
func (s *ReloadService) Serve(ctx context.Context) error {
	s.logger.Info().Dur("interval", s.config.Interval).Msg("Reload service starting")
	s.reload(ctx)

	if s.config.Interval <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("Reload service shutting down")
			return ctx.Err()
		case <-ticker.C:
			s.reload(ctx)
		}
	}
}

func (s *ReloadService) reload(ctx context.Context) {
	reloadCtx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	_, err := s.reloader.Reload(reloadCtx)
	switch {
	case err == nil:
	case errors.Is(err, discovery.ErrReloadInProgress):
		s.logger.Debug().Msg("Scheduled reload skipped; another reload is running")
	case ctx.Err() != nil:
	default:
		s.logger.Warn().Err(err).Msg("Scheduled reload failed; will retry on next tick")
	}
}

// String returns the service name for logging.
func (s *ReloadService) String() string {
	return s.name
}
