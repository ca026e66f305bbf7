// Vibecatalog - Media Catalog Consolidation and Vibe Search
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vibecatalog

package services

import (
	"context"
	"fmt"
)

// EventRouter is the event bus lifecycle.
type EventRouter interface {
	Run(ctx context.Context) error
}

// EventBusService runs the event router under supervision.
type EventBusService struct {
	router EventRouter
	name   string
}

// NewEventBusService wraps router.
func NewEventBusService(router EventRouter) *EventBusService {
	return &EventBusService{router: router, name: "event-bus"}
}

// Serve implements suture.Service.
func (s *EventBusService) Serve(ctx context.Context) error {
	if err := s.router.Run(ctx); err != nil {
		return fmt.Errorf("event router stopped: %w", err)
	}
	return ctx.Err()
}

// String returns the service name for logging.
func (s *EventBusService) String() string {
	return s.name
}
