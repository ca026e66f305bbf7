// Vibecatalog - Media Catalog Consolidation and Vibe Search
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vibecatalog

// Package events carries in-process notifications between the catalog,
// enrichment and persistence layers over a Watermill Go channel pub/sub.
//
// Delivery is at-most-once across restarts: messages published while no
// handler is subscribed are dropped.
package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"

	"github.com/tomtom215/vibecatalog/internal/metrics"
	"github.com/tomtom215/vibecatalog/internal/models"
)

// Topics.
const (
	TopicCatalogReloaded    = "catalog.reloaded"
	TopicMetadataDiscovered = "metadata.discovered"
)

// CatalogReloaded is published after a new snapshot is live.
type CatalogReloaded struct {
	Version  uint64    `json:"version"`
	Records  int       `json:"records"`
	Indexed  int       `json:"indexed"`
	LoadedAt time.Time `json:"loaded_at"`
}

// MetadataDiscovered is published when a provider lookup fills in display
// metadata for a record.
type MetadataDiscovered struct {
	Key          string         `json:"key"`
	Title        string         `json:"title"`
	YearOrArtist string         `json:"year_or_artist"`
	Artwork      models.Artwork `json:"artwork"`
}

// Config tunes the bus.
type Config struct {
	BufferSize      int
	CloseTimeout    time.Duration
	RetryMaxRetries int
	RetryInterval   time.Duration
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		BufferSize:      256,
		CloseTimeout:    10 * time.Second,
		RetryMaxRetries: 3,
		RetryInterval:   100 * time.Millisecond,
	}
}

// ErrClosed is returned when publishing on a closed bus.
var ErrClosed = errors.New("event bus is closed")

// Bus publishes events and dispatches them to registered handlers.
type Bus struct {
	pubsub *gochannel.GoChannel
	router *message.Router
	logger watermill.LoggerAdapter

	mu     sync.RWMutex
	closed bool
}

// NewBus creates a bus. Register handlers before calling Run.
func NewBus(cfg Config, logger watermill.LoggerAdapter) (*Bus, error) {
	if logger == nil {
		logger = watermill.NopLogger{}
	}
	def := DefaultConfig()
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = def.BufferSize
	}
	if cfg.CloseTimeout <= 0 {
		cfg.CloseTimeout = def.CloseTimeout
	}
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = def.RetryInterval
	}

	pubsub := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: int64(cfg.BufferSize),
	}, logger)

	router, err := message.NewRouter(message.RouterConfig{CloseTimeout: cfg.CloseTimeout}, logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill router: %w", err)
	}

	router.AddMiddleware(middleware.Recoverer)
	retry := middleware.Retry{
		MaxRetries:      cfg.RetryMaxRetries,
		InitialInterval: cfg.RetryInterval,
		MaxInterval:     10 * cfg.RetryInterval,
		Multiplier:      2,
		Logger:          logger,
	}
	router.AddMiddleware(retry.Middleware)

	return &Bus{pubsub: pubsub, router: router, logger: logger}, nil
}

// OnReloaded registers a handler for catalog reloads.
func (b *Bus) OnReloaded(name string, fn func(context.Context, CatalogReloaded) error) {
	addHandler(b, name, TopicCatalogReloaded, fn)
}

// OnDiscovered registers a handler for discovered metadata.
func (b *Bus) OnDiscovered(name string, fn func(context.Context, MetadataDiscovered) error) {
	addHandler(b, name, TopicMetadataDiscovered, fn)
}

func addHandler[T any](b *Bus, name, topic string, fn func(context.Context, T) error) {
	b.router.AddConsumerHandler(name, topic, b.pubsub, func(msg *message.Message) error {
		var payload T
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			// Undecodable payloads are dropped; retrying cannot fix them.
			metrics.EventsHandled.WithLabelValues(topic, "malformed").Inc()
			b.logger.Error("Dropping malformed event", err, watermill.LogFields{"topic": topic, "handler": name})
			return nil
		}
		if err := fn(msg.Context(), payload); err != nil {
			metrics.EventsHandled.WithLabelValues(topic, "error").Inc()
			return err
		}
		metrics.EventsHandled.WithLabelValues(topic, "ok").Inc()
		return nil
	})
}

// PublishReloaded announces a new snapshot.
func (b *Bus) PublishReloaded(ctx context.Context, ev CatalogReloaded) error {
	return b.publish(ctx, TopicCatalogReloaded, ev)
}

// PublishDiscovered announces metadata found for the record identified by
// title and yearOrArtist.
func (b *Bus) PublishDiscovered(ctx context.Context, title, yearOrArtist string, art models.Artwork) error {
	return b.publish(ctx, TopicMetadataDiscovered, MetadataDiscovered{
		Key:          models.WriteBackKey(title, yearOrArtist),
		Title:        title,
		YearOrArtist: yearOrArtist,
		Artwork:      art,
	})
}

func (b *Bus) publish(ctx context.Context, topic string, payload any) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrClosed
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", topic, err)
	}
	msg := message.NewMessage(watermill.NewUUID(), data)
	msg.SetContext(context.WithoutCancel(ctx))

	if err := b.pubsub.Publish(topic, msg); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	metrics.EventsPublished.WithLabelValues(topic).Inc()
	return nil
}

// Run dispatches events until ctx is cancelled or Close is called.
func (b *Bus) Run(ctx context.Context) error {
	return b.router.Run(ctx)
}

// Running is closed once handlers are subscribed.
func (b *Bus) Running() <-chan struct{} {
	return b.router.Running()
}

// Close stops dispatching and releases the pub/sub.
func (b *Bus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.mu.Unlock()

	routerErr := b.router.Close()
	if err := b.pubsub.Close(); err != nil {
		return fmt.Errorf("close pubsub: %w", err)
	}
	return routerErr
}
