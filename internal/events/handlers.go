// Vibecatalog - Media Catalog Consolidation and Vibe Search
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vibecatalog

package events

import (
	"context"
	"fmt"

	"github.com/tomtom215/vibecatalog/internal/models"
)

// ArtworkWriter persists discovered metadata.
type ArtworkWriter interface {
	PutArtwork(ctx context.Context, key string, art models.Artwork) error
}

// PersistDiscovered returns a handler writing discoveries to w.
func PersistDiscovered(w ArtworkWriter) func(context.Context, MetadataDiscovered) error {
	return func(ctx context.Context, ev MetadataDiscovered) error {
		if ev.Artwork.IsZero() {
			return nil
		}
		key := ev.Key
		if key == "" {
			key = models.WriteBackKey(ev.Title, ev.YearOrArtist)
		}
		if err := w.PutArtwork(ctx, key, ev.Artwork); err != nil {
			return fmt.Errorf("persist artwork for %q: %w", ev.Title, err)
		}
		return nil
	}
}

// Clearer is anything that can drop its contents.
type Clearer interface {
	Clear()
}

// ClearOnReload returns a handler clearing c whenever the catalog reloads.
func ClearOnReload(c Clearer) func(context.Context, CatalogReloaded) error {
	return func(context.Context, CatalogReloaded) error {
		c.Clear()
		return nil
	}
}
