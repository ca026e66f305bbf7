// Vibecatalog - Media Catalog Consolidation and Vibe Search
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vibecatalog

// Package store persists state that should survive catalog reloads and
// restarts: memoized description embeddings and discovered display metadata.
package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/tomtom215/vibecatalog/internal/models"
)

// Key prefixes for BadgerDB storage
const (
	vectorKeyPrefix  = "vec:"
	artworkKeyPrefix = "art:"
)

// Badger is a BadgerDB-backed store.
type Badger struct {
	db *badger.DB
}

// Open opens (or creates) the store at path. An empty path keeps everything
// in memory.
func Open(path string) (*Badger, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	if path == "" {
		opts = badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %q: %w", path, err)
	}
	return &Badger{db: db}, nil
}

// Close closes the underlying database.
func (b *Badger) Close() error {
	return b.db.Close()
}

// VectorKey derives the memo key for an embedding of text by model.
func VectorKey(model, text string) string {
	sum := sha256.Sum256([]byte(model + "\x00" + text))
	return hex.EncodeToString(sum[:])
}

// GetVector returns a memoized embedding.
func (b *Badger) GetVector(ctx context.Context, key string) ([]float32, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	var vec []float32
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(vectorKeyPrefix + key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return msgpack.Unmarshal(val, &vec)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get vector: %w", err)
	}
	return vec, true, nil
}

// PutVector memoizes an embedding.
func (b *Badger) PutVector(ctx context.Context, key string, vec []float32) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := msgpack.Marshal(vec)
	if err != nil {
		return fmt.Errorf("marshal vector: %w", err)
	}
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(vectorKeyPrefix+key), data)
	})
}

// PutArtwork merges discovered metadata into the entry for a write-back key.
func (b *Badger) PutArtwork(ctx context.Context, key string, art models.Artwork) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return b.db.Update(func(txn *badger.Txn) error {
		dbKey := []byte(artworkKeyPrefix + key)

		var existing models.Artwork
		item, err := txn.Get(dbKey)
		switch {
		case errors.Is(err, badger.ErrKeyNotFound):
		case err != nil:
			return fmt.Errorf("get artwork: %w", err)
		default:
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &existing)
			}); err != nil {
				return fmt.Errorf("decode artwork: %w", err)
			}
		}

		data, err := json.Marshal(art.Merge(existing))
		if err != nil {
			return fmt.Errorf("marshal artwork: %w", err)
		}
		return txn.Set(dbKey, data)
	})
}

// LoadArtwork returns every persisted metadata entry keyed by write-back key.
func (b *Badger) LoadArtwork(ctx context.Context) (map[string]models.Artwork, error) {
	out := make(map[string]models.Artwork)
	prefix := []byte(artworkKeyPrefix)

	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := it.Item()
			var art models.Artwork
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &art)
			}); err != nil {
				return fmt.Errorf("decode artwork %s: %w", item.Key(), err)
			}
			out[string(item.Key()[len(prefix):])] = art
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
