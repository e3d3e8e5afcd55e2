// Vitrine - Personal Media Activity Tracker
// Copyright 2026 M. Croft
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mcroft/vitrine

package charts

import (
	"context"

	"github.com/mcroft/vitrine/internal/metrics"
	"github.com/mcroft/vitrine/internal/models"
)

// AlbumStore is the slice of the record store backing the enrichment
// cache. Implemented by *database.DB.
type AlbumStore interface {
	GetAlbumInfo(ctx context.Context, url string) (*models.AlbumInfoRecord, error)
	PutAlbumInfo(ctx context.Context, rec *models.AlbumInfoRecord) error
}

// AlbumCache is the cache-aside abstraction over the store. The
// never-update-once-cached policy lives here rather than at call
// sites: Put is a no-op for a key that already resolves.
type AlbumCache struct {
	store AlbumStore
}

// NewAlbumCache creates a cache over a store.
func NewAlbumCache(store AlbumStore) *AlbumCache {
	return &AlbumCache{store: store}
}

// Get returns the cached record for an album URL, or nil on a miss.
func (c *AlbumCache) Get(ctx context.Context, url string) (*models.AlbumInfoRecord, error) {
	rec, err := c.store.GetAlbumInfo(ctx, url)
	if err != nil {
		return nil, &PersistenceError{Err: err}
	}
	metrics.RecordAlbumCacheLookup(rec != nil)
	return rec, nil
}

// Put persists a record for a key that is not yet cached. Cached
// entries are immutable: a Put for an existing key writes nothing.
// Two concurrent first-time Puts for the same key can both reach the
// store; the store's upsert keeps that race benign.
func (c *AlbumCache) Put(ctx context.Context, rec *models.AlbumInfoRecord) error {
	existing, err := c.store.GetAlbumInfo(ctx, rec.URL)
	if err != nil {
		return &PersistenceError{Err: err}
	}
	if existing != nil {
		return nil
	}
	if err := c.store.PutAlbumInfo(ctx, rec); err != nil {
		return &PersistenceError{Err: err}
	}
	return nil
}
