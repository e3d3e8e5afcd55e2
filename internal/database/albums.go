// Vitrine - Personal Media Activity Tracker
// Copyright 2026 M. Croft
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mcroft/vitrine

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mcroft/vitrine/internal/metrics"
	"github.com/mcroft/vitrine/internal/models"
)

// GetAlbumInfo returns the cached enrichment record for an album URL,
// or nil on a cache miss.
func (db *DB) GetAlbumInfo(ctx context.Context, url string) (*models.AlbumInfoRecord, error) {
	query := `SELECT url, artist, name, mbid, track_count, cover_art_url, created_at
	FROM album_info WHERE url = ?`

	start := time.Now()
	row := db.conn.QueryRowContext(ctx, query, url)

	var rec models.AlbumInfoRecord
	err := row.Scan(&rec.URL, &rec.Artist, &rec.Name, &rec.MBID,
		&rec.TrackCount, &rec.CoverArtURL, &rec.CreatedAt)
	metrics.RecordDBQuery("SELECT", "album_info", time.Since(start), ignoreNoRows(err))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get album info for %s: %w", url, err)
	}

	return &rec, nil
}

// PutAlbumInfo persists an enrichment record. Two concurrent first-time
// enrichments of the same URL may both reach this call; the upsert makes
// that race benign (last writer wins, no constraint error surfaces).
// The aggregation pipeline never calls this for a URL it has already
// seen in the cache, so cached art stays immutable in practice.
func (db *DB) PutAlbumInfo(ctx context.Context, rec *models.AlbumInfoRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO album_info (url, artist, name, mbid, track_count, cover_art_url, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (url) DO UPDATE SET
		artist = EXCLUDED.artist,
		name = EXCLUDED.name,
		mbid = EXCLUDED.mbid,
		track_count = EXCLUDED.track_count,
		cover_art_url = EXCLUDED.cover_art_url`

	start := time.Now()
	_, err := db.conn.ExecContext(ctx, query,
		rec.URL, rec.Artist, rec.Name, rec.MBID, rec.TrackCount, rec.CoverArtURL, rec.CreatedAt)
	metrics.RecordDBQuery("UPSERT", "album_info", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to put album info for %s: %w", rec.URL, err)
	}

	return nil
}
