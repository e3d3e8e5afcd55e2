// Vitrine - Personal Media Activity Tracker
// Copyright 2026 M. Croft
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mcroft/vitrine

package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context with timeout for schema operations.
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createTables creates the core tables and indexes. All columns are
// defined in the initial CREATE TABLE statements; there is no
// migration machinery yet.
func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	queries := []string{
		// Canonical movie records. letterboxd_id is the dedup key: the
		// unique constraint is what makes concurrent duplicate webhook
		// deliveries safe.
		`CREATE TABLE IF NOT EXISTS movies (
			id UUID PRIMARY KEY,
			letterboxd_id TEXT NOT NULL UNIQUE,
			title TEXT NOT NULL,
			release_year INTEGER,
			rating DOUBLE,
			poster_url TEXT,
			letterboxd_url TEXT NOT NULL,
			watched_at TIMESTAMP NOT NULL,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,

		// Album enrichment cache, keyed by the album's external URL.
		// cover_art_url is '' when unresolved, never NULL.
		`CREATE TABLE IF NOT EXISTS album_info (
			url TEXT PRIMARY KEY,
			artist TEXT NOT NULL,
			name TEXT NOT NULL,
			mbid TEXT NOT NULL DEFAULT '',
			track_count INTEGER,
			cover_art_url TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL
		)`,

		// Cooking log.
		`CREATE TABLE IF NOT EXISTS cooking_entries (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL,
			image_url TEXT,
			recipe_url TEXT,
			notes TEXT,
			rating DOUBLE,
			cooked_at TIMESTAMP NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_movies_watched_at ON movies(watched_at)`,
		`CREATE INDEX IF NOT EXISTS idx_cooking_cooked_at ON cooking_entries(cooked_at)`,
	}

	for _, query := range queries {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}

	return nil
}
