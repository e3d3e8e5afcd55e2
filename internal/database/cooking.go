// Vitrine - Personal Media Activity Tracker
// Copyright 2026 M. Croft
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mcroft/vitrine

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mcroft/vitrine/internal/metrics"
	"github.com/mcroft/vitrine/internal/models"
)

// CreateCookingEntry persists a new cooking log entry.
func (db *DB) CreateCookingEntry(ctx context.Context, entry *models.CookingEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO cooking_entries (id, name, image_url, recipe_url, notes, rating, cooked_at, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	start := time.Now()
	_, err := db.conn.ExecContext(ctx, query,
		entry.ID, entry.Name, entry.ImageURL, entry.RecipeURL,
		entry.Notes, entry.Rating, entry.CookedAt, entry.CreatedAt)
	metrics.RecordDBQuery("INSERT", "cooking_entries", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to create cooking entry: %w", err)
	}

	return nil
}

// ListCookingEntries returns entries ordered by cook date descending.
// A non-nil year restricts results to that calendar year (UTC).
func (db *DB) ListCookingEntries(ctx context.Context, year *int) ([]models.CookingEntry, error) {
	query := `SELECT id, name, image_url, recipe_url, notes, rating, cooked_at, created_at
	FROM cooking_entries`
	var args []interface{}

	if year != nil {
		query += ` WHERE cooked_at >= ? AND cooked_at < ?`
		from := time.Date(*year, time.January, 1, 0, 0, 0, 0, time.UTC)
		args = append(args, from, from.AddDate(1, 0, 0))
	}
	query += ` ORDER BY cooked_at DESC, created_at DESC`

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, query, args...)
	metrics.RecordDBQuery("SELECT", "cooking_entries", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to list cooking entries: %w", err)
	}
	defer closeQuietly(rows)

	var entries []models.CookingEntry
	for rows.Next() {
		var e models.CookingEntry
		if err := rows.Scan(&e.ID, &e.Name, &e.ImageURL, &e.RecipeURL,
			&e.Notes, &e.Rating, &e.CookedAt, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan cooking entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("cooking entry iteration failed: %w", err)
	}

	return entries, nil
}
