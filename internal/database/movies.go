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

	"github.com/google/uuid"

	"github.com/mcroft/vitrine/internal/metrics"
	"github.com/mcroft/vitrine/internal/models"
)

// UpsertMovie performs the idempotent create-or-update keyed on the
// external catalog identifier. On first sighting of a letterboxd_id the
// whole record is created; on conflict only the rating (and updated_at)
// mutate, every other column keeps its first-sighting value. The single
// statement leaves no read-then-write race window under concurrent
// duplicate deliveries.
func (db *DB) UpsertMovie(ctx context.Context, movie *models.Movie) error {
	if movie.ID == uuid.Nil {
		movie.ID = uuid.New()
	}
	now := time.Now().UTC()
	if movie.CreatedAt.IsZero() {
		movie.CreatedAt = now
	}
	movie.UpdatedAt = now

	query := `INSERT INTO movies (
		id, letterboxd_id, title, release_year, rating,
		poster_url, letterboxd_url, watched_at, created_at, updated_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (letterboxd_id) DO UPDATE SET
		rating = EXCLUDED.rating,
		updated_at = EXCLUDED.updated_at`

	start := time.Now()
	_, err := db.conn.ExecContext(ctx, query,
		movie.ID, movie.LetterboxdID, movie.Title, movie.ReleaseYear, movie.Rating,
		movie.PosterURL, movie.LetterboxdURL, movie.WatchedAt, movie.CreatedAt, movie.UpdatedAt,
	)
	metrics.RecordDBQuery("UPSERT", "movies", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to upsert movie %s: %w", movie.LetterboxdID, err)
	}

	return nil
}

// GetMovieByLetterboxdID returns the canonical record for an external
// identifier, or nil when no record exists.
func (db *DB) GetMovieByLetterboxdID(ctx context.Context, letterboxdID string) (*models.Movie, error) {
	query := `SELECT id, letterboxd_id, title, release_year, rating,
		poster_url, letterboxd_url, watched_at, created_at, updated_at
	FROM movies WHERE letterboxd_id = ?`

	start := time.Now()
	row := db.conn.QueryRowContext(ctx, query, letterboxdID)

	var m models.Movie
	err := row.Scan(&m.ID, &m.LetterboxdID, &m.Title, &m.ReleaseYear, &m.Rating,
		&m.PosterURL, &m.LetterboxdURL, &m.WatchedAt, &m.CreatedAt, &m.UpdatedAt)
	metrics.RecordDBQuery("SELECT", "movies", time.Since(start), ignoreNoRows(err))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get movie %s: %w", letterboxdID, err)
	}

	return &m, nil
}

// ListMovies returns records ordered by watch date descending.
func (db *DB) ListMovies(ctx context.Context, limit, offset int) ([]models.Movie, error) {
	query := `SELECT id, letterboxd_id, title, release_year, rating,
		poster_url, letterboxd_url, watched_at, created_at, updated_at
	FROM movies ORDER BY watched_at DESC, created_at DESC LIMIT ? OFFSET ?`

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, query, limit, offset)
	metrics.RecordDBQuery("SELECT", "movies", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to list movies: %w", err)
	}
	defer closeQuietly(rows)

	var movies []models.Movie
	for rows.Next() {
		var m models.Movie
		if err := rows.Scan(&m.ID, &m.LetterboxdID, &m.Title, &m.ReleaseYear, &m.Rating,
			&m.PosterURL, &m.LetterboxdURL, &m.WatchedAt, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan movie row: %w", err)
		}
		movies = append(movies, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("movie row iteration failed: %w", err)
	}

	return movies, nil
}

// CountMovies returns the total number of canonical records.
func (db *DB) CountMovies(ctx context.Context) (int, error) {
	return db.countMovies(ctx, `SELECT COUNT(*) FROM movies`)
}

// CountRatedMovies returns the number of records with a non-null rating.
func (db *DB) CountRatedMovies(ctx context.Context) (int, error) {
	return db.countMovies(ctx, `SELECT COUNT(*) FROM movies WHERE rating IS NOT NULL`)
}

func (db *DB) countMovies(ctx context.Context, query string) (int, error) {
	start := time.Now()
	var count int
	err := db.conn.QueryRowContext(ctx, query).Scan(&count)
	metrics.RecordDBQuery("SELECT", "movies", time.Since(start), err)
	if err != nil {
		return 0, fmt.Errorf("failed to count movies: %w", err)
	}
	return count, nil
}

// ignoreNoRows strips sql.ErrNoRows so an empty lookup is not counted
// as a query error in metrics.
func ignoreNoRows(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	return err
}
