// Vitrine - Personal Media Activity Tracker
// Copyright 2026 M. Croft
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mcroft/vitrine

package api

import (
	"context"

	"github.com/mcroft/vitrine/internal/gate"
	"github.com/mcroft/vitrine/internal/models"
)

// MovieIngestor runs the webhook ingestion pipeline.
// Implemented by *ingest.Pipeline.
type MovieIngestor interface {
	Ingest(ctx context.Context, event *models.MovieWatchEvent) (*models.Movie, error)
}

// ChartSource serves assembled album charts.
// Implemented by *charts.Aggregator.
type ChartSource interface {
	AllTimeTopAlbums(ctx context.Context, limit int) ([]models.EnrichedAlbum, error)
	AlbumsForYear(ctx context.Context, year, limit int) ([]models.EnrichedAlbum, error)
}

// Store is the slice of the database the handlers read and write.
// Implemented by *database.DB.
type Store interface {
	GetMovieByLetterboxdID(ctx context.Context, letterboxdID string) (*models.Movie, error)
	ListMovies(ctx context.Context, limit, offset int) ([]models.Movie, error)
	CountMovies(ctx context.Context) (int, error)
	CountRatedMovies(ctx context.Context) (int, error)
	CreateCookingEntry(ctx context.Context, entry *models.CookingEntry) error
	ListCookingEntries(ctx context.Context, year *int) ([]models.CookingEntry, error)
	Ping(ctx context.Context) error
}

// Handler holds all HTTP handlers and their dependencies.
type Handler struct {
	store    Store
	ingestor MovieIngestor
	charts   ChartSource
	access   *gate.Gate
}

// NewHandler creates the handler set.
func NewHandler(store Store, ingestor MovieIngestor, charts ChartSource, access *gate.Gate) *Handler {
	return &Handler{
		store:    store,
		ingestor: ingestor,
		charts:   charts,
		access:   access,
	}
}
