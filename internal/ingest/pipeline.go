// Vitrine - Personal Media Activity Tracker
// Copyright 2026 M. Croft
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mcroft/vitrine

// Package ingest implements the movie ingestion pipeline: parsing and
// validation of inbound watch events, identifier and artwork
// extraction, and the idempotent create-or-update against the record
// store. Replaying an event is always safe: the first sighting of an
// external identifier creates the record, later sightings update only
// the rating.
package ingest

import (
	"context"

	"github.com/mcroft/vitrine/internal/logging"
	"github.com/mcroft/vitrine/internal/models"
	"github.com/mcroft/vitrine/internal/validation"
)

// MovieStore is the slice of the record store the pipeline writes to.
// Implemented by *database.DB.
type MovieStore interface {
	UpsertMovie(ctx context.Context, movie *models.Movie) error
}

// Pipeline orchestrates movie watch event ingestion. The store handle
// is passed in explicitly; the pipeline holds no other state.
type Pipeline struct {
	store MovieStore
}

// NewPipeline creates an ingestion pipeline over a store.
func NewPipeline(store MovieStore) *Pipeline {
	return &Pipeline{store: store}
}

// Ingest processes one watch event end to end: shape validation,
// identifier extraction, URL normalization, poster extraction, then the
// upsert keyed on the external identifier. Returns the canonical record
// as the acknowledgement.
//
// Error classes: *ValidationError and *ParseError reject the event with
// no mutation; *PersistenceError surfaces a store failure.
func (p *Pipeline) Ingest(ctx context.Context, event *models.MovieWatchEvent) (*models.Movie, error) {
	if verr := validation.ValidateStruct(event); verr != nil {
		return nil, &ValidationError{Msg: verr.Error()}
	}

	letterboxdID, err := ExtractLetterboxdID(event.LetterboxdURL)
	if err != nil {
		return nil, err
	}

	normalizedURL, err := NormalizeLetterboxdURL(event.LetterboxdURL)
	if err != nil {
		return nil, err
	}

	watchedAt, err := ParseWatchedDate(event.WatchedAt)
	if err != nil {
		return nil, err
	}

	movie := &models.Movie{
		LetterboxdID:  letterboxdID,
		Title:         event.Title,
		ReleaseYear:   event.ReleaseYear.Value,
		Rating:        event.Rating.Value,
		PosterURL:     ExtractPosterURL(event.Description),
		LetterboxdURL: normalizedURL,
		WatchedAt:     watchedAt,
	}

	if err := p.store.UpsertMovie(ctx, movie); err != nil {
		return nil, &PersistenceError{Err: err}
	}

	logging.Ctx(ctx).Info().
		Str("letterboxd_id", letterboxdID).
		Str("title", movie.Title).
		Msg("Movie watch event ingested")

	return movie, nil
}
