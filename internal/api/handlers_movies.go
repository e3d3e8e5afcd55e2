// Vitrine - Personal Media Activity Tracker
// Copyright 2026 M. Croft
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mcroft/vitrine

package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/mcroft/vitrine/internal/ingest"
	"github.com/mcroft/vitrine/internal/logging"
	"github.com/mcroft/vitrine/internal/metrics"
	"github.com/mcroft/vitrine/internal/models"
)

const (
	defaultListLimit = 100
	maxListLimit     = 1000
)

// MovieLog handles the movie-watched webhook. The token gate runs
// before the body is read: an unauthorized request never creates or
// mutates any record.
func (h *Handler) MovieLog(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	start := time.Now()

	decision := h.access.Authorize(r)
	if !decision.TokenAuthorized {
		metrics.RecordWebhookEvent("unauthorized", time.Since(start))
		metrics.RecordAccessDenial("token")
		logging.Ctx(r.Context()).Warn().
			Str("client_ip", decision.ClientIP).
			Msg("Webhook rejected: invalid token")
		rw.Unauthorized("invalid webhook token")
		return
	}

	var event models.MovieWatchEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		metrics.RecordWebhookEvent("malformed", time.Since(start))
		rw.Error(http.StatusBadRequest, ErrCodeValidation, "malformed request body")
		return
	}

	movie, err := h.ingestor.Ingest(r.Context(), &event)
	if err != nil {
		h.writeIngestError(rw, r, err, time.Since(start))
		return
	}

	metrics.RecordWebhookEvent("accepted", time.Since(start))
	rw.Created(movie)
}

func (h *Handler) writeIngestError(rw *ResponseWriter, r *http.Request, err error, elapsed time.Duration) {
	var (
		verr *ingest.ValidationError
		perr *ingest.ParseError
		serr *ingest.PersistenceError
	)

	switch {
	case errors.As(err, &verr):
		metrics.RecordWebhookEvent("invalid", elapsed)
		rw.Error(http.StatusBadRequest, ErrCodeValidation, verr.Error())
	case errors.As(err, &perr):
		metrics.RecordWebhookEvent("invalid", elapsed)
		rw.Error(http.StatusBadRequest, ErrCodeParse, perr.Error())
	case errors.As(err, &serr):
		metrics.RecordWebhookEvent("failed", elapsed)
		logging.Ctx(r.Context()).Error().Err(err).Msg("Movie ingestion persistence failure")
		rw.DatabaseError("failed to store movie")
	default:
		metrics.RecordWebhookEvent("failed", elapsed)
		logging.Ctx(r.Context()).Error().Err(err).Msg("Movie ingestion failure")
		rw.Error(http.StatusInternalServerError, ErrCodeInternal, "ingestion failed")
	}
}

// Movies lists watched movies, most recent first.
func (h *Handler) Movies(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	limit, offset, err := listParams(r)
	if err != nil {
		rw.Error(http.StatusBadRequest, ErrCodeValidation, err.Error())
		return
	}

	movies, err := h.store.ListMovies(r.Context(), limit, offset)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to list movies")
		rw.DatabaseError("failed to list movies")
		return
	}

	rw.Success(movies)
}

// MovieByLetterboxdID fetches one movie by its external identifier.
func (h *Handler) MovieByLetterboxdID(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	letterboxdID := chi.URLParam(r, "letterboxdID")

	movie, err := h.store.GetMovieByLetterboxdID(r.Context(), letterboxdID)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Str("letterboxd_id", letterboxdID).Msg("Movie lookup failed")
		rw.DatabaseError("movie lookup failed")
		return
	}
	if movie == nil {
		rw.NotFound("movie not found")
		return
	}

	rw.Success(movie)
}

// MovieCount returns the number of watched movies; with ?rated=true,
// only movies that carry a rating.
func (h *Handler) MovieCount(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var (
		count int
		err   error
	)
	if r.URL.Query().Get("rated") == "true" {
		count, err = h.store.CountRatedMovies(r.Context())
	} else {
		count, err = h.store.CountMovies(r.Context())
	}
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Movie count failed")
		rw.DatabaseError("movie count failed")
		return
	}

	rw.Success(map[string]int{"count": count})
}

func listParams(r *http.Request) (limit, offset int, err error) {
	limit = defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return 0, 0, errors.New("limit must be a positive integer")
		}
		if limit > maxListLimit {
			limit = maxListLimit
		}
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		offset, err = strconv.Atoi(raw)
		if err != nil || offset < 0 {
			return 0, 0, errors.New("offset must be a non-negative integer")
		}
	}
	return limit, offset, nil
}
