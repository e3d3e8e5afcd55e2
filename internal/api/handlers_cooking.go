// Vitrine - Personal Media Activity Tracker
// Copyright 2026 M. Croft
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mcroft/vitrine

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/mcroft/vitrine/internal/logging"
	"github.com/mcroft/vitrine/internal/metrics"
	"github.com/mcroft/vitrine/internal/models"
	"github.com/mcroft/vitrine/internal/validation"
)

// CookingCreate logs a cooked dish. Writes are IP-gated: callers
// outside the allowlist get a 403 and no record is created.
func (h *Handler) CookingCreate(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	decision := h.access.Authorize(r)
	if !decision.IPAllowed {
		metrics.RecordAccessDenial("ip")
		logging.Ctx(r.Context()).Warn().Str("client_ip", decision.ClientIP).Msg("Cooking write rejected: IP not allowed")
		rw.Forbidden("client address not allowed")
		return
	}

	var req models.CookingEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rw.Error(http.StatusBadRequest, ErrCodeValidation, "malformed request body")
		return
	}

	if verr := validation.ValidateStruct(&req); verr != nil {
		apiErr := verr.ToAPIError()
		rw.ErrorWithDetails(http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
		return
	}

	cookedAt, err := time.Parse("2006-01-02", req.CookedAt)
	if err != nil {
		rw.Error(http.StatusBadRequest, ErrCodeValidation, "cooked_at must be a YYYY-MM-DD date")
		return
	}

	entry := &models.CookingEntry{
		ID:        uuid.New(),
		Name:      req.Name,
		ImageURL:  req.ImageURL,
		RecipeURL: req.RecipeURL,
		Notes:     req.Notes,
		Rating:    req.Rating,
		CookedAt:  cookedAt.UTC(),
		CreatedAt: time.Now().UTC(),
	}

	if err := h.store.CreateCookingEntry(r.Context(), entry); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to store cooking entry")
		rw.DatabaseError("failed to store cooking entry")
		return
	}

	logging.Ctx(r.Context()).Info().Str("name", entry.Name).Msg("Cooking entry created")
	rw.Created(entry)
}

// CookingList returns logged dishes, most recent first; ?year=Y
// restricts the list to one UTC calendar year.
func (h *Handler) CookingList(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var year *int
	if raw := r.URL.Query().Get("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			rw.Error(http.StatusBadRequest, ErrCodeValidation, "year must be an integer")
			return
		}
		year = &parsed
	}

	entries, err := h.store.ListCookingEntries(r.Context(), year)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to list cooking entries")
		rw.DatabaseError("failed to list cooking entries")
		return
	}

	rw.Success(entries)
}

// CookingAllowed reports whether the caller passes the IP gate, so a
// client can hide the write UI instead of surfacing a 403 later.
func (h *Handler) CookingAllowed(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	rw.Success(map[string]bool{"allowed": h.access.Authorize(r).IPAllowed})
}
