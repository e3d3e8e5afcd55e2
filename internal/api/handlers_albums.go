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

	"github.com/mcroft/vitrine/internal/charts"
	"github.com/mcroft/vitrine/internal/logging"
	"github.com/mcroft/vitrine/internal/models"
)

const (
	defaultAlbumLimit = 50
	maxAlbumLimit     = 500
	minChartYear      = 2002 // scrobbling service launch year
)

// Albums serves ranked album charts. The window query parameter
// selects the aggregation: "all" (default) for the all-time top
// albums, or a four-digit year for that calendar year's chart.
func (h *Handler) Albums(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	limit := defaultAlbumLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			rw.Error(http.StatusBadRequest, ErrCodeValidation, "limit must be a positive integer")
			return
		}
		limit = parsed
		if limit > maxAlbumLimit {
			limit = maxAlbumLimit
		}
	}

	window := r.URL.Query().Get("window")

	var (
		albums []models.EnrichedAlbum
		err    error
	)
	switch {
	case window == "" || window == "all":
		albums, err = h.charts.AllTimeTopAlbums(r.Context(), limit)
	default:
		year, yearErr := parseChartYear(window)
		if yearErr != nil {
			rw.Error(http.StatusBadRequest, ErrCodeValidation, yearErr.Error())
			return
		}
		albums, err = h.charts.AlbumsForYear(r.Context(), year, limit)
	}

	if err != nil {
		var uerr *charts.UpstreamError
		if errors.As(err, &uerr) {
			logging.Ctx(r.Context()).Error().Err(err).Str("window", window).Msg("Album chart fetch failed")
			rw.Error(http.StatusBadGateway, ErrCodeExternalService, "listening service unavailable")
			return
		}
		logging.Ctx(r.Context()).Error().Err(err).Str("window", window).Msg("Album chart assembly failed")
		rw.DatabaseError("album chart assembly failed")
		return
	}

	rw.Success(albums)
}

func parseChartYear(window string) (int, error) {
	year, err := strconv.Atoi(window)
	if err != nil {
		return 0, errors.New("window must be \"all\" or a four-digit year")
	}
	if year < minChartYear || year > time.Now().UTC().Year() {
		return 0, errors.New("year out of range")
	}
	return year, nil
}
