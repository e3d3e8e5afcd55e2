// Vitrine - Personal Media Activity Tracker
// Copyright 2026 M. Croft
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mcroft/vitrine

// Package models defines the data structures shared across Vitrine:
// canonical movie records, album chart entries, cooking log entries,
// and the API response envelope.
package models

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Movie is the canonical persisted record for a logged film.
//
// LetterboxdID is the external catalog identifier extracted from the
// source URL and is the dedup key: at most one record exists per ID.
// On repeat sightings of the same ID only Rating mutates; every other
// field keeps its first-sighting value.
type Movie struct {
	ID            uuid.UUID `json:"id"`
	LetterboxdID  string    `json:"letterboxd_id"`
	Title         string    `json:"title"`
	ReleaseYear   *int      `json:"release_year,omitempty"`
	Rating        *float64  `json:"rating,omitempty"`
	PosterURL     *string   `json:"poster_url,omitempty"`
	LetterboxdURL string    `json:"letterboxd_url"`
	WatchedAt     time.Time `json:"watched_at"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// MovieWatchEvent is the inbound webhook payload for a "movie watched"
// notification. It is transient: consumed once per request, never
// persisted as-is.
//
// Rating and ReleaseYear arrive as either JSON strings or numbers
// depending on the producer version, so both use flexible decode types.
// Description is an HTML fragment that may embed the poster image.
type MovieWatchEvent struct {
	Title         string    `json:"title" validate:"required,min=1"`
	ReleaseYear   FlexInt   `json:"releaseYear"`
	Rating        FlexFloat `json:"rating"`
	LetterboxdURL string    `json:"letterboxdUrl" validate:"required,url"`
	WatchedAt     string    `json:"watchedAt" validate:"required"`
	Description   string    `json:"description"`
}

// FlexFloat decodes a JSON number, numeric string, empty string, or
// null into a nullable float. Empty and null both yield a nil value,
// never zero.
type FlexFloat struct {
	Value *float64
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	s := string(bytes.TrimSpace(data))
	if s == "null" {
		f.Value = nil
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		unquoted, err := strconv.Unquote(s)
		if err != nil {
			return fmt.Errorf("invalid string rating %s: %w", s, err)
		}
		unquoted = strings.TrimSpace(unquoted)
		if unquoted == "" {
			f.Value = nil
			return nil
		}
		v, err := strconv.ParseFloat(unquoted, 64)
		if err != nil {
			return fmt.Errorf("rating %q is not numeric: %w", unquoted, err)
		}
		f.Value = &v
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("rating %s is not numeric: %w", s, err)
	}
	f.Value = &v
	return nil
}

// MarshalJSON implements json.Marshaler.
func (f FlexFloat) MarshalJSON() ([]byte, error) {
	if f.Value == nil {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(*f.Value, 'f', -1, 64)), nil
}

// FlexInt decodes a JSON number, numeric string, empty string, or null
// into a nullable int.
type FlexInt struct {
	Value *int
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexInt) UnmarshalJSON(data []byte) error {
	s := string(bytes.TrimSpace(data))
	if s == "null" {
		f.Value = nil
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		unquoted, err := strconv.Unquote(s)
		if err != nil {
			return fmt.Errorf("invalid string year %s: %w", s, err)
		}
		unquoted = strings.TrimSpace(unquoted)
		if unquoted == "" {
			f.Value = nil
			return nil
		}
		v, err := strconv.Atoi(unquoted)
		if err != nil {
			return fmt.Errorf("year %q is not numeric: %w", unquoted, err)
		}
		f.Value = &v
		return nil
	}
	// Producers sometimes send the year as a float (e.g. 2021.0).
	fv, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("year %s is not numeric: %w", s, err)
	}
	v := int(fv)
	f.Value = &v
	return nil
}

// MarshalJSON implements json.Marshaler.
func (f FlexInt) MarshalJSON() ([]byte, error) {
	if f.Value == nil {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(*f.Value)), nil
}
