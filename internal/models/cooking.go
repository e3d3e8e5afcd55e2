// Vitrine - Personal Media Activity Tracker
// Copyright 2026 M. Croft
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mcroft/vitrine

package models

import (
	"time"

	"github.com/google/uuid"
)

// CookingEntry is a persisted record of a cooked dish.
type CookingEntry struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	ImageURL  *string   `json:"image_url,omitempty"`
	RecipeURL *string   `json:"recipe_url,omitempty"`
	Notes     *string   `json:"notes,omitempty"`
	Rating    *float64  `json:"rating,omitempty"`
	CookedAt  time.Time `json:"cooked_at"`
	CreatedAt time.Time `json:"created_at"`
}

// CookingEntryRequest is the inbound payload for logging a dish.
// CookedAt is a date-only string normalized to UTC midnight on ingest.
type CookingEntryRequest struct {
	Name      string   `json:"name" validate:"required,min=1,max=300"`
	ImageURL  *string  `json:"image_url" validate:"omitempty,url"`
	RecipeURL *string  `json:"recipe_url" validate:"omitempty,url"`
	Notes     *string  `json:"notes"`
	Rating    *float64 `json:"rating" validate:"omitempty,halfstar"`
	CookedAt  string   `json:"cooked_at" validate:"required"`
}
