// Vitrine - Personal Media Activity Tracker
// Copyright 2026 M. Croft
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mcroft/vitrine

package models

import (
	"time"
)

// EnrichedAlbum is one entry in an assembled listening chart, in
// upstream chart order.
type EnrichedAlbum struct {
	Artist    string `json:"artist"`
	Name      string `json:"name"`
	ImageURL  string `json:"image_url"`
	Playcount int    `json:"playcount"`
	URL       string `json:"url"`
}

// AlbumInfoRecord is the persisted enrichment cache entry, keyed by the
// album's external URL. CoverArtURL is an empty string when the source
// offered no usable image, never null; once cached a record is never
// updated by the aggregation pipeline.
type AlbumInfoRecord struct {
	URL         string    `json:"url"`
	Artist      string    `json:"artist"`
	Name        string    `json:"name"`
	MBID        string    `json:"mbid,omitempty"`
	TrackCount  *int      `json:"track_count,omitempty"`
	CoverArtURL string    `json:"cover_art_url"`
	CreatedAt   time.Time `json:"created_at"`
}
