// Vitrine - Personal Media Activity Tracker
// Copyright 2026 M. Croft
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mcroft/vitrine

// Package lastfm defines typed records for the audioscrobbler API
// responses Vitrine consumes: user.gettopalbums, user.getweeklyalbumchart,
// and album.getinfo. The upstream wire format uses "#text" keys for
// polymorphic text nodes and "@attr" keys for attribute bags; counts
// arrive as decimal strings.
package lastfm

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// IntString decodes an integer that the upstream serializes as either a
// JSON number or a decimal string.
type IntString int

// UnmarshalJSON implements json.Unmarshaler.
func (n *IntString) UnmarshalJSON(data []byte) error {
	s := string(bytes.TrimSpace(data))
	if s == "null" || s == `""` {
		*n = 0
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		unquoted, err := strconv.Unquote(s)
		if err != nil {
			return fmt.Errorf("invalid count %s: %w", s, err)
		}
		v, err := strconv.Atoi(strings.TrimSpace(unquoted))
		if err != nil {
			return fmt.Errorf("count %q is not numeric: %w", unquoted, err)
		}
		*n = IntString(v)
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("count %s is not numeric: %w", s, err)
	}
	*n = IntString(v)
	return nil
}

// Int returns the decoded value as a plain int.
func (n IntString) Int() int { return int(n) }

// Image is one entry of the upstream image-size array. Size is one of
// "small", "medium", "large", "extralarge", "mega" in that array order.
type Image struct {
	URL  string `json:"#text"`
	Size string `json:"size"`
}

// TopAlbumsResponse wraps user.gettopalbums.
type TopAlbumsResponse struct {
	TopAlbums TopAlbums `json:"topalbums"`
}

type TopAlbums struct {
	Album []TopAlbum    `json:"album"`
	Attr  TopAlbumsAttr `json:"@attr"`
}

type TopAlbumsAttr struct {
	User       string `json:"user"`
	Page       string `json:"page"`
	PerPage    string `json:"perPage"`
	TotalPages string `json:"totalPages"`
	Total      string `json:"total"`
}

// TopAlbum is one all-time chart entry. The artist is a structured
// object here, unlike the weekly chart.
type TopAlbum struct {
	Artist    TopAlbumArtist `json:"artist"`
	Image     []Image        `json:"image"`
	MBID      string         `json:"mbid"`
	URL       string         `json:"url"`
	Playcount IntString      `json:"playcount"`
	Name      string         `json:"name"`
	Attr      RankAttr       `json:"@attr"`
}

type TopAlbumArtist struct {
	Name string `json:"name"`
	MBID string `json:"mbid"`
	URL  string `json:"url"`
}

// WeeklyAlbumChartResponse wraps user.getweeklyalbumchart.
type WeeklyAlbumChartResponse struct {
	WeeklyAlbumChart WeeklyAlbumChart `json:"weeklyalbumchart"`
}

type WeeklyAlbumChart struct {
	Album []WeeklyAlbum   `json:"album"`
	Attr  WeeklyChartAttr `json:"@attr"`
}

type WeeklyChartAttr struct {
	User string `json:"user"`
	From string `json:"from"`
	To   string `json:"to"`
}

// WeeklyAlbum is one time-ranged chart entry. Entries arrive already
// ordered descending by play count and carry no image array; cover art
// requires a separate album.getinfo call.
type WeeklyAlbum struct {
	Artist    WeeklyArtist `json:"artist"`
	MBID      string       `json:"mbid"`
	Playcount IntString    `json:"playcount"`
	URL       string       `json:"url"`
	Name      string       `json:"name"`
	Attr      RankAttr     `json:"@attr"`
}

// WeeklyArtist carries the artist name in a "#text" node.
type WeeklyArtist struct {
	MBID string `json:"mbid"`
	Name string `json:"#text"`
}

type RankAttr struct {
	Rank string `json:"rank"`
}

// AlbumInfoResponse wraps album.getinfo.
type AlbumInfoResponse struct {
	Album *AlbumInfo `json:"album"`
}

// AlbumInfo is the detailed album record. Tracks may be absent for
// albums the upstream has no track listing for.
type AlbumInfo struct {
	Name      string    `json:"name"`
	Artist    string    `json:"artist"`
	MBID      string    `json:"mbid"`
	URL       string    `json:"url"`
	Image     []Image   `json:"image"`
	Listeners IntString `json:"listeners"`
	Playcount IntString `json:"playcount"`
	Tracks    *Tracks   `json:"tracks,omitempty"`
}

type Tracks struct {
	Track []Track `json:"track"`
}

type Track struct {
	Name     string    `json:"name"`
	URL      string    `json:"url"`
	Duration IntString `json:"duration"`
	Attr     RankAttr  `json:"@attr"`
}

// CoverArtIndex is the position in the image-size array treated as the
// canonical cover art ("extralarge").
const CoverArtIndex = 3

// CoverArt returns the URL at CoverArtIndex, or an empty string when
// the array is shorter than expected. Absence of art is a documented
// default, not a failure.
func CoverArt(images []Image) string {
	if len(images) <= CoverArtIndex {
		return ""
	}
	return images[CoverArtIndex].URL
}
