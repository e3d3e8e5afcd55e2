// Vitrine - Personal Media Activity Tracker
// Copyright 2026 M. Croft
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mcroft/vitrine

package ingest

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"
)

// filmMarker is the fixed path segment preceding the external catalog
// identifier in a Letterboxd film URL.
const filmMarker = "film/"

// imgSrcPattern matches the src attribute of the first HTML image tag
// in a free-text description.
var imgSrcPattern = regexp.MustCompile(`(?i)<img[^>]+src=["']([^"']+)["']`)

// ExtractLetterboxdID extracts the external catalog identifier from a
// film URL: the path component between the "film/" marker and the next
// slash. Both a missing marker and a missing trailing slash are hard
// failures since the identifier is the dedup key.
func ExtractLetterboxdID(rawURL string) (string, error) {
	idx := strings.Index(rawURL, filmMarker)
	if idx < 0 {
		return "", &ParseError{Msg: fmt.Sprintf("no %q marker in URL %q", filmMarker, rawURL)}
	}

	rest := rawURL[idx+len(filmMarker):]
	slash := strings.Index(rest, "/")
	if slash < 0 {
		return "", &ParseError{Msg: fmt.Sprintf("no slash after identifier in URL %q", rawURL)}
	}

	id := rest[:slash]
	if id == "" {
		return "", &ParseError{Msg: fmt.Sprintf("empty identifier in URL %q", rawURL)}
	}

	return id, nil
}

// NormalizeLetterboxdURL strips any locale/user path prefix before the
// "film/" marker so differently-prefixed URLs for the same catalog
// entry canonicalize identically.
func NormalizeLetterboxdURL(rawURL string) (string, error) {
	idx := strings.Index(rawURL, filmMarker)
	if idx < 0 {
		return "", &ParseError{Msg: fmt.Sprintf("no %q marker in URL %q", filmMarker, rawURL)}
	}

	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return "", &ParseError{Msg: fmt.Sprintf("unparseable URL %q", rawURL)}
	}

	return fmt.Sprintf("%s://%s/%s", parsed.Scheme, parsed.Host, rawURL[idx:]), nil
}

// ExtractPosterURL scans a description fragment for the first HTML
// image tag and returns its src attribute. Absence is not an error: a
// description without artwork yields nil.
func ExtractPosterURL(description string) *string {
	m := imgSrcPattern.FindStringSubmatch(description)
	if m == nil {
		return nil
	}
	return &m[1]
}

// ParseWatchedDate normalizes a date-only string to a UTC midnight
// timestamp.
func ParseWatchedDate(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, &ValidationError{Msg: fmt.Sprintf("invalid watched date %q", s), Err: err}
	}
	return t.UTC(), nil
}
