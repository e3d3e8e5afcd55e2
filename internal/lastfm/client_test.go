// Vitrine - Personal Media Activity Tracker
// Copyright 2026 M. Croft
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mcroft/vitrine

package lastfm

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mcroft/vitrine/internal/config"
)

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(&config.LastfmConfig{
		URL:               srv.URL + "/2.0/",
		User:              "mcroft",
		APIKey:            "test-key",
		Timeout:           5 * time.Second,
		MaxRetries:        3,
		RetryBaseDelay:    time.Millisecond,
		RequestsPerSecond: 1000,
	})
}

func TestGetWeeklyAlbumChartParams(t *testing.T) {
	t.Parallel()

	var gotQuery map[string]string
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		gotQuery = map[string]string{
			"method":  q.Get("method"),
			"user":    q.Get("user"),
			"api_key": q.Get("api_key"),
			"format":  q.Get("format"),
			"from":    q.Get("from"),
			"to":      q.Get("to"),
		}
		_, _ = w.Write([]byte(`{"weeklyalbumchart": {"album": [], "@attr": {"user": "mcroft", "from": "1", "to": "2"}}}`))
	}))

	resp, err := client.GetWeeklyAlbumChart(context.Background(), 1640995200, 1672531200)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if len(resp.WeeklyAlbumChart.Album) != 0 {
		t.Errorf("expected empty chart, got %d entries", len(resp.WeeklyAlbumChart.Album))
	}

	want := map[string]string{
		"method":  "user.getweeklyalbumchart",
		"user":    "mcroft",
		"api_key": "test-key",
		"format":  "json",
		"from":    "1640995200",
		"to":      "1672531200",
	}
	for k, v := range want {
		if gotQuery[k] != v {
			t.Errorf("query param %s = %q, want %q", k, gotQuery[k], v)
		}
	}
}

func TestGetTopAlbums(t *testing.T) {
	t.Parallel()

	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("method"); got != "user.gettopalbums" {
			t.Errorf("unexpected method param %q", got)
		}
		if got := r.URL.Query().Get("limit"); got != "12" {
			t.Errorf("unexpected limit param %q", got)
		}
		_, _ = w.Write([]byte(`{"topalbums": {"album": [
			{"artist": {"name": "Portishead"}, "image": [], "url": "u1", "playcount": "913", "name": "Dummy", "@attr": {"rank": "1"}}
		], "@attr": {"user": "mcroft"}}}`))
	}))

	resp, err := client.GetTopAlbums(context.Background(), 12)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if len(resp.TopAlbums.Album) != 1 {
		t.Fatalf("expected 1 album, got %d", len(resp.TopAlbums.Album))
	}
	if resp.TopAlbums.Album[0].Playcount.Int() != 913 {
		t.Errorf("unexpected playcount %d", resp.TopAlbums.Album[0].Playcount.Int())
	}
}

func TestGetAlbumInfoNotFound(t *testing.T) {
	t.Parallel()

	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error": 6, "message": "Album not found"}`))
	}))

	_, err := client.GetAlbumInfo(context.Background(), "Nobody", "Nothing")
	if !errors.Is(err, ErrAlbumNotFound) {
		t.Errorf("expected ErrAlbumNotFound, got %v", err)
	}
}

func TestRetryOnServerError(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= 2 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"album": {"name": "Dummy", "artist": "Portishead", "url": "u1", "image": []}}`))
	}))

	info, err := client.GetAlbumInfo(context.Background(), "Portishead", "Dummy")
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if info.Name != "Dummy" {
		t.Errorf("unexpected album %q", info.Name)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("expected 3 attempts, got %d", got)
	}
}

func TestRetriesExhausted(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))

	_, err := client.GetTopAlbums(context.Background(), 5)
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if got := calls.Load(); got != 4 {
		t.Errorf("expected 4 attempts (1 + 3 retries), got %d", got)
	}
}

func TestRateLimitHonorsRetryAfter(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"topalbums": {"album": [], "@attr": {}}}`))
	}))

	if _, err := client.GetTopAlbums(context.Background(), 5); err != nil {
		t.Fatalf("expected success after rate limit retry, got %v", err)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("expected 2 attempts, got %d", got)
	}
}

func TestNonOKStatusIsError(t *testing.T) {
	t.Parallel()

	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error": 10, "message": "Invalid API key"}`))
	}))

	_, err := client.GetTopAlbums(context.Background(), 5)
	if err == nil {
		t.Fatal("expected error for 403 response")
	}
}

func TestContextCancellation(t *testing.T) {
	t.Parallel()

	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.GetTopAlbums(ctx, 5)
	if err == nil {
		t.Fatal("expected error from cancelled context")
	}
}
