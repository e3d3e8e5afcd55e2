// Vitrine - Personal Media Activity Tracker
// Copyright 2026 M. Croft
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mcroft/vitrine

package charts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mcroft/vitrine/internal/models"
	lfm "github.com/mcroft/vitrine/internal/models/lastfm"
)

// fakeClient serves canned chart and album-info responses and counts
// outbound album-info calls.
type fakeClient struct {
	mu             sync.Mutex
	topAlbums      *lfm.TopAlbumsResponse
	weeklyChart    *lfm.WeeklyAlbumChartResponse
	albumInfo      map[string]*lfm.AlbumInfo
	albumInfoCalls int
	chartErr       error
}

func (f *fakeClient) GetTopAlbums(_ context.Context, _ int) (*lfm.TopAlbumsResponse, error) {
	if f.chartErr != nil {
		return nil, f.chartErr
	}
	return f.topAlbums, nil
}

func (f *fakeClient) GetWeeklyAlbumChart(_ context.Context, _, _ int64) (*lfm.WeeklyAlbumChartResponse, error) {
	if f.chartErr != nil {
		return nil, f.chartErr
	}
	return f.weeklyChart, nil
}

func (f *fakeClient) GetAlbumInfo(_ context.Context, artist, album string) (*lfm.AlbumInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.albumInfoCalls++
	info, ok := f.albumInfo[artist+"/"+album]
	if !ok {
		return nil, fmt.Errorf("album not found: %s - %s", artist, album)
	}
	return info, nil
}

func (f *fakeClient) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.albumInfoCalls
}

// fakeAlbumStore is an in-memory AlbumStore that counts writes.
type fakeAlbumStore struct {
	mu      sync.Mutex
	records map[string]*models.AlbumInfoRecord
	puts    int
}

func newFakeAlbumStore() *fakeAlbumStore {
	return &fakeAlbumStore{records: make(map[string]*models.AlbumInfoRecord)}
}

func (f *fakeAlbumStore) GetAlbumInfo(_ context.Context, url string) (*models.AlbumInfoRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.records[url], nil
}

func (f *fakeAlbumStore) PutAlbumInfo(_ context.Context, rec *models.AlbumInfoRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.puts++
	f.records[rec.URL] = rec
	return nil
}

func weeklyEntry(artist, name, url string, playcount int) lfm.WeeklyAlbum {
	return lfm.WeeklyAlbum{
		Artist:    lfm.WeeklyArtist{Name: artist},
		Name:      name,
		URL:       url,
		Playcount: lfm.IntString(playcount),
	}
}

func artImages(url string) []lfm.Image {
	return []lfm.Image{
		{URL: "s.jpg", Size: "small"},
		{URL: "m.jpg", Size: "medium"},
		{URL: "l.jpg", Size: "large"},
		{URL: url, Size: "extralarge"},
	}
}

func TestYearBounds(t *testing.T) {
	t.Parallel()

	from, to := YearBounds(2022)
	wantFrom := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC).Unix()
	wantTo := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC).Unix()
	if from != wantFrom || to != wantTo {
		t.Errorf("YearBounds(2022) = (%d, %d), want (%d, %d)", from, to, wantFrom, wantTo)
	}
}

func TestAllTimeTopAlbums(t *testing.T) {
	t.Parallel()

	client := &fakeClient{
		topAlbums: &lfm.TopAlbumsResponse{TopAlbums: lfm.TopAlbums{Album: []lfm.TopAlbum{
			{
				Artist:    lfm.TopAlbumArtist{Name: "Portishead"},
				Name:      "Dummy",
				URL:       "u1",
				Playcount: 913,
				Image:     artImages("dummy.jpg"),
			},
			{
				Artist:    lfm.TopAlbumArtist{Name: "Burial"},
				Name:      "Untrue",
				URL:       "u2",
				Playcount: 700,
				Image:     []lfm.Image{{URL: "only-small.jpg", Size: "small"}},
			},
		}}},
	}

	agg := NewAggregator(client, NewAlbumCache(newFakeAlbumStore()))
	albums, err := agg.AllTimeTopAlbums(context.Background(), 10)
	if err != nil {
		t.Fatalf("aggregation failed: %v", err)
	}

	if len(albums) != 2 {
		t.Fatalf("expected 2 albums, got %d", len(albums))
	}
	if albums[0].ImageURL != "dummy.jpg" {
		t.Errorf("expected embedded cover art, got %q", albums[0].ImageURL)
	}
	// Short image array falls back to empty, never fails.
	if albums[1].ImageURL != "" {
		t.Errorf("expected empty fallback, got %q", albums[1].ImageURL)
	}
	if client.calls() != 0 {
		t.Errorf("all-time path must not call album info, got %d calls", client.calls())
	}
}

func TestAlbumsForYearCacheHitSkipsOutboundCall(t *testing.T) {
	t.Parallel()

	store := newFakeAlbumStore()
	store.records["u1"] = &models.AlbumInfoRecord{URL: "u1", CoverArtURL: "cached.jpg"}

	client := &fakeClient{
		weeklyChart: &lfm.WeeklyAlbumChartResponse{WeeklyAlbumChart: lfm.WeeklyAlbumChart{
			Album: []lfm.WeeklyAlbum{weeklyEntry("Portishead", "Dummy", "u1", 42)},
		}},
	}

	agg := NewAggregator(client, NewAlbumCache(store))
	albums, err := agg.AlbumsForYear(context.Background(), 2022, 10)
	if err != nil {
		t.Fatalf("aggregation failed: %v", err)
	}
	if albums[0].ImageURL != "cached.jpg" {
		t.Errorf("expected cached art, got %q", albums[0].ImageURL)
	}
	if client.calls() != 0 {
		t.Errorf("cache hit must skip outbound call, got %d calls", client.calls())
	}
}

func TestAlbumsForYearCacheHitWithEmptyArt(t *testing.T) {
	t.Parallel()

	store := newFakeAlbumStore()
	store.records["u1"] = &models.AlbumInfoRecord{URL: "u1", CoverArtURL: ""}

	client := &fakeClient{
		weeklyChart: &lfm.WeeklyAlbumChartResponse{WeeklyAlbumChart: lfm.WeeklyAlbumChart{
			Album: []lfm.WeeklyAlbum{weeklyEntry("Burial", "Untrue", "u1", 17)},
		}},
	}

	agg := NewAggregator(client, NewAlbumCache(store))
	albums, err := agg.AlbumsForYear(context.Background(), 2022, 10)
	if err != nil {
		t.Fatalf("aggregation failed: %v", err)
	}
	// Previously-unresolved art is served as-is, no re-fetch.
	if albums[0].ImageURL != "" {
		t.Errorf("expected empty cached art, got %q", albums[0].ImageURL)
	}
	if client.calls() != 0 {
		t.Errorf("expected no outbound calls, got %d", client.calls())
	}
}

func TestAlbumsForYearMissFetchesOncePersistsOnce(t *testing.T) {
	t.Parallel()

	store := newFakeAlbumStore()
	client := &fakeClient{
		weeklyChart: &lfm.WeeklyAlbumChartResponse{WeeklyAlbumChart: lfm.WeeklyAlbumChart{
			Album: []lfm.WeeklyAlbum{weeklyEntry("Portishead", "Dummy", "u1", 42)},
		}},
		albumInfo: map[string]*lfm.AlbumInfo{
			"Portishead/Dummy": {Name: "Dummy", Artist: "Portishead", Image: artImages("dummy.jpg")},
		},
	}

	agg := NewAggregator(client, NewAlbumCache(store))

	albums, err := agg.AlbumsForYear(context.Background(), 2022, 10)
	if err != nil {
		t.Fatalf("first aggregation failed: %v", err)
	}
	if albums[0].ImageURL != "dummy.jpg" {
		t.Errorf("expected fetched art, got %q", albums[0].ImageURL)
	}
	if client.calls() != 1 {
		t.Errorf("expected exactly 1 outbound call, got %d", client.calls())
	}
	if store.puts != 1 {
		t.Errorf("expected exactly 1 persist, got %d", store.puts)
	}

	// A repeat aggregation for the same window stays local.
	if _, err := agg.AlbumsForYear(context.Background(), 2022, 10); err != nil {
		t.Fatalf("second aggregation failed: %v", err)
	}
	if client.calls() != 1 {
		t.Errorf("repeat aggregation must not re-fetch, got %d calls", client.calls())
	}
	if store.puts != 1 {
		t.Errorf("repeat aggregation must not re-persist, got %d puts", store.puts)
	}
}

func TestAlbumsForYearTruncatesAndPreservesOrder(t *testing.T) {
	t.Parallel()

	store := newFakeAlbumStore()
	entries := make([]lfm.WeeklyAlbum, 5)
	info := make(map[string]*lfm.AlbumInfo, 5)
	for i := range entries {
		artist := fmt.Sprintf("Artist%d", i)
		name := fmt.Sprintf("Album%d", i)
		entries[i] = weeklyEntry(artist, name, fmt.Sprintf("u%d", i), 100-i)
		info[artist+"/"+name] = &lfm.AlbumInfo{
			Name: name, Artist: artist, Image: artImages(fmt.Sprintf("art%d.jpg", i)),
		}
	}

	client := &fakeClient{
		weeklyChart: &lfm.WeeklyAlbumChartResponse{WeeklyAlbumChart: lfm.WeeklyAlbumChart{Album: entries}},
		albumInfo:   info,
	}

	agg := NewAggregator(client, NewAlbumCache(store))
	albums, err := agg.AlbumsForYear(context.Background(), 2022, 2)
	if err != nil {
		t.Fatalf("aggregation failed: %v", err)
	}

	if len(albums) != 2 {
		t.Fatalf("expected truncation to 2 entries, got %d", len(albums))
	}
	if albums[0].Artist != "Artist0" || albums[1].Artist != "Artist1" {
		t.Errorf("expected upstream order preserved, got %q then %q", albums[0].Artist, albums[1].Artist)
	}
	if albums[0].ImageURL != "art0.jpg" || albums[1].ImageURL != "art1.jpg" {
		t.Errorf("art misaligned with entries: %q, %q", albums[0].ImageURL, albums[1].ImageURL)
	}
	if client.calls() != 2 {
		t.Errorf("expected 2 outbound calls for 2 misses, got %d", client.calls())
	}
	if store.puts != 2 {
		t.Errorf("expected exactly 2 persists, got %d", store.puts)
	}
}

func TestAlbumsForYearEnrichmentFailureFailsWindow(t *testing.T) {
	t.Parallel()

	store := newFakeAlbumStore()
	client := &fakeClient{
		weeklyChart: &lfm.WeeklyAlbumChartResponse{WeeklyAlbumChart: lfm.WeeklyAlbumChart{
			Album: []lfm.WeeklyAlbum{
				weeklyEntry("Portishead", "Dummy", "u1", 42),
				weeklyEntry("Nobody", "Nothing", "u2", 17),
			},
		}},
		albumInfo: map[string]*lfm.AlbumInfo{
			"Portishead/Dummy": {Name: "Dummy", Artist: "Portishead", Image: artImages("dummy.jpg")},
		},
	}

	agg := NewAggregator(client, NewAlbumCache(store))
	_, err := agg.AlbumsForYear(context.Background(), 2022, 10)

	var uerr *UpstreamError
	if !errors.As(err, &uerr) {
		t.Fatalf("expected *UpstreamError, got %v", err)
	}
	// The failing pair is attributable from the error text.
	if got := uerr.Error(); !strings.Contains(got, "Nobody") || !strings.Contains(got, "Nothing") {
		t.Errorf("expected artist/album context in error, got %q", got)
	}
}

func TestAlbumsForYearChartFetchFailure(t *testing.T) {
	t.Parallel()

	client := &fakeClient{chartErr: errors.New("connection refused")}
	agg := NewAggregator(client, NewAlbumCache(newFakeAlbumStore()))

	_, err := agg.AlbumsForYear(context.Background(), 2022, 10)
	var uerr *UpstreamError
	if !errors.As(err, &uerr) {
		t.Fatalf("expected *UpstreamError, got %v", err)
	}
}

func TestAlbumsForYearMissingAlbumInfoArt(t *testing.T) {
	t.Parallel()

	store := newFakeAlbumStore()
	client := &fakeClient{
		weeklyChart: &lfm.WeeklyAlbumChartResponse{WeeklyAlbumChart: lfm.WeeklyAlbumChart{
			Album: []lfm.WeeklyAlbum{weeklyEntry("Burial", "Untrue", "u1", 17)},
		}},
		albumInfo: map[string]*lfm.AlbumInfo{
			// Response lacks the expected image size.
			"Burial/Untrue": {Name: "Untrue", Artist: "Burial", Image: []lfm.Image{{URL: "s.jpg", Size: "small"}}},
		},
	}

	agg := NewAggregator(client, NewAlbumCache(store))
	albums, err := agg.AlbumsForYear(context.Background(), 2022, 10)
	if err != nil {
		t.Fatalf("aggregation failed: %v", err)
	}
	if albums[0].ImageURL != "" {
		t.Errorf("expected empty string art, got %q", albums[0].ImageURL)
	}
	// The empty result is still cached.
	if store.records["u1"] == nil || store.records["u1"].CoverArtURL != "" {
		t.Errorf("expected persisted record with empty art, got %+v", store.records["u1"])
	}
}
