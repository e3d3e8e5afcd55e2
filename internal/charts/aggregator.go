// Vitrine - Personal Media Activity Tracker
// Copyright 2026 M. Croft
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mcroft/vitrine

// Package charts implements the listening aggregation pipeline: it
// fetches chart data from the scrobbling API and assembles ranked album
// lists, enriching year-windowed entries with cover art via cache-aside
// lookups against the local store.
package charts

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mcroft/vitrine/internal/lastfm"
	"github.com/mcroft/vitrine/internal/logging"
	"github.com/mcroft/vitrine/internal/models"
	lfm "github.com/mcroft/vitrine/internal/models/lastfm"
)

// Aggregator assembles ordered album charts. The client and cache are
// passed in explicitly.
type Aggregator struct {
	client lastfm.ClientInterface
	cache  *AlbumCache
}

// NewAggregator creates an aggregator.
func NewAggregator(client lastfm.ClientInterface, cache *AlbumCache) *Aggregator {
	return &Aggregator{client: client, cache: cache}
}

// YearBounds returns the Unix-second boundaries of
// [Jan 1 00:00:00 UTC of year, Jan 1 00:00:00 UTC of year+1).
func YearBounds(year int) (from, to int64) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return start.Unix(), start.AddDate(1, 0, 0).Unix()
}

// AllTimeTopAlbums fetches the global top-N chart. Those responses
// already embed a usable image array, so no enrichment runs; an
// out-of-range cover index falls back to an empty URL.
func (a *Aggregator) AllTimeTopAlbums(ctx context.Context, limit int) ([]models.EnrichedAlbum, error) {
	resp, err := a.client.GetTopAlbums(ctx, limit)
	if err != nil {
		return nil, &UpstreamError{Msg: "top albums fetch", Err: err}
	}

	albums := make([]models.EnrichedAlbum, 0, len(resp.TopAlbums.Album))
	for _, entry := range resp.TopAlbums.Album {
		albums = append(albums, models.EnrichedAlbum{
			Artist:    entry.Artist.Name,
			Name:      entry.Name,
			ImageURL:  lfm.CoverArt(entry.Image),
			Playcount: entry.Playcount.Int(),
			URL:       entry.URL,
		})
	}

	return albums, nil
}

// AlbumsForYear fetches the weekly album chart for one calendar year
// (UTC) and enriches each entry with cover art. Upstream order is
// already descending by play count, so the result is the first limit
// entries in that order with no re-sort.
//
// Any single enrichment failure fails the whole window: the caller gets
// one error, not partial results. The failing artist/album pair is in
// the error and the log.
func (a *Aggregator) AlbumsForYear(ctx context.Context, year, limit int) ([]models.EnrichedAlbum, error) {
	from, to := YearBounds(year)

	resp, err := a.client.GetWeeklyAlbumChart(ctx, from, to)
	if err != nil {
		return nil, &UpstreamError{Msg: fmt.Sprintf("weekly chart fetch for %d", year), Err: err}
	}

	entries := resp.WeeklyAlbumChart.Album
	if len(entries) > limit {
		entries = entries[:limit]
	}

	// Enrichment lookups for distinct entries are independent; run them
	// concurrently and write each result to its own index so the final
	// order matches the chart regardless of completion order.
	albums := make([]models.EnrichedAlbum, len(entries))
	errs := make([]error, len(entries))
	var wg sync.WaitGroup

	for i, entry := range entries {
		wg.Add(1)
		go func(i int, entry lfm.WeeklyAlbum) {
			defer wg.Done()
			imageURL, err := a.resolveCoverArt(ctx, entry)
			if err != nil {
				errs[i] = err
				return
			}
			albums[i] = models.EnrichedAlbum{
				Artist:    entry.Artist.Name,
				Name:      entry.Name,
				ImageURL:  imageURL,
				Playcount: entry.Playcount.Int(),
				URL:       entry.URL,
			}
		}(i, entry)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return albums, nil
}

// resolveCoverArt performs the cache-aside lookup for one chart entry.
// Hit: the stored URL is used (possibly empty if previously
// unresolved) with no outbound call. Miss: one album-info call, then
// the result is cached so repeat aggregations stay local.
func (a *Aggregator) resolveCoverArt(ctx context.Context, entry lfm.WeeklyAlbum) (string, error) {
	cached, err := a.cache.Get(ctx, entry.URL)
	if err != nil {
		return "", err
	}
	if cached != nil {
		return cached.CoverArtURL, nil
	}

	info, err := a.client.GetAlbumInfo(ctx, entry.Artist.Name, entry.Name)
	if err != nil {
		logging.Ctx(ctx).Error().
			Str("artist", entry.Artist.Name).
			Str("album", entry.Name).
			Err(err).
			Msg("Album enrichment failed")
		return "", &UpstreamError{
			Msg: fmt.Sprintf("album info for %s - %s", entry.Artist.Name, entry.Name),
			Err: err,
		}
	}

	rec := &models.AlbumInfoRecord{
		URL:         entry.URL,
		Artist:      entry.Artist.Name,
		Name:        entry.Name,
		MBID:        info.MBID,
		CoverArtURL: lfm.CoverArt(info.Image),
	}
	if info.Tracks != nil {
		count := len(info.Tracks.Track)
		rec.TrackCount = &count
	}

	if err := a.cache.Put(ctx, rec); err != nil {
		return "", err
	}

	return rec.CoverArtURL, nil
}
