// Vitrine - Personal Media Activity Tracker
// Copyright 2026 M. Croft
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mcroft/vitrine

package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/mcroft/vitrine/internal/config"
	"github.com/mcroft/vitrine/internal/gate"
	"github.com/mcroft/vitrine/internal/models"
)

// fakeStore is an in-memory Store.
type fakeStore struct {
	movies   []models.Movie
	cooking  []models.CookingEntry
	pingErr  error
	listErr  error
	lastYear *int
}

func (f *fakeStore) GetMovieByLetterboxdID(_ context.Context, id string) (*models.Movie, error) {
	for i := range f.movies {
		if f.movies[i].LetterboxdID == id {
			return &f.movies[i], nil
		}
	}
	return nil, nil
}

func (f *fakeStore) ListMovies(_ context.Context, limit, offset int) ([]models.Movie, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.movies, nil
}

func (f *fakeStore) CountMovies(context.Context) (int, error) { return len(f.movies), nil }

func (f *fakeStore) CountRatedMovies(context.Context) (int, error) {
	n := 0
	for _, m := range f.movies {
		if m.Rating != nil {
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) CreateCookingEntry(_ context.Context, entry *models.CookingEntry) error {
	f.cooking = append(f.cooking, *entry)
	return nil
}

func (f *fakeStore) ListCookingEntries(_ context.Context, year *int) ([]models.CookingEntry, error) {
	f.lastYear = year
	return f.cooking, nil
}

func (f *fakeStore) Ping(context.Context) error { return f.pingErr }

// fakeIngestor records calls and returns canned results.
type fakeIngestor struct {
	calls int
	movie *models.Movie
	err   error
}

func (f *fakeIngestor) Ingest(_ context.Context, _ *models.MovieWatchEvent) (*models.Movie, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.movie, nil
}

// fakeCharts serves canned chart results.
type fakeCharts struct {
	allTime []models.EnrichedAlbum
	yearly  []models.EnrichedAlbum
	err     error

	lastYear  int
	lastLimit int
}

func (f *fakeCharts) AllTimeTopAlbums(_ context.Context, limit int) ([]models.EnrichedAlbum, error) {
	f.lastLimit = limit
	if f.err != nil {
		return nil, f.err
	}
	return f.allTime, nil
}

func (f *fakeCharts) AlbumsForYear(_ context.Context, year, limit int) ([]models.EnrichedAlbum, error) {
	f.lastYear = year
	f.lastLimit = limit
	if f.err != nil {
		return nil, f.err
	}
	return f.yearly, nil
}

type testEnv struct {
	store    *fakeStore
	ingestor *fakeIngestor
	charts   *fakeCharts
	handler  http.Handler
}

const testSecret = "test-webhook-secret"
const testSecretHeader = "x-vitrine-webhook-token"

func newTestEnv(t *testing.T, allowedIPs []string) *testEnv {
	t.Helper()

	store := &fakeStore{}
	ingestor := &fakeIngestor{}
	fcharts := &fakeCharts{}
	access := gate.New(testSecret, testSecretHeader, allowedIPs)

	cfg := &config.Config{
		Security: config.SecurityConfig{
			RateLimitDisabled: true,
		},
		Webhook: config.WebhookConfig{
			Secret:       testSecret,
			SecretHeader: testSecretHeader,
		},
	}

	h := NewHandler(store, ingestor, fcharts, access)
	router := NewRouter(h, cfg)

	return &testEnv{
		store:    store,
		ingestor: ingestor,
		charts:   fcharts,
		handler:  router.Setup(),
	}
}

func (e *testEnv) do(t *testing.T, req *http.Request) (*httptest.ResponseRecorder, *models.APIResponse) {
	t.Helper()
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)

	var resp models.APIResponse
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("response is not valid JSON: %v\n%s", err, rec.Body.String())
		}
	}
	return rec, &resp
}

func sampleMovie() *models.Movie {
	rating := 4.5
	watched := time.Date(2021, 10, 11, 0, 0, 0, 0, time.UTC)
	return &models.Movie{
		ID:            uuid.New(),
		LetterboxdID:  "the-french-dispatch",
		Title:         "The French Dispatch",
		Rating:        &rating,
		LetterboxdURL: "https://letterboxd.com/film/the-french-dispatch/",
		WatchedAt:     watched,
		CreatedAt:     time.Now().UTC(),
		UpdatedAt:     time.Now().UTC(),
	}
}
