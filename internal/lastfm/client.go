// Vitrine - Personal Media Activity Tracker
// Copyright 2026 M. Croft
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mcroft/vitrine

// Package lastfm provides the outbound client for the audioscrobbler
// HTTP API. All calls are GETs against a single endpoint selected by a
// method parameter; the client adds bounded retry with exponential
// backoff on transient failures and client-side rate limiting. A
// circuit breaker wrapper is available for production use.
package lastfm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/mcroft/vitrine/internal/config"
	"github.com/mcroft/vitrine/internal/metrics"
	lfm "github.com/mcroft/vitrine/internal/models/lastfm"
)

// ErrAlbumNotFound is returned when album.getinfo yields no album for
// an artist/name pair.
var ErrAlbumNotFound = errors.New("album not found")

// maxErrorBodySize limits how much of an error response body is read
// for diagnostics.
const maxErrorBodySize = 64 * 1024

// ClientInterface defines the audioscrobbler operations Vitrine uses.
// Implemented by Client and CircuitBreakerClient for production and by
// fakes in tests.
//
// All methods are safe for concurrent use.
type ClientInterface interface {
	GetTopAlbums(ctx context.Context, limit int) (*lfm.TopAlbumsResponse, error)
	GetWeeklyAlbumChart(ctx context.Context, from, to int64) (*lfm.WeeklyAlbumChartResponse, error)
	GetAlbumInfo(ctx context.Context, artist, album string) (*lfm.AlbumInfo, error)
}

// Client handles communication with the audioscrobbler API.
type Client struct {
	baseURL        string
	user           string
	apiKey         string
	client         *http.Client
	limiter        *rate.Limiter
	maxRetries     int
	retryBaseDelay time.Duration
}

// NewClient creates a client from configuration. Timeout, retry count,
// and request rate all come from config so tests can tighten them.
func NewClient(cfg *config.LastfmConfig) *Client {
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 5
	}
	return &Client{
		baseURL: cfg.URL,
		user:    cfg.User,
		apiKey:  cfg.APIKey,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		limiter:        rate.NewLimiter(rate.Limit(rps), 1),
		maxRetries:     cfg.MaxRetries,
		retryBaseDelay: cfg.RetryBaseDelay,
	}
}

// GetTopAlbums fetches the user's all-time top albums, limit-bounded.
func (c *Client) GetTopAlbums(ctx context.Context, limit int) (*lfm.TopAlbumsResponse, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))

	var resp lfm.TopAlbumsResponse
	if err := c.makeRequest(ctx, "user.gettopalbums", params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetWeeklyAlbumChart fetches the album chart for a Unix-second range.
// Entries arrive ordered descending by play count.
func (c *Client) GetWeeklyAlbumChart(ctx context.Context, from, to int64) (*lfm.WeeklyAlbumChartResponse, error) {
	params := url.Values{}
	params.Set("from", strconv.FormatInt(from, 10))
	params.Set("to", strconv.FormatInt(to, 10))

	var resp lfm.WeeklyAlbumChartResponse
	if err := c.makeRequest(ctx, "user.getweeklyalbumchart", params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetAlbumInfo resolves album metadata by artist and album name.
// Returns ErrAlbumNotFound (wrapped with the pair for context) when the
// upstream has no record.
func (c *Client) GetAlbumInfo(ctx context.Context, artist, album string) (*lfm.AlbumInfo, error) {
	params := url.Values{}
	params.Set("artist", artist)
	params.Set("album", album)

	var resp lfm.AlbumInfoResponse
	if err := c.makeRequest(ctx, "album.getinfo", params, &resp); err != nil {
		return nil, err
	}
	if resp.Album == nil {
		return nil, fmt.Errorf("%w: %s - %s", ErrAlbumNotFound, artist, album)
	}
	return resp.Album, nil
}

// makeRequest handles the common request boilerplate: it builds the URL
// with method/user/api_key/format parameters, performs the GET with
// retry, checks HTTP status, and decodes the JSON body into result.
func (c *Client) makeRequest(ctx context.Context, method string, params url.Values, result interface{}) error {
	if params == nil {
		params = url.Values{}
	}
	params.Set("method", method)
	params.Set("user", c.user)
	params.Set("api_key", c.apiKey)
	params.Set("format", "json")

	reqURL := fmt.Sprintf("%s?%s", c.baseURL, params.Encode())

	start := time.Now()
	resp, err := c.doRequestWithRetry(ctx, reqURL)
	metrics.RecordLastfmRequest(method, time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to make %s request: %w", method, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body := readBodyForError(resp.Body)
		return fmt.Errorf("%s request failed with status %d: %s", method, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", method, err)
	}

	return nil
}

// doRequestWithRetry performs a GET with client-side rate limiting and
// bounded retry. Transport errors, 5xx responses, and HTTP 429 are
// retried with exponential backoff (base delay doubling per attempt);
// 429 honors a Retry-After seconds header when present. Retrying is
// safe because every upstream operation is an idempotent GET.
func (c *Client) doRequestWithRetry(ctx context.Context, reqURL string) (*http.Response, error) {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("HTTP request failed: %w", err)
			if attempt == c.maxRetries {
				break
			}
			metrics.LastfmRetries.Inc()
			if !c.waitBackoff(ctx, attempt, 0) {
				return nil, ctx.Err()
			}
			continue
		}

		if resp.StatusCode < http.StatusInternalServerError && resp.StatusCode != http.StatusTooManyRequests {
			return resp, nil
		}

		// Transient upstream failure - drain and retry.
		lastErr = fmt.Errorf("transient upstream status %d", resp.StatusCode)
		retryAfter := time.Duration(0)
		if resp.StatusCode == http.StatusTooManyRequests {
			if ra := resp.Header.Get("Retry-After"); ra != "" {
				if seconds, err := strconv.Atoi(ra); err == nil {
					retryAfter = time.Duration(seconds) * time.Second
				}
			}
		}
		_ = resp.Body.Close()

		if attempt == c.maxRetries {
			break
		}
		metrics.LastfmRetries.Inc()
		if !c.waitBackoff(ctx, attempt, retryAfter) {
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("request failed after %d retries: %w", c.maxRetries, lastErr)
}

// waitBackoff sleeps for the exponential backoff delay (or the server's
// Retry-After override) and reports false if the context ended first.
func (c *Client) waitBackoff(ctx context.Context, attempt int, override time.Duration) bool {
	delay := c.retryBaseDelay * time.Duration(1<<uint(attempt))
	if override > 0 {
		delay = override
	}
	select {
	case <-time.After(delay):
		return true
	case <-ctx.Done():
		return false
	}
}

// readBodyForError reads at most maxErrorBodySize bytes of a response
// body for error reporting.
func readBodyForError(r io.Reader) []byte {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return []byte("(failed to read response body)")
	}
	if len(body) == maxErrorBodySize {
		return append(body, []byte("\n... (truncated)")...)
	}
	return body
}
