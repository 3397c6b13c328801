// Package source fetches the default dividend dataset over HTTP.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bobmcallan/divvy/internal/cache"
)

// ErrNoURL is returned when no dataset URL is configured.
var ErrNoURL = errors.New("no dataset url configured")

// ErrTooLarge is returned when the response body exceeds the size limit.
var ErrTooLarge = errors.New("dataset exceeds size limit")

// StatusError reports a non-success HTTP status.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch %s: server returned %d", e.URL, e.StatusCode)
}

// Fetcher downloads a CSV dataset and caches the body.
type Fetcher struct {
	url        string
	maxBytes   int64
	httpClient *http.Client
	cache      *cache.DatasetCache
}

// NewFetcher creates a Fetcher for url. A nil cache disables caching.
func NewFetcher(url string, timeout time.Duration, maxBytes int64, c *cache.DatasetCache) *Fetcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if maxBytes <= 0 {
		maxBytes = 1 << 20
	}
	return &Fetcher{
		url:        url,
		maxBytes:   maxBytes,
		httpClient: &http.Client{Timeout: timeout},
		cache:      c,
	}
}

// URL returns the dataset address.
func (f *Fetcher) URL() string { return f.url }

// Fetch returns the dataset body, from cache when fresh.
func (f *Fetcher) Fetch(ctx context.Context) (*cache.Dataset, error) {
	if f.url == "" {
		return nil, ErrNoURL
	}
	key := cache.MakeKey(http.MethodGet, f.url)
	if f.cache != nil {
		if ds, ok := f.cache.Get(key); ok {
			return ds, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "text/csv, text/plain;q=0.9, */*;q=0.5")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach %s: %w", f.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: f.url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) > f.maxBytes {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, f.maxBytes)
	}

	ds := &cache.Dataset{
		Body:        body,
		ContentType: resp.Header.Get("Content-Type"),
		ETag:        resp.Header.Get("ETag"),
		FetchedAt:   time.Now(),
	}
	if f.cache != nil {
		f.cache.Set(key, ds)
	}
	return ds, nil
}

// Invalidate drops any cached copy of the dataset.
func (f *Fetcher) Invalidate() {
	if f.cache != nil {
		f.cache.InvalidatePrefix(cache.MakeKey(http.MethodGet, f.url))
	}
}
