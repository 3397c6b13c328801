package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bobmcallan/divvy/internal/cache"
)

func TestFetch_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		w.Header().Set("Content-Type", "text/csv")
		w.Write([]byte("Ticker,Value\nAAPL,5.40\n"))
	}))
	defer srv.Close()

	f := NewFetcher(srv.URL+"/sample.csv", time.Second, 0, nil)
	ds, err := f.Fetch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(string(ds.Body), "Ticker,Value") {
		t.Errorf("unexpected body %q", ds.Body)
	}
	if ds.ContentType != "text/csv" {
		t.Errorf("expected text/csv, got %s", ds.ContentType)
	}
}

func TestFetch_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	f := NewFetcher(srv.URL, time.Second, 0, nil)
	_, err := f.Fetch(context.Background())
	var se *StatusError
	if !errors.As(err, &se) || se.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 StatusError, got %v", err)
	}
}

func TestFetch_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	f := NewFetcher(url, time.Second, 0, nil)
	if _, err := f.Fetch(context.Background()); err == nil {
		t.Fatal("expected error for closed server")
	}
}

func TestFetch_NoURL(t *testing.T) {
	f := NewFetcher("", time.Second, 0, nil)
	if _, err := f.Fetch(context.Background()); !errors.Is(err, ErrNoURL) {
		t.Fatalf("expected ErrNoURL, got %v", err)
	}
}

func TestFetch_TooLarge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("x", 64)))
	}))
	defer srv.Close()

	f := NewFetcher(srv.URL, time.Second, 32, nil)
	if _, err := f.Fetch(context.Background()); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
}

func TestFetch_Cached(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte("Ticker\nAAPL\n"))
	}))
	defer srv.Close()

	f := NewFetcher(srv.URL, time.Second, 0, cache.New(time.Minute, 4))
	for i := 0; i < 3; i++ {
		if _, err := f.Fetch(context.Background()); err != nil {
			t.Fatal(err)
		}
	}
	if hits.Load() != 1 {
		t.Errorf("expected 1 upstream request, got %d", hits.Load())
	}

	f.Invalidate()
	if _, err := f.Fetch(context.Background()); err != nil {
		t.Fatal(err)
	}
	if hits.Load() != 2 {
		t.Errorf("expected refetch after invalidate, got %d requests", hits.Load())
	}
}

func TestFetch_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	f := NewFetcher(srv.URL, 5*time.Second, 0, nil)
	if _, err := f.Fetch(ctx); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}
