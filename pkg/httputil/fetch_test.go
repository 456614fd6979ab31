package httputil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/transitgit/pkg/cache"
	"github.com/matzehuels/transitgit/pkg/errors"
)

func newTestFetcher(t *testing.T) *Fetcher {
	t.Helper()
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	f := NewFetcher(fc, nil)
	f.Delay = time.Millisecond
	return f
}

func TestFetcherGet(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if !strings.HasPrefix(r.UserAgent(), "transitgit/") {
			t.Errorf("User-Agent = %q", r.UserAgent())
		}
		w.Write([]byte("feed-bytes"))
	}))
	defer srv.Close()

	f := newTestFetcher(t)
	ctx := context.Background()
	for range 2 {
		data, err := f.Get(ctx, srv.URL+"/gtfs.zip")
		if err != nil {
			t.Fatalf("Get() error: %v", err)
		}
		if string(data) != "feed-bytes" {
			t.Errorf("Get() = %q, want %q", data, "feed-bytes")
		}
	}
	if got := hits.Load(); got != 1 {
		t.Errorf("server hits = %d, want 1 (second call cached)", got)
	}
}

func TestFetcherRetries(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	data, err := newTestFetcher(t).Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if string(data) != "ok" || hits.Load() != 3 {
		t.Errorf("Get() = %q after %d hits, want ok after 3", data, hits.Load())
	}
}

func TestFetcherErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		code   errors.Code
		hits   int32
	}{
		{"not found", http.StatusNotFound, errors.ErrCodeNotFound, 1},
		{"forbidden", http.StatusForbidden, errors.ErrCodeNetwork, 1},
		{"server error", http.StatusInternalServerError, errors.ErrCodeNetwork, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var hits atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				hits.Add(1)
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			_, err := newTestFetcher(t).Get(context.Background(), srv.URL)
			if !errors.Is(err, tt.code) {
				t.Errorf("Get() error = %v, want code %s", err, tt.code)
			}
			if got := hits.Load(); got != tt.hits {
				t.Errorf("server hits = %d, want %d", got, tt.hits)
			}
		})
	}
}

func TestFetcherInvalidURL(t *testing.T) {
	_, err := NewFetcher(nil, nil).Get(context.Background(), "not a url")
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Get() error = %v, want INVALID_INPUT", err)
	}
}

func TestRetryCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Retry(ctx, 3, time.Hour, func() error {
		return &RetryableError{Err: context.DeadlineExceeded}
	})
	if err != context.Canceled {
		t.Errorf("Retry() = %v, want context.Canceled", err)
	}
}
