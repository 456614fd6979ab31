package httputil

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/matzehuels/transitgit/pkg/buildinfo"
	"github.com/matzehuels/transitgit/pkg/cache"
	"github.com/matzehuels/transitgit/pkg/errors"
	"github.com/matzehuels/transitgit/pkg/observability"
)

// MaxBodySize bounds a downloaded feed. Larger responses are rejected.
const MaxBodySize = 512 << 20

// Fetcher downloads feed archives over HTTP, retrying transient failures and
// keeping responses in a cache.
type Fetcher struct {
	Client   *http.Client
	Cache    cache.Cache
	Keyer    cache.Keyer
	TTL      time.Duration
	Attempts int
	Delay    time.Duration
}

// NewFetcher returns a fetcher with the given cache. A nil cache disables
// caching.
func NewFetcher(c cache.Cache, keyer cache.Keyer) *Fetcher {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	return &Fetcher{
		Client:   &http.Client{Timeout: 5 * time.Minute},
		Cache:    c,
		Keyer:    keyer,
		TTL:      cache.TTLFeed,
		Attempts: 3,
		Delay:    time.Second,
	}
}

// Get returns the body at rawURL. A cached copy is returned when present;
// cache failures are ignored and the download proceeds.
func (f *Fetcher) Get(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "invalid URL %q", rawURL)
	}

	key := f.Keyer.FeedKey(rawURL)
	if data, ok, err := f.Cache.Get(ctx, key); err == nil && ok {
		return data, nil
	}

	var body []byte
	err = Retry(ctx, f.Attempts, f.Delay, func() error {
		var err error
		body, err = f.do(ctx, u)
		return err
	})
	if err != nil {
		if errors.GetCode(err) != "" {
			return nil, err
		}
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "failed to fetch %s", rawURL)
	}

	_ = f.Cache.Set(ctx, key, body, f.TTL)
	return body, nil
}

func (f *Fetcher) do(ctx context.Context, u *url.URL) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", buildinfo.UserAgent())

	hooks := observability.HTTP()
	hooks.OnRequest(ctx, req.Method, u.Host, u.Path)
	start := time.Now()

	resp, err := f.client().Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, u.Host, u.Path, err)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &RetryableError{Err: err}
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, req.Method, u.Host, u.Path, resp.StatusCode, time.Since(start))

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, errors.New(errors.ErrCodeNotFound, "%s: not found", u.Redacted())
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, &RetryableError{Err: fmt.Errorf("%s: %s", u.Redacted(), resp.Status)}
	case resp.StatusCode >= 400:
		return nil, errors.New(errors.ErrCodeNetwork, "%s: %s", u.Redacted(), resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize+1))
	if err != nil {
		return nil, &RetryableError{Err: err}
	}
	if len(body) > MaxBodySize {
		return nil, errors.New(errors.ErrCodeInvalidFeed, "%s: response exceeds %d bytes", u.Redacted(), MaxBodySize)
	}
	return body, nil
}

func (f *Fetcher) client() *http.Client {
	if f.Client != nil {
		return f.Client
	}
	return http.DefaultClient
}
