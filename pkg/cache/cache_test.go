package cache

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/transitgit/pkg/observability"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if hit || data != nil {
		t.Errorf("Get() = %q, %v, want miss", data, hit)
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete() error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error: %v", err)
	}

	if _, hit, _ := c.Get(ctx, "missing"); hit {
		t.Error("Get(missing) hit")
	}

	if err := c.Set(ctx, "feed:abc", []byte("zipdata"), time.Hour); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	data, hit, err := c.Get(ctx, "feed:abc")
	if err != nil || !hit {
		t.Fatalf("Get() = %v, %v, want hit", hit, err)
	}
	if string(data) != "zipdata" {
		t.Errorf("Get() = %q, want %q", data, "zipdata")
	}

	if err := c.Delete(ctx, "feed:abc"); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "feed:abc"); hit {
		t.Error("Get() hit after Delete")
	}
	if err := c.Delete(ctx, "feed:abc"); err != nil {
		t.Errorf("Delete(missing) error: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	if err := c.Set(ctx, "short", []byte("x"), time.Minute); err != nil {
		t.Fatal(err)
	}
	if err := c.Set(ctx, "forever", []byte("y"), 0); err != nil {
		t.Fatal(err)
	}

	now = now.Add(2 * time.Minute)
	if _, hit, _ := c.Get(ctx, "short"); hit {
		t.Error("expired entry hit")
	}
	if _, err := os.Stat(c.path("short")); !os.IsNotExist(err) {
		t.Errorf("expired entry not removed: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "forever"); !hit {
		t.Error("entry without ttl missed")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	path := c.path("k")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
		t.Errorf("Get(corrupt) = %v, %v, want miss", hit, err)
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatal(err)
		}
	}
	n, err := c.Clear()
	if err != nil {
		t.Fatalf("Clear() error: %v", err)
	}
	if n != 3 {
		t.Errorf("Clear() = %d, want 3", n)
	}
	if _, hit, _ := c.Get(ctx, "a"); hit {
		t.Error("Get() hit after Clear")
	}
}

func TestHash(t *testing.T) {
	h := Hash([]byte("hello"))
	if h != Hash([]byte("hello")) {
		t.Error("Hash() not deterministic")
	}
	if h == Hash([]byte("world")) {
		t.Error("Hash() collides for different input")
	}
	if len(h) != 64 {
		t.Errorf("len(Hash()) = %d, want 64", len(h))
	}
}

func TestKeyers(t *testing.T) {
	k := NewDefaultKeyer()
	if got := k.HTTPKey("feed", "https://x"); got != "http:feed:https://x" {
		t.Errorf("HTTPKey() = %q", got)
	}
	fk := k.FeedKey("https://example.org/gtfs.zip?key=1")
	if !strings.HasPrefix(fk, "feed:") || strings.Contains(fk, "?") {
		t.Errorf("FeedKey() = %q, want hashed feed: key", fk)
	}
	if fk == k.FeedKey("https://example.org/gtfs.zip?key=2") {
		t.Error("FeedKey() collides for different locations")
	}

	s := NewScopedKeyer(nil, "transitgit:")
	if got := s.FeedKey("x"); got != "transitgit:"+k.FeedKey("x") {
		t.Errorf("ScopedKeyer.FeedKey() = %q", got)
	}
	if got := s.HTTPKey("a", "b"); got != "transitgit:http:a:b" {
		t.Errorf("ScopedKeyer.HTTPKey() = %q", got)
	}
}

func TestHashKeySeparatesParts(t *testing.T) {
	if hashKey("p", "a", "bc") == hashKey("p", "ab", "c") {
		t.Error("hashKey() ignores part boundaries")
	}
}

type countingHooks struct {
	observability.NoopCacheHooks
	hits, misses, sets int
}

func (h *countingHooks) OnCacheHit(context.Context, string)      { h.hits++ }
func (h *countingHooks) OnCacheMiss(context.Context, string)     { h.misses++ }
func (h *countingHooks) OnCacheSet(context.Context, string, int) { h.sets++ }

func TestInstrument(t *testing.T) {
	hooks := &countingHooks{}
	observability.SetCacheHooks(hooks)
	defer observability.Reset()

	ctx := context.Background()
	fc, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	c := Instrument(fc, "feed")
	c.Get(ctx, "k")
	c.Set(ctx, "k", []byte("v"), 0)
	c.Get(ctx, "k")

	if hooks.hits != 1 || hooks.misses != 1 || hooks.sets != 1 {
		t.Errorf("hooks = %d hits, %d misses, %d sets, want 1 each", hooks.hits, hooks.misses, hooks.sets)
	}
}

func TestUnavailableError(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := error(&unavailableError{addr: "localhost:1", err: cause})
	if !stderrors.Is(err, ErrUnavailable) {
		t.Error("errors.Is(err, ErrUnavailable) = false")
	}
	if !stderrors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false")
	}
}

// TestRedisCache runs against a real server when TRANSITGIT_TEST_REDIS is set.
func TestRedisCache(t *testing.T) {
	addr := os.Getenv("TRANSITGIT_TEST_REDIS")
	if addr == "" {
		t.Skip("TRANSITGIT_TEST_REDIS not set")
	}
	ctx := context.Background()
	c, err := NewRedisCache(ctx, addr)
	if err != nil {
		t.Fatalf("NewRedisCache() error: %v", err)
	}
	defer c.Close()

	key := "transitgit-test:" + t.Name()
	defer c.Delete(ctx, key)

	if _, hit, err := c.Get(ctx, key); hit || err != nil {
		t.Fatalf("Get(missing) = %v, %v", hit, err)
	}
	if err := c.Set(ctx, key, []byte("v"), time.Minute); err != nil {
		t.Fatal(err)
	}
	data, hit, err := c.Get(ctx, key)
	if err != nil || !hit || string(data) != "v" {
		t.Errorf("Get() = %q, %v, %v", data, hit, err)
	}
}

func TestRedisCacheUnavailable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := NewRedisCache(ctx, "127.0.0.1:1")
	if !stderrors.Is(err, ErrUnavailable) {
		t.Errorf("NewRedisCache(closed port) error = %v, want ErrUnavailable", err)
	}
}
