package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/transitgit/pkg/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "transitgit.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("Default().Validate() = %v, want nil", err)
	}
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
[feed]
location = "https://example.org/gtfs.zip"
prefilter = "S1,S2"
routes = ["r1", "r2"]
cache_ttl = "12h"

[store]
git_dir = "/tmp/out"
author_name = "Transit Bot"
author_email = "bot@example.org"
force = true

[cache]
backend = "redis"
redis_addr = "localhost:6379"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Feed.Location != "https://example.org/gtfs.zip" {
		t.Errorf("Feed.Location = %q", cfg.Feed.Location)
	}
	if cfg.Feed.CacheTTL != 12*time.Hour {
		t.Errorf("Feed.CacheTTL = %v, want 12h", cfg.Feed.CacheTTL)
	}
	if len(cfg.Feed.Routes) != 2 {
		t.Errorf("Feed.Routes = %v, want 2 entries", cfg.Feed.Routes)
	}
	if !cfg.Store.Force || cfg.Store.AuthorName != "Transit Bot" {
		t.Errorf("Store = %+v", cfg.Store)
	}
	if cfg.Cache.Backend != BackendRedis || cfg.Cache.RedisAddr != "localhost:6379" {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	if cfg.Cache.Prefix != "transitgit:" {
		t.Errorf("Cache.Prefix = %q, want default kept", cfg.Cache.Prefix)
	}
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "[store]\nforce = true\n"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	want := Default()
	want.Store.Force = true
	if cfg.Feed.Location != want.Feed.Location || cfg.Feed.CacheTTL != want.Feed.CacheTTL {
		t.Errorf("Feed = %+v, want %+v", cfg.Feed, want.Feed)
	}
	if cfg.Store != want.Store {
		t.Errorf("Store = %+v, want %+v", cfg.Store, want.Store)
	}
	if cfg.Cache != want.Cache {
		t.Errorf("Cache = %+v, want %+v", cfg.Cache, want.Cache)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		code    errors.Code
		msg     string
	}{
		{"syntax", "[feed\n", errors.ErrCodeInvalidConfig, "parse"},
		{"unknown key", "[feed]\nlocaton = \"x\"\n", errors.ErrCodeInvalidConfig, "feed.locaton"},
		{"bad backend", "[cache]\nbackend = \"memcached\"\n", errors.ErrCodeInvalidConfig, "cache.backend: must be one of file, redis, none"},
		{"redis without addr", "[cache]\nbackend = \"redis\"\n", errors.ErrCodeInvalidConfig, "cache.redis_addr: required"},
		{"bad redis addr", "[cache]\nredis_addr = \"nope\"\n", errors.ErrCodeInvalidConfig, "cache.redis_addr: must be host:port"},
		{"empty location", "[feed]\nlocation = \"\"\n", errors.ErrCodeInvalidConfig, "feed.location: required"},
		{"bad email", "[store]\nauthor_email = \"nobody\"\n", errors.ErrCodeInvalidConfig, "store.author_email: must contain @"},
		{"negative ttl", "[feed]\ncache_ttl = \"-1h\"\n", errors.ErrCodeInvalidConfig, "feed.cache_ttl: must not be negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			if !errors.Is(err, tt.code) {
				t.Fatalf("Load() error = %v, want code %s", err, tt.code)
			}
			if !strings.Contains(err.Error(), tt.msg) {
				t.Errorf("Load() error = %q, want it to contain %q", err, tt.msg)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Load() error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestLoadOrDefault(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadOrDefault("")
	if err != nil {
		t.Fatalf("LoadOrDefault() error: %v", err)
	}
	if cfg.Store.GitDir != "./result" {
		t.Errorf("Store.GitDir = %q, want default", cfg.Store.GitDir)
	}

	if err := os.WriteFile(DefaultFile, []byte("[store]\ngit_dir = \"repo\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err = LoadOrDefault("")
	if err != nil {
		t.Fatalf("LoadOrDefault() error: %v", err)
	}
	if cfg.Store.GitDir != "repo" {
		t.Errorf("Store.GitDir = %q, want %q from %s", cfg.Store.GitDir, "repo", DefaultFile)
	}
}

func TestCacheDir(t *testing.T) {
	if got, _ := (CacheConfig{Dir: "/x"}).CacheDir(); got != "/x" {
		t.Errorf("CacheDir() = %q, want /x", got)
	}
	got, err := (CacheConfig{}).CacheDir()
	if err != nil {
		t.Skipf("no user cache dir: %v", err)
	}
	if filepath.Base(got) != "transitgit" {
		t.Errorf("CacheDir() = %q, want .../transitgit", got)
	}
}
