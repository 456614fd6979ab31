// Package config loads transitgit settings from a TOML file.
//
// A file only needs the keys it changes; everything else keeps the value
// from [Default]:
//
//	[feed]
//	location  = "https://example.org/gtfs.zip"
//	prefilter = "S1,S2"
//	cache_ttl = "12h"
//
//	[store]
//	git_dir      = "./result"
//	author_name  = "Transit Bot"
//	author_email = "bot@example.org"
//
//	[cache]
//	backend    = "redis"
//	redis_addr = "localhost:6379"
//
// Command-line flags override file values.
package config

import (
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"

	"github.com/matzehuels/transitgit/pkg/cache"
	"github.com/matzehuels/transitgit/pkg/errors"
	"github.com/matzehuels/transitgit/pkg/store"
)

// DefaultFile is read when no --config flag is given and it exists in the
// working directory.
const DefaultFile = "transitgit.toml"

// Cache backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// Config is the full configuration.
type Config struct {
	Feed  FeedConfig  `toml:"feed"`
	Store StoreConfig `toml:"store"`
	Cache CacheConfig `toml:"cache"`
}

// FeedConfig selects the GTFS feed and the routes taken from it.
type FeedConfig struct {
	Location  string        `toml:"location" validate:"required"`
	Prefilter string        `toml:"prefilter"`
	Routes    []string      `toml:"routes" validate:"dive,required"`
	CacheTTL  time.Duration `toml:"cache_ttl" validate:"gte=0"`
}

// StoreConfig describes the target repository.
type StoreConfig struct {
	GitDir      string `toml:"git_dir" validate:"required"`
	AuthorName  string `toml:"author_name" validate:"required"`
	AuthorEmail string `toml:"author_email" validate:"required,contains=@"`
	Force       bool   `toml:"force"`
}

// CacheConfig selects where downloaded feeds are kept.
type CacheConfig struct {
	Backend   string `toml:"backend" validate:"oneof=file redis none"`
	Dir       string `toml:"dir"`
	RedisAddr string `toml:"redis_addr" validate:"omitempty,hostname_port"`
	Prefix    string `toml:"prefix"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Feed: FeedConfig{
			Location: "./gtfs",
			CacheTTL: cache.TTLFeed,
		},
		Store: StoreConfig{
			GitDir:      "./result",
			AuthorName:  store.DefaultAuthorName,
			AuthorEmail: store.DefaultAuthorEmail,
		},
		Cache: CacheConfig{
			Backend: BackendFile,
			Prefix:  "transitgit:",
		},
	}
}

// Load reads path on top of [Default] and validates the result. Unknown keys
// are rejected so typos do not pass silently.
func Load(path string) (Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, &cfg)
	if stderrors.Is(err, fs.ErrNotExist) {
		return Config{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
	}
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, errors.New(errors.ErrCodeInvalidConfig, "%s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadOrDefault loads path, or [DefaultFile] if path is empty and the file
// exists, or returns [Default].
func LoadOrDefault(path string) (Config, error) {
	if path != "" {
		return Load(path)
	}
	if _, err := os.Stat(DefaultFile); err == nil {
		return Load(DefaultFile)
	}
	return Default(), nil
}

// Validate checks field constraints and the cross-field rules the tags
// cannot express.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if stderrors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fieldMessage(fe))
			}
			sort.Strings(msgs)
			return errors.New(errors.ErrCodeInvalidConfig, "%s", strings.Join(msgs, "; "))
		}
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "validate config")
	}
	if c.Cache.Backend == BackendRedis && c.Cache.RedisAddr == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.redis_addr: required for the redis backend")
	}
	if err := errors.ValidateFeedLocation(c.Feed.Location); err != nil {
		return err
	}
	return nil
}

// CacheDir returns the file cache directory: the configured one, or
// transitgit under the user cache directory.
func (c CacheConfig) CacheDir() (string, error) {
	if c.Dir != "" {
		return c.Dir, nil
	}
	base, err := os.UserCacheDir()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidConfig, err, "locate user cache directory")
	}
	return filepath.Join(base, "transitgit"), nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("toml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// fieldMessage renders "feed.location: required" from a validation error
// whose namespace is "Config.feed.location".
func fieldMessage(fe validator.FieldError) string {
	_, field, _ := strings.Cut(fe.Namespace(), ".")
	switch fe.Tag() {
	case "required":
		return field + ": required"
	case "oneof":
		return field + ": must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "contains":
		return field + ": must contain " + fe.Param()
	case "hostname_port":
		return field + ": must be host:port"
	case "gte":
		return field + ": must not be negative"
	default:
		return field + ": failed " + fe.Tag()
	}
}
