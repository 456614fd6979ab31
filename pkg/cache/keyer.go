package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Keyer builds cache keys.
type Keyer interface {
	// HTTPKey returns the key of a raw HTTP response.
	HTTPKey(namespace, key string) string

	// FeedKey returns the key of a downloaded feed archive.
	FeedKey(location string) string
}

// DefaultKeyer produces unprefixed keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// HTTPKey returns "http:<namespace>:<key>".
func (DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + namespace + ":" + key
}

// FeedKey hashes the location so URLs with query strings stay valid keys.
func (DefaultKeyer) FeedKey(location string) string {
	return hashKey("feed", location)
}

// ScopedKeyer wraps a Keyer with a prefix, so several tools or users can
// share one Redis instance without colliding.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "transitgit:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// HTTPKey generates a prefixed key for HTTP response caching.
func (k *ScopedKeyer) HTTPKey(namespace, key string) string {
	return k.prefix + k.inner.HTTPKey(namespace, key)
}

// FeedKey generates a prefixed key for feed caching.
func (k *ScopedKeyer) FeedKey(location string) string {
	return k.prefix + k.inner.FeedKey(location)
}

// hashKey returns "prefix:sha256(parts)". Parts are joined with NUL so
// ("a", "bc") and ("ab", "c") differ.
func hashKey(prefix string, parts ...string) string {
	return prefix + ":" + Hash([]byte(strings.Join(parts, "\x00")))
}

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
