package cache

import (
	"context"
	"time"

	"github.com/matzehuels/transitgit/pkg/observability"
)

// Instrument wraps c so that every Get and Set is reported to
// observability.Cache() under keyType.
func Instrument(c Cache, keyType string) Cache {
	return &instrumented{Cache: c, keyType: keyType}
}

type instrumented struct {
	Cache
	keyType string
}

func (c *instrumented) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, hit, err := c.Cache.Get(ctx, key)
	if err == nil {
		if hit {
			observability.Cache().OnCacheHit(ctx, c.keyType)
		} else {
			observability.Cache().OnCacheMiss(ctx, c.keyType)
		}
	}
	return data, hit, err
}

func (c *instrumented) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	err := c.Cache.Set(ctx, key, data, ttl)
	if err == nil {
		observability.Cache().OnCacheSet(ctx, c.keyType, len(data))
	}
	return err
}
