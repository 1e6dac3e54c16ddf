package tempurl

import (
	"context"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

// KeySource yields the account's current tempurl signing keys, primary
// first. The swift client's TempURLKeys method satisfies this.
type KeySource interface {
	TempURLKeys(ctx context.Context) ([][]byte, error)
}

// cacheKey is the single slot used in the backing LRU
const cacheKey = "account-tempurl-keys"

// CachingKeySource caches signing keys for the configured
// tempurl_key_cache_time, saving an account HEAD per signed URL. A TTL of
// zero disables caching entirely, matching the config default.
type CachingKeySource struct {
	src   KeySource
	ttl   time.Duration
	cache *lru.LRU[string, [][]byte]
}

// NewCachingKeySource wraps src with a TTL cache
func NewCachingKeySource(src KeySource, ttl time.Duration) *CachingKeySource {
	cks := &CachingKeySource{src: src, ttl: ttl}
	if ttl > 0 {
		cks.cache = lru.NewLRU[string, [][]byte](1, nil, ttl)
	}
	return cks
}

// TempURLKeys returns cached keys when fresh, otherwise re-reads the account
func (c *CachingKeySource) TempURLKeys(ctx context.Context) ([][]byte, error) {
	if c.cache != nil {
		if keys, ok := c.cache.Get(cacheKey); ok {
			return keys, nil
		}
	}

	keys, err := c.src.TempURLKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching tempurl keys: %w", err)
	}
	if c.cache != nil {
		c.cache.Add(cacheKey, keys)
	}
	return keys, nil
}

// Invalidate drops the cached keys, forcing a re-read after key rotation
func (c *CachingKeySource) Invalidate() {
	if c.cache != nil {
		c.cache.Remove(cacheKey)
	}
}
