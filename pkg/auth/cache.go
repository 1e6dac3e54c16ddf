package auth

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

// cacheSize bounds the number of distinct endpoint/user pairs held
const cacheSize = 64

// CachingStrategy wraps a strategy with a token cache, avoiding a handshake
// per operation when the harness fans out over many tests.
type CachingStrategy struct {
	inner Strategy
	cache *lru.LRU[string, *Credentials]
}

// NewCachingStrategy wraps inner with a cache whose entries expire after
// ttl, which should stay below the deployment's token lifetime.
func NewCachingStrategy(inner Strategy, ttl time.Duration) *CachingStrategy {
	return &CachingStrategy{
		inner: inner,
		cache: lru.NewLRU[string, *Credentials](cacheSize, nil, ttl),
	}
}

// Authenticate returns cached credentials when available
func (c *CachingStrategy) Authenticate(ctx context.Context, endpoint, username, password string) (*Credentials, error) {
	key := endpoint + "\x00" + username

	if creds, ok := c.cache.Get(key); ok {
		return creds, nil
	}

	creds, err := c.inner.Authenticate(ctx, endpoint, username, password)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, creds)
	return creds, nil
}

// Invalidate drops cached credentials for an endpoint/user pair, forcing
// the next call to re-handshake. Useful after a 401 mid-run.
func (c *CachingStrategy) Invalidate(endpoint, username string) {
	c.cache.Remove(endpoint + "\x00" + username)
}
