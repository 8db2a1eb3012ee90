package crypto

import (
	"encoding/base64"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultKeyCacheSize bounds the derived-key cache when no capacity is configured.
const DefaultKeyCacheSize = 2000

// KeyCache is a bounded LRU cache of derived keys, keyed by (secret, salt).
// Salts are unique per envelope and secrets are stable for a deployment, so
// entries are never invalidated by time — only by capacity eviction of the
// least-recently-used pair.
//
// The cache is not keyed by owner identity; callers must not share one cache
// across security domains.
type KeyCache struct {
	keys *lru.Cache[string, []byte]
}

// NewKeyCache returns a KeyCache holding at most capacity entries.
// A capacity <= 0 falls back to DefaultKeyCacheSize.
func NewKeyCache(capacity int) *KeyCache {
	if capacity <= 0 {
		capacity = DefaultKeyCacheSize
	}
	// lru.New only fails on a non-positive size, which is guarded above.
	keys, _ := lru.New[string, []byte](capacity)
	return &KeyCache{keys: keys}
}

// Get returns the cached key for (secret, salt) and marks it most recently
// used. The second return value reports a hit.
func (c *KeyCache) Get(secret, salt []byte) ([]byte, bool) {
	return c.keys.Get(cacheKey(secret, salt))
}

// Put stores a derived key, evicting the least-recently-used entry at capacity.
func (c *KeyCache) Put(secret, salt, key []byte) {
	c.keys.Add(cacheKey(secret, salt), key)
}

// Len returns the number of cached keys.
func (c *KeyCache) Len() int {
	return c.keys.Len()
}

// cacheKey builds an unambiguous cache key. Both parts are base64 encoded so
// a (secret, salt) split can never be confused with another pair that happens
// to concatenate to the same bytes.
func cacheKey(secret, salt []byte) string {
	return base64.RawStdEncoding.EncodeToString(secret) + ":" + base64.RawStdEncoding.EncodeToString(salt)
}
