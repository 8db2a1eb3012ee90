package crypto

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyCache_NeverCrossReturnsKeys(t *testing.T) {
	cache := NewKeyCache(10)
	salt := []byte("shared-salt-0123")

	cache.Put([]byte("secret-one"), salt, []byte("key-one"))
	cache.Put([]byte("secret-two"), salt, []byte("key-two"))

	key, ok := cache.Get([]byte("secret-one"), salt)
	require.True(t, ok)
	assert.Equal(t, []byte("key-one"), key)

	key, ok = cache.Get([]byte("secret-two"), salt)
	require.True(t, ok)
	assert.Equal(t, []byte("key-two"), key)
}

func TestKeyCache_ConcatenationAmbiguity(t *testing.T) {
	cache := NewKeyCache(10)

	// (ab, c) and (a, bc) concatenate to the same bytes but must be
	// distinct cache entries.
	cache.Put([]byte("ab"), []byte("c"), []byte("key-ab-c"))

	_, ok := cache.Get([]byte("a"), []byte("bc"))
	assert.False(t, ok)
}

func TestKeyCache_EvictsLeastRecentlyUsed(t *testing.T) {
	const capacity = 4
	cache := NewKeyCache(capacity)
	secret := []byte("secret")

	salts := make([][]byte, capacity+1)
	for i := range salts {
		salts[i] = []byte(fmt.Sprintf("salt-%d", i))
	}
	for i := 0; i < capacity; i++ {
		cache.Put(secret, salts[i], []byte(fmt.Sprintf("key-%d", i)))
	}
	require.Equal(t, capacity, cache.Len())

	// Touch salt-0 so salt-1 becomes the LRU entry.
	_, ok := cache.Get(secret, salts[0])
	require.True(t, ok)

	// Inserting one past capacity evicts salt-1, not salt-0.
	cache.Put(secret, salts[capacity], []byte("key-new"))
	require.Equal(t, capacity, cache.Len())

	_, ok = cache.Get(secret, salts[0])
	assert.True(t, ok, "recently used entry should survive eviction")
	_, ok = cache.Get(secret, salts[1])
	assert.False(t, ok, "least recently used entry should be evicted")
	_, ok = cache.Get(secret, salts[capacity])
	assert.True(t, ok)
}

func TestKeyCache_DefaultCapacity(t *testing.T) {
	cache := NewKeyCache(0)
	for i := 0; i < DefaultKeyCacheSize+10; i++ {
		cache.Put([]byte("s"), []byte(fmt.Sprintf("salt-%d", i)), []byte("k"))
	}
	assert.Equal(t, DefaultKeyCacheSize, cache.Len())
}
