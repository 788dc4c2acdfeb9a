package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Cache is an in-memory key-value store with per-entry expiration. Instances do
// not share contents.
type Cache struct {
	cacheInstance *gocache.Cache
}

// New returns a Cache whose entries expire after defaultTTL unless Put says
// otherwise. A defaultTTL of -1 keeps entries until they are deleted.
func New(defaultTTL time.Duration) *Cache {
	return &Cache{cacheInstance: gocache.New(defaultTTL, 10*time.Second)}
}

// Put sets a key/value pair in the cache with an optional duration. Passing 0 for
// ttl will cause the default expiration to be used and -1 will not set a ttl.
func (c *Cache) Put(key string, value interface{}, ttl time.Duration) {
	c.cacheInstance.Set(key, value, ttl)
}

// PutIfAbsent stores the value only if key is not already present (or has
// expired) and reports whether it did. The check and the write are atomic.
func (c *Cache) PutIfAbsent(key string, value interface{}, ttl time.Duration) bool {
	return c.cacheInstance.Add(key, value, ttl) == nil
}

// Get fetches a value from the cache, returning the value as well as whether
// or not the value was found (semantics similar to map).
func (c *Cache) Get(key string) (interface{}, bool) {
	return c.cacheInstance.Get(key)
}

// Delete removes key from the cache.
func (c *Cache) Delete(key string) {
	c.cacheInstance.Delete(key)
}
