package query

import "sync"

// Cache holds resolved read state keyed by Key. Entries are generation
// counted: invalidation bumps the generation, and a completion that started
// under an older generation is discarded instead of overwriting fresher
// state.
type Cache interface {
	Get(key Key) (any, bool)
	Set(key Key, value any)
	// Generation returns the current generation for the key.
	Generation(key Key) uint64
	// SetIfCurrent stores the value only if the key's generation still
	// matches gen. Reports whether the value was stored.
	SetIfCurrent(key Key, value any, gen uint64) bool
	// Invalidate discards the entry and bumps the generation.
	Invalidate(key Key)
	// InvalidateAll discards every entry and bumps every known generation.
	InvalidateAll()
}

type cacheEntry struct {
	value any
	valid bool
	gen   uint64
}

type memoryCache struct {
	mutex   sync.Mutex
	entries map[string]*cacheEntry
}

func NewMemoryCache() Cache {
	return &memoryCache{
		entries: make(map[string]*cacheEntry),
	}
}

func (c *memoryCache) entry(key Key) *cacheEntry {
	id := key.String()
	e, ok := c.entries[id]
	if !ok {
		e = &cacheEntry{}
		c.entries[id] = e
	}
	return e
}

func (c *memoryCache) Get(key Key) (any, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	e, ok := c.entries[key.String()]
	if !ok || !e.valid {
		return nil, false
	}
	return e.value, true
}

func (c *memoryCache) Set(key Key, value any) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	e := c.entry(key)
	e.value = value
	e.valid = true
}

func (c *memoryCache) Generation(key Key) uint64 {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.entry(key).gen
}

func (c *memoryCache) SetIfCurrent(key Key, value any, gen uint64) bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	e := c.entry(key)
	if e.gen != gen {
		return false
	}
	e.value = value
	e.valid = true
	return true
}

func (c *memoryCache) Invalidate(key Key) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	e := c.entry(key)
	e.value = nil
	e.valid = false
	e.gen++
}

func (c *memoryCache) InvalidateAll() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	for _, e := range c.entries {
		e.value = nil
		e.valid = false
		e.gen++
	}
}
