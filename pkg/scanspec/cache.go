package scanspec

import (
	"container/list"
	"context"
	"crypto/sha256"
	"sync"
)

type digest [sha256.Size]byte

type cacheEntry struct {
	key digest
	lib *Library
}

// Cache keeps compiled libraries keyed by the SHA-256 digest of the
// document bytes, evicting the least recently used one at capacity.
// Compilation is pure, so equal documents share one Library.
// It is safe for concurrent use.
type Cache struct {
	reg      *Registry
	capacity int
	items    map[digest]*list.Element
	eviction *list.List
	mu       sync.Mutex
}

// NewCache creates a cache compiling against reg. The capacity must be
// positive, otherwise it panics.
func NewCache(capacity int, reg *Registry) *Cache {
	if capacity <= 0 {
		panic("scanspec cache capacity must be positive")
	}
	if reg == nil {
		reg = NewRegistry()
	}
	return &Cache{
		reg:      reg,
		capacity: capacity,
		items:    make(map[digest]*list.Element),
		eviction: list.New(),
	}
}

// Compile returns the library for data, compiling it on a miss. Failed
// compilations are not cached.
func (c *Cache) Compile(data []byte) (*Library, error) {
	key := digest(sha256.Sum256(data))
	if lib, ok := c.get(key); ok {
		return lib, nil
	}

	doc, err := Parse(data)
	if err != nil {
		return nil, err
	}
	lib, err := doc.Compile(c.reg)
	if err != nil {
		return nil, err
	}
	return c.put(key, lib), nil
}

// Load reads a named document from src and compiles it through the cache.
func (c *Cache) Load(ctx context.Context, src Source, name string) (*Library, error) {
	data, err := ReadDocument(ctx, src, name)
	if err != nil {
		return nil, err
	}
	return c.Compile(data)
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.eviction.Len()
}

// Purge drops every cached library.
func (c *Cache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[digest]*list.Element)
	c.eviction.Init()
}

func (c *Cache) get(key digest) (*Library, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.eviction.MoveToFront(elem)
		return elem.Value.(*cacheEntry).lib, true
	}
	return nil, false
}

// put stores lib unless a concurrent caller stored the same document first,
// in which case the existing library wins.
func (c *Cache) put(key digest, lib *Library) *Library {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.eviction.MoveToFront(elem)
		return elem.Value.(*cacheEntry).lib
	}

	c.items[key] = c.eviction.PushFront(&cacheEntry{key: key, lib: lib})
	if c.eviction.Len() > c.capacity {
		c.evictOldest()
	}
	return lib
}

// Must be called with lock held.
func (c *Cache) evictOldest() {
	elem := c.eviction.Back()
	if elem == nil {
		return
	}
	c.eviction.Remove(elem)
	delete(c.items, elem.Value.(*cacheEntry).key)
}
