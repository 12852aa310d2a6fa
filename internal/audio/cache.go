package audio

import (
	"container/list"
	"sync"
)

// CacheStats is a point-in-time view of cache activity.
type CacheStats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Entries   int
	Bytes     int64
}

type cacheEntry struct {
	url  string
	data []byte
}

// Cache is an LRU of audio bodies keyed by URL and bounded by total byte size.
// Returned slices are shared with the cache and must not be modified.
type Cache struct {
	mu       sync.Mutex
	maxBytes int64
	size     int64
	ll       *list.List
	items    map[string]*list.Element
	stats    CacheStats
}

func NewCache(maxBytes int64) *Cache {
	return &Cache{
		maxBytes: maxBytes,
		ll:       list.New(),
		items:    make(map[string]*list.Element),
	}
}

// Get returns the cached body and marks it most recently used.
func (c *Cache) Get(url string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[url]
	if !ok {
		c.stats.Misses++
		return nil, false
	}
	c.stats.Hits++
	c.ll.MoveToFront(el)
	return el.Value.(*cacheEntry).data, true
}

// peek looks an entry up without touching recency or stats.
func (c *Cache) peek(url string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[url]
	if !ok {
		return nil, false
	}
	return el.Value.(*cacheEntry).data, true
}

// Add stores data under url, evicting least recently used entries until the
// byte cap holds. Bodies larger than the cap are not stored.
func (c *Cache) Add(url string, data []byte) bool {
	n := int64(len(data))
	if c.maxBytes > 0 && n > c.maxBytes {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[url]; ok {
		old := el.Value.(*cacheEntry)
		c.size += n - int64(len(old.data))
		old.data = data
		c.ll.MoveToFront(el)
	} else {
		c.items[url] = c.ll.PushFront(&cacheEntry{url: url, data: data})
		c.size += n
	}

	for c.maxBytes > 0 && c.size > c.maxBytes {
		c.removeOldest()
	}
	return true
}

func (c *Cache) removeOldest() {
	el := c.ll.Back()
	if el == nil {
		return
	}
	e := el.Value.(*cacheEntry)
	c.ll.Remove(el)
	delete(c.items, e.url)
	c.size -= int64(len(e.data))
	c.stats.Evictions++
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}

func (c *Cache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.Entries = c.ll.Len()
	s.Bytes = c.size
	return s
}
