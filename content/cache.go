package content

import "sync"

// Cache memoizes fetched pages by resolved URL. Entries are never evicted
// and never replaced once stored.
type Cache struct {
	mu    sync.Mutex
	pages map[string]string
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{pages: make(map[string]string)}
}

// Get returns the page stored for url.
func (c *Cache) Get(url string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	page, ok := c.pages[url]
	return page, ok
}

// Put stores page for url unless an entry exists, and returns the stored
// entry.
func (c *Cache) Put(url, page string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.pages[url]; ok {
		return existing
	}
	c.pages[url] = page
	return page
}

// Len returns the number of cached pages.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pages)
}
