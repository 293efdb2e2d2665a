package embedding

import (
	"container/list"
	"context"
	"sync"
)

// CachingEmbedder wraps an Embedder and memoizes query embeddings in an
// LRU, since the same question is often re-asked against a growing
// corpus. Document embedding is passed through uncached: every chunk is
// embedded exactly once at ingestion time.
type CachingEmbedder struct {
	inner    Embedder
	capacity int

	mu      sync.Mutex
	entries map[string]*list.Element
	lru     *list.List
}

type cacheEntry struct {
	key    string
	vector []float32
}

// NewCachingEmbedder wraps inner with a query-embedding LRU of the
// given capacity.
func NewCachingEmbedder(inner Embedder, capacity int) *CachingEmbedder {
	if capacity <= 0 {
		capacity = 1024
	}
	return &CachingEmbedder{
		inner:    inner,
		capacity: capacity,
		entries:  make(map[string]*list.Element),
		lru:      list.New(),
	}
}

// EmbedDocuments delegates to the wrapped embedder.
func (c *CachingEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	return c.inner.EmbedDocuments(ctx, texts)
}

// EmbedQuery returns a cached query vector when available, otherwise
// embeds and caches. Provider failures are not cached.
func (c *CachingEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	c.mu.Lock()
	if elem, ok := c.entries[text]; ok {
		c.lru.MoveToFront(elem)
		v := elem.Value.(*cacheEntry).vector
		c.mu.Unlock()
		return v, nil
	}
	c.mu.Unlock()

	v, err := c.inner.EmbedQuery(ctx, text)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[text]; !ok {
		c.entries[text] = c.lru.PushFront(&cacheEntry{key: text, vector: v})
		if c.lru.Len() > c.capacity {
			oldest := c.lru.Back()
			c.lru.Remove(oldest)
			delete(c.entries, oldest.Value.(*cacheEntry).key)
		}
	}
	return v, nil
}

// Dimensions returns the wrapped embedder's dimension.
func (c *CachingEmbedder) Dimensions() int { return c.inner.Dimensions() }
