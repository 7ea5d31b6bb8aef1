package cache

import (
	"container/list"
	"context"
	"sync"
	"time"

	"blog-summarizer/internal/domain/entity"
	"blog-summarizer/internal/observability/metrics"
)

// Memory is a process-local LRU cache with a fixed time to live.
type Memory struct {
	mu         sync.Mutex
	entries    map[string]*list.Element
	order      *list.List
	maxEntries int
	ttl        time.Duration
	now        func() time.Time
}

type memoryEntry struct {
	key       string
	value     record
	expiresAt time.Time
}

// NewMemory returns a cache holding at most maxEntries summaries for ttl each.
func NewMemory(maxEntries int, ttl time.Duration) *Memory {
	if maxEntries < 1 {
		maxEntries = 1
	}
	return &Memory{
		entries:    make(map[string]*list.Element, maxEntries),
		order:      list.New(),
		maxEntries: maxEntries,
		ttl:        ttl,
		now:        time.Now,
	}
}

// Get returns a copy of the cached summary for key.
func (c *Memory) Get(_ context.Context, key string) (*entity.AggregateResult, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		metrics.RecordCacheResult(BackendMemory, "miss")
		return nil, false, nil
	}

	entry := elem.Value.(*memoryEntry)
	if c.now().After(entry.expiresAt) {
		c.removeElement(elem)
		metrics.UpdateCacheEntries(BackendMemory, len(c.entries))
		metrics.RecordCacheResult(BackendMemory, "miss")
		return nil, false, nil
	}

	c.order.MoveToFront(elem)
	metrics.RecordCacheResult(BackendMemory, "hit")
	return entry.value.result(), true, nil
}

// Set stores a copy of res under key, evicting the least recently used
// entries once the cache is full.
func (c *Memory) Set(_ context.Context, key string, res *entity.AggregateResult) error {
	if key == "" || res == nil {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	expiresAt := now.Add(c.ttl)

	if elem, ok := c.entries[key]; ok {
		entry := elem.Value.(*memoryEntry)
		entry.value = toRecord(res)
		entry.expiresAt = expiresAt
		c.order.MoveToFront(elem)
	} else {
		c.entries[key] = c.order.PushFront(&memoryEntry{
			key:       key,
			value:     toRecord(res),
			expiresAt: expiresAt,
		})
	}

	c.evictExpiredLocked(now)
	c.enforceSizeLimitLocked()

	metrics.RecordCacheResult(BackendMemory, "store")
	metrics.UpdateCacheEntries(BackendMemory, len(c.entries))
	return nil
}

// Purge drops expired entries and reports how many were removed.
func (c *Memory) Purge(_ context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	before := len(c.entries)
	c.evictExpiredLocked(c.now())
	removed := int64(before - len(c.entries))

	metrics.RecordCachePurged(BackendMemory, removed)
	metrics.UpdateCacheEntries(BackendMemory, len(c.entries))
	return removed, nil
}

// Len is the number of stored entries, expired ones included.
func (c *Memory) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Memory) evictExpiredLocked(now time.Time) {
	for elem := c.order.Back(); elem != nil; {
		prev := elem.Prev()
		if now.After(elem.Value.(*memoryEntry).expiresAt) {
			c.removeElement(elem)
		}
		elem = prev
	}
}

func (c *Memory) enforceSizeLimitLocked() {
	for len(c.entries) > c.maxEntries {
		elem := c.order.Back()
		if elem == nil {
			return
		}
		c.removeElement(elem)
	}
}

func (c *Memory) removeElement(elem *list.Element) {
	delete(c.entries, elem.Value.(*memoryEntry).key)
	c.order.Remove(elem)
}
