package cache

import (
	"context"
	"sync"
	"time"

	"github.com/hszk-dev/chapterize/internal/domain/model"
)

// memoryEntry is a cached chapter list with its expiry deadline.
type memoryEntry struct {
	chapters  []model.Chapter
	expiresAt time.Time
}

// MemoryChapterCache implements ChapterCache with an in-process map.
// Expiry is checked lazily at read time; stale entries are dropped by the
// next Replace. Replace builds a fresh map and swaps it under the lock, so
// readers never see the cache mid-rebuild.
type MemoryChapterCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry

	// now is swappable for expiry tests.
	now func() time.Time
}

// NewMemoryChapterCache creates an empty in-memory chapter cache.
func NewMemoryChapterCache() *MemoryChapterCache {
	return &MemoryChapterCache{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Get retrieves the chapters for a video ID.
// Returns nil, nil on miss or when the entry's TTL has elapsed.
func (c *MemoryChapterCache) Get(_ context.Context, videoID string) ([]model.Chapter, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[videoID]
	if !ok {
		return nil, nil
	}
	if c.now().After(entry.expiresAt) {
		return nil, nil
	}

	return entry.chapters, nil
}

// Set stores a single entry with the specified TTL.
func (c *MemoryChapterCache) Set(_ context.Context, videoID string, chapters []model.Chapter, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[videoID] = memoryEntry{
		chapters:  chapters,
		expiresAt: c.now().Add(ttl),
	}

	return nil
}

// Replace swaps the entire cache contents for the given entries.
func (c *MemoryChapterCache) Replace(_ context.Context, entries map[string][]model.Chapter, ttl time.Duration) error {
	next := make(map[string]memoryEntry, len(entries))

	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := c.now().Add(ttl)
	for videoID, chapters := range entries {
		next[videoID] = memoryEntry{
			chapters:  chapters,
			expiresAt: expiresAt,
		}
	}
	c.entries = next

	return nil
}

// Clear removes all entries.
func (c *MemoryChapterCache) Clear(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]memoryEntry)

	return nil
}

// Len returns the number of entries currently held, expired or not.
// Intended for tests and debugging.
func (c *MemoryChapterCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}

// Compile-time verification that MemoryChapterCache implements ChapterCache.
var _ ChapterCache = (*MemoryChapterCache)(nil)
