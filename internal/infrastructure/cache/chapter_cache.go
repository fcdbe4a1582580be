package cache

import (
	"context"
	"time"

	"github.com/hszk-dev/chapterize/internal/domain/model"
)

// ChapterCache defines the interface for caching chapter results keyed by
// video ID. The cache is a disposable projection of the durable store: the
// refresh scheduler bulk-replaces its contents with the current popularity
// ranking, and entries expire on their own TTL between refreshes.
// Implementations must be safe for concurrent use.
type ChapterCache interface {
	// Get retrieves the chapters for a video ID.
	// Returns nil, nil if the entry is absent or its TTL has elapsed.
	Get(ctx context.Context, videoID string) ([]model.Chapter, error)

	// Set stores a single entry with the specified TTL.
	Set(ctx context.Context, videoID string, chapters []model.Chapter, ttl time.Duration) error

	// Replace atomically swaps the entire cache contents for the given
	// entries. A concurrent reader observes either the old working set or
	// the new one, never a partially cleared cache.
	Replace(ctx context.Context, entries map[string][]model.Chapter, ttl time.Duration) error

	// Clear removes all entries.
	Clear(ctx context.Context) error
}
