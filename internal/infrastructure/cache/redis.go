package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hszk-dev/chapterize/internal/domain/model"
)

const (
	// chapterCacheKeyPrefix is the prefix for chapter cache keys in Redis.
	chapterCacheKeyPrefix = "chapters:"

	// chapterCacheIndexKey tracks the keys of the current working set so
	// Replace and Clear can drop them without scanning the keyspace.
	chapterCacheIndexKey = "chapters:index"
)

// RedisChapterCache implements ChapterCache using Redis as the backing
// store, for deployments where several instances share one working set.
// Replace runs inside a MULTI/EXEC pipeline, so concurrent readers observe
// either the previous working set or the new one.
type RedisChapterCache struct {
	client *redis.Client
}

// NewRedisChapterCache creates a new Redis-backed chapter cache.
func NewRedisChapterCache(client *redis.Client) *RedisChapterCache {
	return &RedisChapterCache{
		client: client,
	}
}

// Get retrieves the chapters for a video ID.
// Returns nil, nil on cache miss; Redis handles TTL expiry itself.
func (c *RedisChapterCache) Get(ctx context.Context, videoID string) ([]model.Chapter, error) {
	data, err := c.client.Get(ctx, buildKey(videoID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // Cache miss
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var chapters []model.Chapter
	if err := json.Unmarshal(data, &chapters); err != nil {
		return nil, fmt.Errorf("deserialize chapters: %w", err)
	}

	return chapters, nil
}

// Set stores a single entry with the specified TTL.
func (c *RedisChapterCache) Set(ctx context.Context, videoID string, chapters []model.Chapter, ttl time.Duration) error {
	data, err := json.Marshal(chapters)
	if err != nil {
		return fmt.Errorf("serialize chapters: %w", err)
	}

	_, err = c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, buildKey(videoID), data, ttl)
		pipe.SAdd(ctx, chapterCacheIndexKey, videoID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis set: %w", err)
	}

	return nil
}

// Replace swaps the entire cache contents for the given entries.
func (c *RedisChapterCache) Replace(ctx context.Context, entries map[string][]model.Chapter, ttl time.Duration) error {
	serialized := make(map[string][]byte, len(entries))
	for videoID, chapters := range entries {
		data, err := json.Marshal(chapters)
		if err != nil {
			return fmt.Errorf("serialize chapters for %q: %w", videoID, err)
		}
		serialized[videoID] = data
	}

	previous, err := c.client.SMembers(ctx, chapterCacheIndexKey).Result()
	if err != nil {
		return fmt.Errorf("redis smembers: %w", err)
	}

	_, err = c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, videoID := range previous {
			if _, keep := serialized[videoID]; !keep {
				pipe.Del(ctx, buildKey(videoID))
			}
		}
		pipe.Del(ctx, chapterCacheIndexKey)
		for videoID, data := range serialized {
			pipe.Set(ctx, buildKey(videoID), data, ttl)
			pipe.SAdd(ctx, chapterCacheIndexKey, videoID)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis replace: %w", err)
	}

	return nil
}

// Clear removes all entries in the current working set.
func (c *RedisChapterCache) Clear(ctx context.Context) error {
	members, err := c.client.SMembers(ctx, chapterCacheIndexKey).Result()
	if err != nil {
		return fmt.Errorf("redis smembers: %w", err)
	}

	_, err = c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, videoID := range members {
			pipe.Del(ctx, buildKey(videoID))
		}
		pipe.Del(ctx, chapterCacheIndexKey)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis clear: %w", err)
	}

	return nil
}

// buildKey constructs the Redis key for a video's chapters.
func buildKey(videoID string) string {
	return chapterCacheKeyPrefix + videoID
}

// Compile-time verification that RedisChapterCache implements ChapterCache.
var _ ChapterCache = (*RedisChapterCache)(nil)
