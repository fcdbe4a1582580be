package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/hszk-dev/chapterize/internal/domain/model"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})

	return mr, client
}

func TestRedisChapterCache_SetGet(t *testing.T) {
	_, client := setupTestRedis(t)

	c := NewRedisChapterCache(client)
	ctx := context.Background()

	chapters := []model.Chapter{
		{Start: 0, End: 12.5, Significance: model.SignificanceVeryHigh, Chapter: "Hook", Summary: "Cold open."},
		{Start: 12.5, End: 180, Significance: model.SignificanceHigh, Chapter: "Deep dive", Summary: "Main content."},
	}

	if err := c.Set(ctx, "vid-1", chapters, time.Minute); err != nil {
		t.Fatalf("Set() unexpected error: %v", err)
	}

	got, err := c.Get(ctx, "vid-1")
	if err != nil {
		t.Fatalf("Get() unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Get() returned %d chapters, want 2", len(got))
	}
	if got[0] != chapters[0] || got[1] != chapters[1] {
		t.Errorf("Get() = %+v, want %+v", got, chapters)
	}
}

func TestRedisChapterCache_Get_Miss(t *testing.T) {
	_, client := setupTestRedis(t)

	c := NewRedisChapterCache(client)

	got, err := c.Get(context.Background(), "absent")
	if err != nil {
		t.Fatalf("Get() unexpected error: %v", err)
	}
	if got != nil {
		t.Errorf("Get() = %+v, want nil on miss", got)
	}
}

func TestRedisChapterCache_TTLExpiry(t *testing.T) {
	mr, client := setupTestRedis(t)

	c := NewRedisChapterCache(client)
	ctx := context.Background()

	if err := c.Set(ctx, "vid-1", sampleChapters("Intro"), 15*time.Minute); err != nil {
		t.Fatalf("Set() unexpected error: %v", err)
	}

	mr.FastForward(15*time.Minute + time.Second)

	got, err := c.Get(ctx, "vid-1")
	if err != nil {
		t.Fatalf("Get() unexpected error: %v", err)
	}
	if got != nil {
		t.Errorf("Get() after TTL elapsed = %+v, want nil", got)
	}
}

func TestRedisChapterCache_Replace(t *testing.T) {
	_, client := setupTestRedis(t)

	c := NewRedisChapterCache(client)
	ctx := context.Background()

	if err := c.Set(ctx, "old-1", sampleChapters("Old"), time.Minute); err != nil {
		t.Fatalf("Set() unexpected error: %v", err)
	}
	if err := c.Set(ctx, "old-2", sampleChapters("Old"), time.Minute); err != nil {
		t.Fatalf("Set() unexpected error: %v", err)
	}

	entries := map[string][]model.Chapter{
		"new-1": sampleChapters("New"),
		"old-1": sampleChapters("Refreshed"),
	}
	if err := c.Replace(ctx, entries, time.Minute); err != nil {
		t.Fatalf("Replace() unexpected error: %v", err)
	}

	if got, _ := c.Get(ctx, "old-2"); got != nil {
		t.Error("entry not in the new working set should be gone")
	}
	if got, _ := c.Get(ctx, "new-1"); got == nil {
		t.Error("new entry should be present after Replace")
	}
	if got, _ := c.Get(ctx, "old-1"); got == nil || got[0].Chapter != "Refreshed" {
		t.Errorf("kept entry should carry the replacement value, got %+v", got)
	}
}

func TestRedisChapterCache_Clear(t *testing.T) {
	_, client := setupTestRedis(t)

	c := NewRedisChapterCache(client)
	ctx := context.Background()

	if err := c.Set(ctx, "vid-1", sampleChapters("Intro"), time.Minute); err != nil {
		t.Fatalf("Set() unexpected error: %v", err)
	}
	if err := c.Set(ctx, "vid-2", sampleChapters("Intro"), time.Minute); err != nil {
		t.Fatalf("Set() unexpected error: %v", err)
	}

	if err := c.Clear(ctx); err != nil {
		t.Fatalf("Clear() unexpected error: %v", err)
	}

	for _, id := range []string{"vid-1", "vid-2"} {
		if got, _ := c.Get(ctx, id); got != nil {
			t.Errorf("Get(%q) after Clear = %+v, want nil", id, got)
		}
	}
}
