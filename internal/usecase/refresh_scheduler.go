package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/hszk-dev/chapterize/internal/domain/model"
	"github.com/hszk-dev/chapterize/internal/domain/repository"
	"github.com/hszk-dev/chapterize/internal/infrastructure/cache"
	"github.com/hszk-dev/chapterize/internal/infrastructure/metrics"
)

// RefreshSchedulerConfig holds configuration for RefreshScheduler.
type RefreshSchedulerConfig struct {
	// Interval between refresh runs.
	Interval time.Duration
	// TopRatio is the fraction of records kept in the cache working set.
	TopRatio float64
	// CacheTTL is the TTL applied to entries installed by a refresh.
	CacheTTL time.Duration
}

// DefaultRefreshSchedulerConfig returns the default configuration.
func DefaultRefreshSchedulerConfig() RefreshSchedulerConfig {
	return RefreshSchedulerConfig{
		Interval: 15 * time.Minute,
		TopRatio: 0.3,
		CacheTTL: 15 * time.Minute,
	}
}

// RefreshScheduler periodically rebuilds the cache working set from the
// store's popularity ranking. It communicates with the cache only through
// its public interface and never blocks request handling.
type RefreshScheduler struct {
	repo  repository.VideoRepository
	cache cache.ChapterCache

	interval time.Duration
	topRatio float64
	cacheTTL time.Duration
}

// NewRefreshScheduler creates a new RefreshScheduler instance.
func NewRefreshScheduler(
	repo repository.VideoRepository,
	chapterCache cache.ChapterCache,
	cfg RefreshSchedulerConfig,
) *RefreshScheduler {
	return &RefreshScheduler{
		repo:     repo,
		cache:    chapterCache,
		interval: cfg.Interval,
		topRatio: cfg.TopRatio,
		cacheTTL: cfg.CacheTTL,
	}
}

// Run executes refresh ticks until the context is cancelled.
// A failed tick is logged and retried on the next interval; it never
// terminates the loop. Returns nil on cancellation so callers can treat
// shutdown as clean.
func (s *RefreshScheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	slog.Info("refresh scheduler started", "interval", s.interval)

	for {
		select {
		case <-ctx.Done():
			slog.Info("refresh scheduler stopped")
			return nil
		case <-ticker.C:
			if err := s.Refresh(ctx); err != nil {
				metrics.RefreshRunsTotal.WithLabelValues(metrics.StatusError).Inc()
				slog.Error("cache refresh failed", "error", err)
			}
		}
	}
}

// Refresh rebuilds the cache working set once. It is exported so startup
// can warm the cache before the first tick and so tests can drive it
// directly. A store read failure aborts the run without touching the cache.
func (s *RefreshScheduler) Refresh(ctx context.Context) error {
	records, err := s.repo.ListByFrequency(ctx)
	if err != nil {
		return fmt.Errorf("list records by frequency: %w", err)
	}

	if len(records) == 0 {
		metrics.RefreshRunsTotal.WithLabelValues(metrics.StatusEmpty).Inc()
		return nil
	}

	top := topCount(len(records), s.topRatio)
	entries := make(map[string][]model.Chapter, top)
	for _, record := range records[:top] {
		entries[record.VideoID] = record.Chapters
	}

	if err := s.cache.Replace(ctx, entries, s.cacheTTL); err != nil {
		metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpReplace, metrics.CacheStatusError).Inc()
		return fmt.Errorf("replace cache contents: %w", err)
	}

	metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpReplace, metrics.CacheStatusSuccess).Inc()
	metrics.RefreshRunsTotal.WithLabelValues(metrics.StatusSuccess).Inc()
	metrics.CachedEntries.Set(float64(top))

	slog.Info("cache refreshed",
		"total_records", len(records),
		"cached_entries", top,
	)

	return nil
}

// topCount returns how many of total records belong in the working set:
// ceil(ratio * total), clamped to [1, total].
func topCount(total int, ratio float64) int {
	n := int(math.Ceil(ratio * float64(total)))
	if n < 1 {
		n = 1
	}
	if n > total {
		n = total
	}
	return n
}
