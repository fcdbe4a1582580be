package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hszk-dev/chapterize/internal/domain/model"
	"github.com/hszk-dev/chapterize/internal/domain/repository"
	"github.com/hszk-dev/chapterize/internal/infrastructure/cache"
	"github.com/hszk-dev/chapterize/internal/infrastructure/metrics"
	"github.com/hszk-dev/chapterize/internal/infrastructure/storage"
)

// IngestInput contains the input parameters for ingesting a transcript.
type IngestInput struct {
	VideoID    string
	Transcript string
}

// ChapterService defines the interface for chapter lookup and ingestion.
type ChapterService interface {
	// Lookup returns the chapters for a video, serving from the cache when
	// possible and falling back to the durable store. A store-served lookup
	// increments the record's access frequency exactly once.
	Lookup(ctx context.Context, videoID string) ([]model.Chapter, error)

	// Ingest generates chapters for a new transcript and persists them.
	// A video ID that already has a record is rejected with
	// repository.ErrDuplicateVideo before the generator is invoked.
	Ingest(ctx context.Context, input IngestInput) ([]model.Chapter, error)
}

// ChapterServiceConfig holds configuration for ChapterService.
type ChapterServiceConfig struct {
	// CacheTTL is the TTL applied to entries backfilled on store-served lookups.
	CacheTTL time.Duration
	// GenerateTimeout bounds a single generator call so a hung provider
	// cannot hold a request forever.
	GenerateTimeout time.Duration
}

// DefaultChapterServiceConfig returns the default configuration.
func DefaultChapterServiceConfig() ChapterServiceConfig {
	return ChapterServiceConfig{
		CacheTTL:        15 * time.Minute,
		GenerateTimeout: 60 * time.Second,
	}
}

type chapterService struct {
	repo      repository.VideoRepository
	cache     cache.ChapterCache
	generator repository.ChapterGenerator
	archive   repository.ObjectStorage

	cacheTTL        time.Duration
	generateTimeout time.Duration
}

// NewChapterService creates a new ChapterService instance.
// archive may be nil, in which case transcripts are kept only in the database.
func NewChapterService(
	repo repository.VideoRepository,
	chapterCache cache.ChapterCache,
	generator repository.ChapterGenerator,
	archive repository.ObjectStorage,
	cfg ChapterServiceConfig,
) ChapterService {
	return &chapterService{
		repo:            repo,
		cache:           chapterCache,
		generator:       generator,
		archive:         archive,
		cacheTTL:        cfg.CacheTTL,
		generateTimeout: cfg.GenerateTimeout,
	}
}

// Lookup implements the cache -> store fallback chain.
func (s *chapterService) Lookup(ctx context.Context, videoID string) ([]model.Chapter, error) {
	if videoID == "" {
		return nil, model.ErrEmptyVideoID
	}

	chapters, err := s.cache.Get(ctx, videoID)
	if err != nil {
		// A broken cache degrades to store reads, it does not fail lookups.
		metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpGet, metrics.CacheStatusError).Inc()
		slog.Warn("cache get failed, falling back to store",
			"video_id", videoID,
			"error", err,
		)
	}

	if chapters != nil {
		metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpGet, metrics.CacheStatusHit).Inc()
		metrics.LookupsTotal.WithLabelValues(metrics.LookupSourceCache).Inc()
		return chapters, nil
	}
	metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpGet, metrics.CacheStatusMiss).Inc()

	record, err := s.repo.GetByID(ctx, videoID)
	if err != nil {
		if errors.Is(err, repository.ErrVideoNotFound) {
			metrics.LookupsTotal.WithLabelValues(metrics.LookupSourceNone).Inc()
		}
		return nil, err
	}

	// The increment is part of the store-served path: popularity ranking
	// depends on it, so a failure here fails the lookup rather than
	// silently under-counting.
	if err := s.repo.IncrementFrequency(ctx, videoID); err != nil {
		return nil, fmt.Errorf("increment frequency: %w", err)
	}
	metrics.LookupsTotal.WithLabelValues(metrics.LookupSourceStore).Inc()

	// Backfill so repeat lookups before the next refresh stay in memory.
	// Frequency was already counted above, so this cannot double-count.
	if err := s.cache.Set(ctx, videoID, record.Chapters, s.cacheTTL); err != nil {
		metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpSet, metrics.CacheStatusError).Inc()
		slog.Warn("failed to backfill cache",
			"video_id", videoID,
			"error", err,
		)
	} else {
		metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpSet, metrics.CacheStatusSuccess).Inc()
	}

	return record.Chapters, nil
}

// Ingest validates the input, generates chapters, and persists the record.
func (s *chapterService) Ingest(ctx context.Context, input IngestInput) ([]model.Chapter, error) {
	if input.VideoID == "" {
		return nil, model.ErrEmptyVideoID
	}
	if input.Transcript == "" {
		return nil, model.ErrEmptyTranscript
	}

	// Reject duplicates before spending a generator call on them.
	_, err := s.repo.GetByID(ctx, input.VideoID)
	if err == nil {
		return nil, repository.ErrDuplicateVideo
	}
	if !errors.Is(err, repository.ErrVideoNotFound) {
		return nil, fmt.Errorf("check existing record: %w", err)
	}

	chapters, err := s.generate(ctx, input.Transcript)
	if err != nil {
		return nil, err
	}

	record, err := model.NewVideoRecord(input.VideoID, input.Transcript, chapters)
	if err != nil {
		return nil, err
	}

	// Two concurrent ingests for the same new ID race to this insert; the
	// unique constraint picks the winner and the loser sees ErrDuplicateVideo.
	if err := s.repo.Create(ctx, record); err != nil {
		return nil, err
	}

	if s.archive != nil {
		key := storage.TranscriptKey(input.VideoID)
		if err := s.archive.Upload(ctx, key, strings.NewReader(input.Transcript), "text/plain; charset=utf-8"); err != nil {
			// The database row already holds the transcript; the object
			// copy is an audit convenience.
			slog.Warn("failed to archive transcript",
				"video_id", input.VideoID,
				"key", key,
				"error", err,
			)
		}
	}

	return chapters, nil
}

// generate calls the chapter generator under a bounded timeout and maps
// every failure mode, including timeouts, to repository.ErrGenerationFailed.
func (s *chapterService) generate(ctx context.Context, transcript string) ([]model.Chapter, error) {
	ctx, cancel := context.WithTimeout(ctx, s.generateTimeout)
	defer cancel()

	start := time.Now()
	chapters, err := s.generator.Generate(ctx, transcript)
	metrics.GeneratorDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.GeneratorRequestsTotal.WithLabelValues(metrics.StatusError).Inc()
		if !errors.Is(err, repository.ErrGenerationFailed) {
			err = fmt.Errorf("%w: %v", repository.ErrGenerationFailed, err)
		}
		return nil, err
	}

	metrics.GeneratorRequestsTotal.WithLabelValues(metrics.StatusSuccess).Inc()
	return chapters, nil
}
