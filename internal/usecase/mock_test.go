package usecase

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/hszk-dev/chapterize/internal/domain/model"
)

// mockVideoRepository provides a configurable mock for VideoRepository.
type mockVideoRepository struct {
	createFn             func(ctx context.Context, record *model.VideoRecord) error
	getByIDFn            func(ctx context.Context, videoID string) (*model.VideoRecord, error)
	incrementFrequencyFn func(ctx context.Context, videoID string) error
	listByFrequencyFn    func(ctx context.Context) ([]*model.VideoRecord, error)
}

func (m *mockVideoRepository) Create(ctx context.Context, record *model.VideoRecord) error {
	if m.createFn != nil {
		return m.createFn(ctx, record)
	}
	return nil
}

func (m *mockVideoRepository) GetByID(ctx context.Context, videoID string) (*model.VideoRecord, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, videoID)
	}
	return nil, nil
}

func (m *mockVideoRepository) IncrementFrequency(ctx context.Context, videoID string) error {
	if m.incrementFrequencyFn != nil {
		return m.incrementFrequencyFn(ctx, videoID)
	}
	return nil
}

func (m *mockVideoRepository) ListByFrequency(ctx context.Context) ([]*model.VideoRecord, error) {
	if m.listByFrequencyFn != nil {
		return m.listByFrequencyFn(ctx)
	}
	return nil, nil
}

// mockChapterCache provides a configurable mock for ChapterCache backed by
// a plain map when no override is set.
type mockChapterCache struct {
	mu        sync.RWMutex
	data      map[string][]model.Chapter
	getFn     func(ctx context.Context, videoID string) ([]model.Chapter, error)
	setFn     func(ctx context.Context, videoID string, chapters []model.Chapter, ttl time.Duration) error
	replaceFn func(ctx context.Context, entries map[string][]model.Chapter, ttl time.Duration) error
	clearFn   func(ctx context.Context) error
}

func newMockChapterCache() *mockChapterCache {
	return &mockChapterCache{
		data: make(map[string][]model.Chapter),
	}
}

func (m *mockChapterCache) Get(ctx context.Context, videoID string) ([]model.Chapter, error) {
	if m.getFn != nil {
		return m.getFn(ctx, videoID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.data[videoID], nil
}

func (m *mockChapterCache) Set(ctx context.Context, videoID string, chapters []model.Chapter, ttl time.Duration) error {
	if m.setFn != nil {
		return m.setFn(ctx, videoID, chapters, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[videoID] = chapters
	return nil
}

func (m *mockChapterCache) Replace(ctx context.Context, entries map[string][]model.Chapter, ttl time.Duration) error {
	if m.replaceFn != nil {
		return m.replaceFn(ctx, entries, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[string][]model.Chapter, len(entries))
	for videoID, chapters := range entries {
		m.data[videoID] = chapters
	}
	return nil
}

func (m *mockChapterCache) Clear(ctx context.Context) error {
	if m.clearFn != nil {
		return m.clearFn(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[string][]model.Chapter)
	return nil
}

// mockChapterGenerator provides a configurable mock for ChapterGenerator.
type mockChapterGenerator struct {
	generateFn func(ctx context.Context, transcript string) ([]model.Chapter, error)
}

func (m *mockChapterGenerator) Generate(ctx context.Context, transcript string) ([]model.Chapter, error) {
	if m.generateFn != nil {
		return m.generateFn(ctx, transcript)
	}
	return nil, nil
}

// mockObjectStorage provides a configurable mock for ObjectStorage.
type mockObjectStorage struct {
	uploadFn   func(ctx context.Context, key string, reader io.Reader, contentType string) error
	downloadFn func(ctx context.Context, key string) (io.ReadCloser, error)
	existsFn   func(ctx context.Context, key string) (bool, error)
	deleteFn   func(ctx context.Context, key string) error
}

func (m *mockObjectStorage) Upload(ctx context.Context, key string, reader io.Reader, contentType string) error {
	if m.uploadFn != nil {
		return m.uploadFn(ctx, key, reader, contentType)
	}
	return nil
}

func (m *mockObjectStorage) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	if m.downloadFn != nil {
		return m.downloadFn(ctx, key)
	}
	return nil, nil
}

func (m *mockObjectStorage) Exists(ctx context.Context, key string) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, key)
	}
	return false, nil
}

func (m *mockObjectStorage) Delete(ctx context.Context, key string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, key)
	}
	return nil
}

func testChapters() []model.Chapter {
	return []model.Chapter{
		{Start: 0, End: 30, Significance: model.SignificanceVeryHigh, Chapter: "Opening", Summary: "Host sets up the problem."},
		{Start: 30, End: 95, Significance: model.SignificanceHigh, Chapter: "Main argument", Summary: "Core material."},
		{Start: 95, End: 110, Significance: model.SignificanceOffTopic, Chapter: "Sponsor read", Summary: "Ad break."},
	}
}
