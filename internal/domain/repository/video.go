package repository

import (
	"context"

	"github.com/hszk-dev/chapterize/internal/domain/model"
)

// VideoRepository defines the interface for video record persistence.
// Implementations should be provided by the infrastructure layer (e.g., PostgreSQL).
type VideoRepository interface {
	// Create persists a new video record.
	// Returns ErrDuplicateVideo if a record with the same video ID already exists.
	// Creation is append-only: an existing record is never overwritten.
	Create(ctx context.Context, record *model.VideoRecord) error

	// GetByID retrieves a video record by its video ID.
	// Returns nil and ErrVideoNotFound if the record does not exist.
	GetByID(ctx context.Context, videoID string) (*model.VideoRecord, error)

	// IncrementFrequency atomically increments the access counter of a record.
	// Concurrent increments for the same video ID must not lose updates.
	// Returns ErrVideoNotFound if the record does not exist.
	IncrementFrequency(ctx context.Context, videoID string) error

	// ListByFrequency retrieves all records ordered by frequency descending.
	// Ties are broken by creation time ascending so the ranking is stable.
	ListByFrequency(ctx context.Context) ([]*model.VideoRecord, error)
}
