package repository

import (
	"context"

	"github.com/hszk-dev/chapterize/internal/domain/model"
)

// ChapterGenerator defines the interface for producing a chapter breakdown
// from a raw transcript. Implementations call an external model provider
// and must honor context cancellation; callers bound each call with a timeout.
type ChapterGenerator interface {
	// Generate returns an ordered chapter list for the transcript.
	// Errors, including malformed model output, wrap ErrGenerationFailed.
	Generate(ctx context.Context, transcript string) ([]model.Chapter, error)
}
