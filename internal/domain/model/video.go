package model

import (
	"errors"
	"time"
)

// VideoRecord is the persisted chapter result for a single video.
// VideoID is an opaque external identifier (e.g. a platform video ID),
// unique across the store. Frequency counts lookups that were served by
// the durable store and only ever grows.
type VideoRecord struct {
	VideoID    string
	Frequency  int64
	Chapters   []Chapter
	Transcript string
	CreatedAt  time.Time
}

var (
	ErrEmptyVideoID        = errors.New("video ID cannot be empty")
	ErrEmptyTranscript     = errors.New("transcript cannot be empty")
	ErrVideoIDTooLong      = errors.New("video ID exceeds maximum length of 255 characters")
	ErrNoChapters          = errors.New("chapter list cannot be empty")
	ErrInvalidChapterRange = errors.New("chapter has an invalid time range")
	ErrInvalidSignificance = errors.New("chapter has an unknown significance label")
	ErrEmptyChapterTitle   = errors.New("chapter title cannot be empty")
)

const maxVideoIDLength = 255

// NewVideoRecord creates a record for a freshly generated chapter set.
// Frequency starts at 1: the ingest that produced the record counts as
// its first access.
func NewVideoRecord(videoID, transcript string, chapters []Chapter) (*VideoRecord, error) {
	if videoID == "" {
		return nil, ErrEmptyVideoID
	}
	if len(videoID) > maxVideoIDLength {
		return nil, ErrVideoIDTooLong
	}
	if transcript == "" {
		return nil, ErrEmptyTranscript
	}
	if len(chapters) == 0 {
		return nil, ErrNoChapters
	}
	for _, ch := range chapters {
		if err := ch.Validate(); err != nil {
			return nil, err
		}
	}

	return &VideoRecord{
		VideoID:    videoID,
		Frequency:  1,
		Chapters:   chapters,
		Transcript: transcript,
		CreatedAt:  time.Now(),
	}, nil
}
