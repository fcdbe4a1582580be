package repository

import "errors"

var (
	// ErrVideoNotFound is returned when a video record cannot be found.
	ErrVideoNotFound = errors.New("video not found")

	// ErrDuplicateVideo is returned when attempting to create a record for a video ID that already exists.
	ErrDuplicateVideo = errors.New("video already exists")

	// ErrGenerationFailed is returned when the chapter generator fails,
	// times out, or produces output that cannot be parsed.
	ErrGenerationFailed = errors.New("chapter generation failed")
)
