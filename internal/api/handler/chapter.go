package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/hszk-dev/chapterize/internal/domain/model"
	"github.com/hszk-dev/chapterize/internal/domain/repository"
	"github.com/hszk-dev/chapterize/internal/usecase"
)

// Request/Response types

type IngestRequest struct {
	VideoID    string `json:"video_id"`
	Transcript string `json:"transcript"`
}

type ChaptersResponse struct {
	VideoID  string          `json:"video_id"`
	Chapters []model.Chapter `json:"chapters"`
}

// ChapterHandler handles chapter-related HTTP requests.
type ChapterHandler struct {
	svc usecase.ChapterService
}

// NewChapterHandler creates a new ChapterHandler.
func NewChapterHandler(svc usecase.ChapterService) *ChapterHandler {
	return &ChapterHandler{svc: svc}
}

// Lookup handles GET /v1/chapters?video_id=<id>
func (h *ChapterHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	videoID := r.URL.Query().Get("video_id")
	if videoID == "" {
		Error(w, http.StatusBadRequest, "missing_video_id", "Query parameter video_id is required")
		return
	}

	chapters, err := h.svc.Lookup(r.Context(), videoID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	JSON(w, http.StatusOK, ChaptersResponse{
		VideoID:  videoID,
		Chapters: chapters,
	})
}

// Ingest handles POST /v1/chapters
func (h *ChapterHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	var req IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	chapters, err := h.svc.Ingest(r.Context(), usecase.IngestInput{
		VideoID:    req.VideoID,
		Transcript: req.Transcript,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	JSON(w, http.StatusCreated, ChaptersResponse{
		VideoID:  req.VideoID,
		Chapters: chapters,
	})
}

func (h *ChapterHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrEmptyVideoID):
		Error(w, http.StatusBadRequest, "missing_video_id", "Video ID is required")
	case errors.Is(err, model.ErrEmptyTranscript):
		Error(w, http.StatusBadRequest, "missing_transcript", "Transcript is required")
	case errors.Is(err, model.ErrVideoIDTooLong):
		Error(w, http.StatusBadRequest, "invalid_video_id", "Video ID exceeds maximum length")
	case errors.Is(err, repository.ErrVideoNotFound):
		Error(w, http.StatusNotFound, "video_not_found", "No chapters for this video ID")
	case errors.Is(err, repository.ErrDuplicateVideo):
		Error(w, http.StatusConflict, "video_already_exists", "Chapters for this video ID already exist")
	case errors.Is(err, repository.ErrGenerationFailed):
		Error(w, http.StatusBadGateway, "generation_failed", "Chapter generation failed")
	default:
		Error(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
	}
}
