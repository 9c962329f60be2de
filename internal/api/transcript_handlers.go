package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/avolkov/vidquiz/internal/models"
)

// GetTranscriptHandler returns every segment of a video in start-time
// order. An existing video with no segments yet returns an empty list.
func (app *App) GetTranscriptHandler(w http.ResponseWriter, r *http.Request) {
	videoID := chi.URLParam(r, "id")

	if _, err := app.Videos.GetByID(r.Context(), videoID); err != nil {
		app.respondStoreError(w, err, "video not found")
		return
	}

	segments, err := app.Segments.ListByVideo(r.Context(), videoID)
	if err != nil {
		app.respondStoreError(w, err, "")
		return
	}
	if segments == nil {
		segments = []models.Segment{}
	}
	app.respondJSON(w, http.StatusOK, segments)
}

func (app *App) GetSegmentHandler(w http.ResponseWriter, r *http.Request) {
	segment, err := app.Segments.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		app.respondStoreError(w, err, "segment not found")
		return
	}
	app.respondJSON(w, http.StatusOK, segment)
}

type updateSegmentRequest struct {
	Text string `json:"text" validate:"required"`
}

// UpdateSegmentHandler rewrites a segment's text. Timing is fixed by
// the transcription windows and cannot be edited.
func (app *App) UpdateSegmentHandler(w http.ResponseWriter, r *http.Request) {
	var req updateSegmentRequest
	if err := app.decodeBody(r, &req); err != nil {
		app.respondError(w, http.StatusBadRequest, "text is required")
		return
	}

	segment, err := app.Segments.UpdateText(r.Context(), chi.URLParam(r, "id"), req.Text)
	if err != nil {
		app.respondStoreError(w, err, "segment not found")
		return
	}
	app.respondJSON(w, http.StatusOK, segment)
}
