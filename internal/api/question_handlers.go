package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/avolkov/vidquiz/internal/database"
	"github.com/avolkov/vidquiz/internal/models"
)

func (app *App) ListQuestionsHandler(w http.ResponseWriter, r *http.Request) {
	videoID := chi.URLParam(r, "id")

	if _, err := app.Videos.GetByID(r.Context(), videoID); err != nil {
		app.respondStoreError(w, err, "video not found")
		return
	}

	questions, err := app.Questions.ListByVideo(r.Context(), videoID)
	if err != nil {
		app.respondStoreError(w, err, "")
		return
	}
	if questions == nil {
		questions = []models.Question{}
	}
	app.respondJSON(w, http.StatusOK, questions)
}

func (app *App) ListSegmentQuestionsHandler(w http.ResponseWriter, r *http.Request) {
	segmentID := chi.URLParam(r, "id")

	if _, err := app.Segments.GetByID(r.Context(), segmentID); err != nil {
		app.respondStoreError(w, err, "segment not found")
		return
	}

	questions, err := app.Questions.ListBySegment(r.Context(), segmentID)
	if err != nil {
		app.respondStoreError(w, err, "")
		return
	}
	if questions == nil {
		questions = []models.Question{}
	}
	app.respondJSON(w, http.StatusOK, questions)
}

// ExportQuestionsHandler serves the video's quiz as a JSON attachment.
func (app *App) ExportQuestionsHandler(w http.ResponseWriter, r *http.Request) {
	videoID := chi.URLParam(r, "id")

	video, err := app.Videos.GetByID(r.Context(), videoID)
	if err != nil {
		app.respondStoreError(w, err, "video not found")
		return
	}

	questions, err := app.Questions.ListByVideo(r.Context(), videoID)
	if err != nil {
		app.respondStoreError(w, err, "")
		return
	}
	if questions == nil {
		questions = []models.Question{}
	}

	export := struct {
		VideoID   string            `json:"videoId"`
		Title     string            `json:"title"`
		Questions []models.Question `json:"questions"`
	}{
		VideoID:   video.ID,
		Title:     video.Title,
		Questions: questions,
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="questions-%s.json"`, videoID))

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(export); err != nil {
		app.Log.WithError(err).Error("writing export")
	}
}

type updateQuestionRequest struct {
	Text               *string         `json:"text"`
	Options            []models.Option `json:"options"`
	CorrectOptionIndex *int            `json:"correctOptionIndex"`
}

// UpdateQuestionHandler applies a partial edit. The merged question is
// revalidated before anything is written, so an edit can never leave an
// invalid question behind.
func (app *App) UpdateQuestionHandler(w http.ResponseWriter, r *http.Request) {
	var req updateQuestionRequest
	if err := app.decodeBody(r, &req); err != nil {
		app.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Text == nil && req.Options == nil && req.CorrectOptionIndex == nil {
		app.respondError(w, http.StatusBadRequest, "nothing to update")
		return
	}

	question, err := app.Questions.Update(r.Context(), chi.URLParam(r, "id"), database.UpdateQuestionParams{
		Text:               req.Text,
		Options:            req.Options,
		CorrectOptionIndex: req.CorrectOptionIndex,
	})
	if err != nil {
		app.respondStoreError(w, err, "question not found")
		return
	}
	app.respondJSON(w, http.StatusOK, question)
}

func (app *App) DeleteQuestionHandler(w http.ResponseWriter, r *http.Request) {
	if err := app.Questions.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		app.respondStoreError(w, err, "question not found")
		return
	}
	app.respondJSON(w, http.StatusNoContent, nil)
}
