// Package api exposes the HTTP surface: uploads, video metadata,
// transcripts, questions, and per-video progress streams.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/avolkov/vidquiz/internal/database"
	"github.com/avolkov/vidquiz/internal/models"
	"github.com/avolkov/vidquiz/internal/pipeline"
	"github.com/avolkov/vidquiz/internal/pubsub"
	"github.com/avolkov/vidquiz/internal/storage"
)

type App struct {
	Log       *logrus.Logger
	Storage   storage.Storage
	Videos    *database.VideoRepository
	Segments  *database.SegmentRepository
	Questions *database.QuestionRepository
	Pipeline  *pipeline.Service
	Broker    *pubsub.Broker

	MaxUploadSize int64

	validate *validator.Validate
}

func NewApp(
	log *logrus.Logger,
	store storage.Storage,
	videos *database.VideoRepository,
	segments *database.SegmentRepository,
	questions *database.QuestionRepository,
	pipe *pipeline.Service,
	broker *pubsub.Broker,
	maxUploadSize int64,
) *App {
	if log == nil {
		log = logrus.New()
	}
	return &App{
		Log:           log,
		Storage:       store,
		Videos:        videos,
		Segments:      segments,
		Questions:     questions,
		Pipeline:      pipe,
		Broker:        broker,
		MaxUploadSize: maxUploadSize,
		validate:      validator.New(),
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func (app *App) respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		app.Log.WithError(err).Error("writing response")
	}
}

func (app *App) respondError(w http.ResponseWriter, status int, message string) {
	app.respondJSON(w, status, errorResponse{Error: message})
}

// respondStoreError maps repository errors onto HTTP statuses. Not
// found and invalid question are client errors; everything else is a
// 500 with the detail kept in the log.
func (app *App) respondStoreError(w http.ResponseWriter, err error, notFoundMsg string) {
	switch {
	case errors.Is(err, database.ErrNotFound):
		app.respondError(w, http.StatusNotFound, notFoundMsg)
	case errors.Is(err, models.ErrInvalidQuestion):
		app.respondError(w, http.StatusBadRequest, err.Error())
	default:
		app.Log.WithError(err).Error("store operation failed")
		app.respondError(w, http.StatusInternalServerError, "internal error")
	}
}

// decodeBody parses a JSON request body into dst and runs struct
// validation on it.
func (app *App) decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	return app.validate.Struct(dst)
}
