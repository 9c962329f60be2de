package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(app *App) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", app.HealthHandler)

		r.Route("/videos", func(r chi.Router) {
			r.Post("/upload", app.UploadHandler)
			r.Get("/", app.ListVideosHandler)
			r.Get("/{id}", app.GetVideoHandler)
			r.Delete("/{id}", app.DeleteVideoHandler)
			r.Get("/{id}/stream", app.StreamVideoHandler)
			r.Get("/{id}/events", app.VideoEventsHandler)
		})

		r.Route("/transcripts", func(r chi.Router) {
			// {id} is a video ID here, a segment ID below.
			r.Get("/{id}", app.GetTranscriptHandler)
			r.Get("/segment/{id}", app.GetSegmentHandler)
			r.Patch("/segment/{id}", app.UpdateSegmentHandler)
		})

		r.Route("/questions", func(r chi.Router) {
			// {id} is a video ID for listing and export, a question
			// ID for edits.
			r.Get("/{id}", app.ListQuestionsHandler)
			r.Get("/{id}/export", app.ExportQuestionsHandler)
			r.Get("/segment/{id}", app.ListSegmentQuestionsHandler)
			r.Patch("/{id}", app.UpdateQuestionHandler)
			r.Delete("/{id}", app.DeleteQuestionHandler)
		})
	})

	return r
}
