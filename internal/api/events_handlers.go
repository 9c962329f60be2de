package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/avolkov/vidquiz/internal/models"
	"github.com/avolkov/vidquiz/internal/pubsub"
)

// VideoEventsHandler streams processing progress for one video as
// server-sent events. The first event is a snapshot of the current
// status, so clients connecting mid-run (or after the fact) are not
// left waiting for an update that already happened. The stream closes
// after a terminal event or when the client goes away.
func (app *App) VideoEventsHandler(w http.ResponseWriter, r *http.Request) {
	videoID := chi.URLParam(r, "id")

	video, err := app.Videos.GetByID(r.Context(), videoID)
	if err != nil {
		app.respondStoreError(w, err, "video not found")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		app.respondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	// Subscribe before the snapshot so no event published in between
	// is lost.
	updates, cancel := app.Broker.Subscribe(videoID)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	writeEvent(w, statusSnapshot(video))
	flusher.Flush()

	if video.Status.Terminal() {
		return
	}

	clientGone := r.Context().Done()
	for {
		select {
		case update, ok := <-updates:
			if !ok {
				return
			}
			writeEvent(w, update)
			flusher.Flush()
			if update.Status.Terminal() {
				return
			}
		case <-clientGone:
			return
		}
	}
}

func writeEvent(w http.ResponseWriter, update pubsub.Update) {
	data, err := json.Marshal(update)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: progress\ndata: %s\n\n", data)
}

// statusSnapshot reconstructs a progress event from stored state for
// clients that subscribe between published events.
func statusSnapshot(video *models.Video) pubsub.Update {
	update := pubsub.Update{Status: video.Status}
	switch video.Status {
	case models.StatusGeneratingQuestions:
		update.Progress = 50
	case models.StatusCompleted:
		update.Progress = 100
		update.Message = "Processing completed"
	case models.StatusFailed:
		update.Message = "Processing failed"
	}
	return update
}
