package api

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/avolkov/vidquiz/internal/models"
	"github.com/avolkov/vidquiz/internal/pipeline"
	"github.com/avolkov/vidquiz/internal/storage"
)

func (app *App) HealthHandler(w http.ResponseWriter, r *http.Request) {
	app.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// UploadHandler accepts a multipart MP4 upload, stores the file,
// records a pending video and kicks off the processing pipeline. The
// response returns before any processing happens; clients follow up on
// the events stream.
func (app *App) UploadHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, app.MaxUploadSize)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		app.respondError(w, http.StatusRequestEntityTooLarge, "file too large")
		return
	}

	file, header, err := r.FormFile("video")
	if err != nil {
		app.respondError(w, http.StatusBadRequest, "video file is required")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if contentType != "video/mp4" && ext != ".mp4" {
		app.respondError(w, http.StatusBadRequest, "only MP4 video files are allowed")
		return
	}
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = "video/mp4"
	}

	title := r.FormValue("title")
	if title == "" {
		title = strings.TrimSuffix(header.Filename, filepath.Ext(header.Filename))
	}

	filename, err := app.Storage.SaveFile(file, storage.FileInfo{
		Filename:    header.Filename,
		ContentType: contentType,
		Size:        header.Size,
	})
	if err != nil {
		app.Log.WithError(err).Error("saving upload")
		app.respondError(w, http.StatusInternalServerError, "failed to save file")
		return
	}

	video := models.NewVideo(title, filename, header.Filename, contentType, header.Size)
	if err := app.Videos.Insert(r.Context(), video); err != nil {
		app.Storage.DeleteFile(filename)
		app.Log.WithError(err).Error("inserting video record")
		app.respondError(w, http.StatusInternalServerError, "failed to save video information")
		return
	}

	if err := app.Pipeline.Start(video.ID, app.Storage.FilePath(filename)); err != nil &&
		!errors.Is(err, pipeline.ErrAlreadyProcessing) {
		app.Log.WithError(err).Error("starting pipeline")
	}

	app.respondJSON(w, http.StatusCreated, video)
}

func (app *App) ListVideosHandler(w http.ResponseWriter, r *http.Request) {
	videos, err := app.Videos.List(r.Context())
	if err != nil {
		app.respondStoreError(w, err, "")
		return
	}
	if videos == nil {
		videos = []models.Video{}
	}
	app.respondJSON(w, http.StatusOK, videos)
}

func (app *App) GetVideoHandler(w http.ResponseWriter, r *http.Request) {
	video, err := app.Videos.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		app.respondStoreError(w, err, "video not found")
		return
	}
	app.respondJSON(w, http.StatusOK, video)
}

// DeleteVideoHandler removes the record and its stored file. Segments
// and questions go with the record in the same transaction.
func (app *App) DeleteVideoHandler(w http.ResponseWriter, r *http.Request) {
	videoID := chi.URLParam(r, "id")

	video, err := app.Videos.GetByID(r.Context(), videoID)
	if err != nil {
		app.respondStoreError(w, err, "video not found")
		return
	}
	if app.Pipeline.Active(videoID) {
		app.respondError(w, http.StatusConflict, "video is being processed")
		return
	}

	if err := app.Videos.Delete(r.Context(), videoID); err != nil {
		app.respondStoreError(w, err, "video not found")
		return
	}
	if err := app.Storage.DeleteFile(video.Filename); err != nil {
		// Record is gone; an orphaned file is only worth a log line.
		app.Log.WithError(err).WithField("filename", video.Filename).Warn("deleting stored file")
	}

	app.respondJSON(w, http.StatusNoContent, nil)
}

func (app *App) StreamVideoHandler(w http.ResponseWriter, r *http.Request) {
	video, err := app.Videos.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		app.respondStoreError(w, err, "video not found")
		return
	}

	file, err := app.Storage.OpenFile(video.Filename)
	if err != nil {
		app.respondError(w, http.StatusNotFound, "video file not found")
		return
	}
	defer file.Close()

	modTime := video.UploadTime
	if stat, ok := file.(interface{ Stat() (os.FileInfo, error) }); ok {
		if info, err := stat.Stat(); err == nil {
			modTime = info.ModTime()
		}
	}

	w.Header().Set("Content-Type", video.ContentType)
	// ServeContent handles Range requests, 206 responses and
	// Accept-Ranges headers.
	http.ServeContent(w, r, video.OriginalFilename, modTime, file)
}
