package api

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/avolkov/vidquiz/internal/database"
	"github.com/avolkov/vidquiz/internal/media"
	"github.com/avolkov/vidquiz/internal/models"
	"github.com/avolkov/vidquiz/internal/pipeline"
	"github.com/avolkov/vidquiz/internal/pubsub"
	"github.com/avolkov/vidquiz/internal/storage"
)

// newTestServer wires a full app against sqlite in a temp dir, with a
// fixed-duration prober and zero-delay stub sources so pipeline runs
// finish in milliseconds.
func newTestServer(t *testing.T) (*httptest.Server, *App) {
	t.Helper()

	db, err := database.NewDB(database.Config{
		Type:       "sqlite",
		SQLitePath: filepath.Join(t.TempDir(), "test.db"),
	})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	store, err := storage.NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}

	log := logrus.New()
	log.SetOutput(io.Discard)

	videos := database.NewVideoRepository(db)
	segments := database.NewSegmentRepository(db)
	questions := database.NewQuestionRepository(db)
	broker := pubsub.NewBroker()

	pipe := pipeline.NewService(
		videos, segments, questions, broker,
		media.Fixed{Seconds: 600},
		&pipeline.Transcriber{Window: 300, Text: pipeline.NewStubTextSource(0)},
		&pipeline.Generator{Questions: pipeline.NewStubQuestionSource(0, 42)},
		pipeline.Config{StageTimeout: 10 * time.Second, FallbackDuration: 600},
		log,
	)

	app := NewApp(log, store, videos, segments, questions, pipe, broker, 64<<20)
	srv := httptest.NewServer(NewRouter(app))
	t.Cleanup(srv.Close)

	return srv, app
}

// uploadVideo posts a small fake MP4 and returns the created record.
func uploadVideo(t *testing.T, srv *httptest.Server, title string) models.Video {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if title != "" {
		if err := mw.WriteField("title", title); err != nil {
			t.Fatalf("writing title field: %v", err)
		}
	}
	fw, err := mw.CreateFormFile("video", "lecture.mp4")
	if err != nil {
		t.Fatalf("creating form file: %v", err)
	}
	fw.Write([]byte("\x00\x00\x00\x18ftypmp42fake video payload"))
	mw.Close()

	resp, err := http.Post(srv.URL+"/api/videos/upload", mw.FormDataContentType(), &buf)
	if err != nil {
		t.Fatalf("upload request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("upload status %d: %s", resp.StatusCode, body)
	}

	var video models.Video
	if err := json.NewDecoder(resp.Body).Decode(&video); err != nil {
		t.Fatalf("decoding upload response: %v", err)
	}
	return video
}

// waitForStatus polls the video endpoint until the wanted status shows
// up or the deadline passes.
func waitForStatus(t *testing.T, srv *httptest.Server, videoID string, want models.ProcessingStatus) models.Video {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for {
		video := getVideo(t, srv, videoID)
		if video.Status == want {
			return video
		}
		if video.Status == models.StatusFailed && want != models.StatusFailed {
			t.Fatalf("processing failed: %s", video.ErrorMessage)
		}
		if time.Now().After(deadline) {
			t.Fatalf("video %s never reached %s, last status %s", videoID, want, video.Status)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

// waitForIdle blocks until no pipeline run is in flight for the video.
// The completed status lands an instant before the run slot frees up.
func waitForIdle(t *testing.T, app *App, videoID string) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for app.Pipeline.Active(videoID) {
		if time.Now().After(deadline) {
			t.Fatalf("pipeline for %s never went idle", videoID)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func getVideo(t *testing.T, srv *httptest.Server, videoID string) models.Video {
	t.Helper()

	resp, err := http.Get(srv.URL + "/api/videos/" + videoID)
	if err != nil {
		t.Fatalf("get video failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get video status %d", resp.StatusCode)
	}

	var video models.Video
	if err := json.NewDecoder(resp.Body).Decode(&video); err != nil {
		t.Fatalf("decoding video: %v", err)
	}
	return video
}

func getJSON(t *testing.T, srv *httptest.Server, path string, dst any) *http.Response {
	t.Helper()

	resp, err := http.Get(srv.URL + path)
	if err != nil {
		t.Fatalf("GET %s failed: %v", path, err)
	}
	defer resp.Body.Close()
	if dst != nil && resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
			t.Fatalf("decoding %s: %v", path, err)
		}
	}
	return resp
}

func doJSON(t *testing.T, srv *httptest.Server, method, path string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshaling body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, srv.URL+path, reader)
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	return resp
}
