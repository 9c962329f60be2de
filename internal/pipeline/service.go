package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/avolkov/vidquiz/internal/media"
	"github.com/avolkov/vidquiz/internal/models"
	"github.com/avolkov/vidquiz/internal/pubsub"
)

// ErrAlreadyProcessing is returned when a second run is started for a
// video whose pipeline is still active.
var ErrAlreadyProcessing = errors.New("video is already being processed")

// StatusStore is the slice of the video repository the pipeline needs.
type StatusStore interface {
	UpdateStatus(ctx context.Context, id string, status models.ProcessingStatus, duration *float64, errorMessage *string) error
}

type SegmentStore interface {
	ReplaceForVideo(ctx context.Context, videoID string, drafts []models.SegmentDraft) ([]models.Segment, error)
}

type QuestionStore interface {
	ReplaceForVideo(ctx context.Context, videoID string, drafts []models.QuestionDraft) error
}

type Publisher interface {
	Publish(videoID string, update pubsub.Update)
}

type Config struct {
	// StageTimeout bounds each stage; a stuck backend fails the run
	// instead of hanging forever.
	StageTimeout time.Duration
	// FallbackDuration is used when probing the file fails.
	FallbackDuration float64
}

// Service orchestrates the processing pipeline for uploaded videos.
// Each run is a single goroutine; runs for different videos proceed
// independently, and a video never has two concurrent runs.
type Service struct {
	videos    StatusStore
	segments  SegmentStore
	questions QuestionStore
	publisher Publisher
	prober    media.Prober

	transcriber *Transcriber
	generator   *Generator

	stageTimeout     time.Duration
	fallbackDuration float64
	log              *logrus.Logger

	mu     sync.Mutex
	active map[string]struct{}
}

func NewService(
	videos StatusStore,
	segments SegmentStore,
	questions QuestionStore,
	publisher Publisher,
	prober media.Prober,
	transcriber *Transcriber,
	generator *Generator,
	config Config,
	log *logrus.Logger,
) *Service {
	if config.StageTimeout == 0 {
		config.StageTimeout = 10 * time.Minute
	}
	if config.FallbackDuration == 0 {
		config.FallbackDuration = 600
	}
	if log == nil {
		log = logrus.New()
	}

	return &Service{
		videos:           videos,
		segments:         segments,
		questions:        questions,
		publisher:        publisher,
		prober:           prober,
		transcriber:      transcriber,
		generator:        generator,
		stageTimeout:     config.StageTimeout,
		fallbackDuration: config.FallbackDuration,
		log:              log,
		active:           make(map[string]struct{}),
	}
}

// Start launches the pipeline for a freshly uploaded video and returns
// immediately. Must be called exactly once per upload; a second call
// while the first run is active returns ErrAlreadyProcessing.
func (s *Service) Start(videoID, filePath string) error {
	s.mu.Lock()
	if _, running := s.active[videoID]; running {
		s.mu.Unlock()
		return ErrAlreadyProcessing
	}
	s.active[videoID] = struct{}{}
	s.mu.Unlock()

	go func() {
		defer func() {
			s.mu.Lock()
			delete(s.active, videoID)
			s.mu.Unlock()
		}()
		s.run(videoID, filePath)
	}()

	return nil
}

// Active reports whether a pipeline run is in flight for the video.
func (s *Service) Active(videoID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, running := s.active[videoID]
	return running
}

// run executes the full pipeline. Errors are terminal for the run and
// surface only through status and published events: the upload request
// has long since been answered.
func (s *Service) run(videoID, filePath string) {
	ctx := context.Background()
	log := s.log.WithFields(logrus.Fields{"videoId": videoID})

	duration, err := s.prober.Duration(filePath)
	if err != nil || duration <= 0 {
		log.WithError(err).Warnf("duration probe failed, assuming %.0fs", s.fallbackDuration)
		duration = s.fallbackDuration
	}

	if err := s.videos.UpdateStatus(ctx, videoID, models.StatusTranscribing, nil, nil); err != nil {
		s.fail(ctx, log, videoID, fmt.Errorf("updating status: %w", err))
		return
	}
	s.publisher.Publish(videoID, pubsub.Update{
		Status:   models.StatusTranscribing,
		Progress: 0,
		Message:  "Starting transcription...",
	})

	// Transcription covers the first half of the overall progress scale.
	stageCtx, cancel := context.WithTimeout(ctx, s.stageTimeout)
	drafts, err := s.transcriber.Run(stageCtx, Source{Path: filePath, Duration: duration}, func(p float64) {
		s.publisher.Publish(videoID, pubsub.Update{
			Status:   models.StatusTranscribing,
			Progress: int(math.Round(p * 50)),
			Message:  fmt.Sprintf("Transcribing video: %d%% complete", int(math.Round(p*100))),
		})
	})
	cancel()
	if err != nil {
		s.fail(ctx, log, videoID, fmt.Errorf("transcription: %w", err))
		return
	}

	segments, err := s.segments.ReplaceForVideo(ctx, videoID, drafts)
	if err != nil {
		s.fail(ctx, log, videoID, fmt.Errorf("storing segments: %w", err))
		return
	}
	log.Infof("transcribed %d segment(s) over %.0fs", len(segments), duration)

	if err := s.videos.UpdateStatus(ctx, videoID, models.StatusGeneratingQuestions, &duration, nil); err != nil {
		s.fail(ctx, log, videoID, fmt.Errorf("updating status: %w", err))
		return
	}
	s.publisher.Publish(videoID, pubsub.Update{
		Status:   models.StatusGeneratingQuestions,
		Progress: 50,
		Message:  "Starting question generation...",
	})

	stageCtx, cancel = context.WithTimeout(ctx, s.stageTimeout)
	questionDrafts, err := s.generator.Run(stageCtx, segments, func(p float64) {
		s.publisher.Publish(videoID, pubsub.Update{
			Status:   models.StatusGeneratingQuestions,
			Progress: 50 + int(math.Round(p*50)),
			Message:  fmt.Sprintf("Generating questions: %d%% complete", int(math.Round(p*100))),
		})
	})
	cancel()
	if err != nil {
		s.fail(ctx, log, videoID, fmt.Errorf("question generation: %w", err))
		return
	}

	if err := s.questions.ReplaceForVideo(ctx, videoID, questionDrafts); err != nil {
		s.fail(ctx, log, videoID, fmt.Errorf("storing questions: %w", err))
		return
	}
	log.Infof("generated %d question(s)", len(questionDrafts))

	if err := s.videos.UpdateStatus(ctx, videoID, models.StatusCompleted, nil, nil); err != nil {
		s.fail(ctx, log, videoID, fmt.Errorf("updating status: %w", err))
		return
	}
	s.publisher.Publish(videoID, pubsub.Update{
		Status:   models.StatusCompleted,
		Progress: 100,
		Message:  "Processing completed",
	})
}

func (s *Service) fail(ctx context.Context, log *logrus.Entry, videoID string, err error) {
	log.WithError(err).Error("processing failed")

	msg := err.Error()
	if statusErr := s.videos.UpdateStatus(ctx, videoID, models.StatusFailed, nil, &msg); statusErr != nil {
		log.WithError(statusErr).Error("could not record failed status")
	}

	s.publisher.Publish(videoID, pubsub.Update{
		Status:   models.StatusFailed,
		Progress: 0,
		Message:  "Processing failed",
	})
}
