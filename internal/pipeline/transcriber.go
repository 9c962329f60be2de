// Package pipeline drives a video through transcription and question
// generation, persisting results and publishing progress.
package pipeline

import (
	"context"
	"fmt"
	"math"

	"github.com/avolkov/vidquiz/internal/models"
)

// Source identifies the video file a stage works on.
type Source struct {
	Path     string
	Duration float64
}

// TextSource produces transcript text for one segment index. The
// shipped implementation is a simulation stub; a speech-to-text
// backend slots in here without touching segmentation or progress
// reporting.
type TextSource func(ctx context.Context, src Source, index int) (string, error)

// ProgressFunc receives stage progress as a fraction in [0, 1].
type ProgressFunc func(fraction float64)

// Transcriber splits a video into fixed time windows and fills each
// with text from its TextSource. Segments are produced strictly in
// order: the index alone determines the time bounds.
type Transcriber struct {
	Window float64
	Text   TextSource
}

// Run computes ceil(duration/window) segment drafts covering
// [0, duration), reporting (i+1)/count after each segment. Nothing is
// persisted here; on any error the partial work is discarded.
func (t *Transcriber) Run(ctx context.Context, src Source, progress ProgressFunc) ([]models.SegmentDraft, error) {
	if t.Window <= 0 {
		return nil, fmt.Errorf("segment window must be positive, got %v", t.Window)
	}
	if src.Duration <= 0 {
		return nil, fmt.Errorf("video duration must be positive, got %v", src.Duration)
	}

	count := int(math.Ceil(src.Duration / t.Window))
	drafts := make([]models.SegmentDraft, 0, count)

	for i := 0; i < count; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		text, err := t.Text(ctx, src, i)
		if err != nil {
			return nil, fmt.Errorf("transcribing segment %d: %w", i, err)
		}

		start := float64(i) * t.Window
		end := math.Min(start+t.Window, src.Duration)
		drafts = append(drafts, models.SegmentDraft{
			StartTime: start,
			EndTime:   end,
			Text:      text,
		})

		if progress != nil {
			progress(float64(i+1) / float64(count))
		}
	}

	return drafts, nil
}
