package pipeline

import (
	"context"
	"fmt"

	"github.com/avolkov/vidquiz/internal/models"
)

// QuestionSource produces multiple-choice questions for one transcript
// segment. Drafts must satisfy the one-correct-option invariant; the
// generator re-checks it regardless. SegmentID is filled in by the
// generator.
type QuestionSource func(ctx context.Context, segment models.Segment) ([]models.QuestionDraft, error)

// Generator turns persisted segments into question drafts, in segment
// order, failing fast on the first bad segment.
type Generator struct {
	Questions QuestionSource
}

// Run produces drafts for every segment, reporting (i+1)/count after
// each one. The caller persists the full batch afterwards, so a
// failure leaves no partial output behind.
func (g *Generator) Run(ctx context.Context, segments []models.Segment, progress ProgressFunc) ([]models.QuestionDraft, error) {
	var drafts []models.QuestionDraft

	for i, segment := range segments {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		generated, err := g.Questions(ctx, segment)
		if err != nil {
			return nil, fmt.Errorf("generating questions for segment %d: %w", i, err)
		}

		for j := range generated {
			generated[j].SegmentID = segment.ID
			if err := generated[j].Validate(); err != nil {
				return nil, fmt.Errorf("segment %d produced a bad question: %w", i, err)
			}
		}
		drafts = append(drafts, generated...)

		if progress != nil {
			progress(float64(i+1) / float64(len(segments)))
		}
	}

	return drafts, nil
}
