package models

import (
	"errors"
	"fmt"
)

const (
	MinOptions = 2
	MaxOptions = 5
)

var ErrInvalidQuestion = errors.New("invalid question")

type Option struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"isCorrect"`
}

type Question struct {
	ID                 string   `json:"id"`
	VideoID            string   `json:"videoId"`
	SegmentID          string   `json:"segmentId"`
	Text               string   `json:"text"`
	Options            []Option `json:"options"`
	CorrectOptionIndex int      `json:"correctOptionIndex"`
}

// Validate enforces the question invariant: 2-5 options, exactly one
// marked correct, and CorrectOptionIndex pointing at it. Every path
// that creates or rewrites options must call this.
func (q *Question) Validate() error {
	if q.Text == "" {
		return fmt.Errorf("%w: text is required", ErrInvalidQuestion)
	}
	return validateOptions(q.Options, q.CorrectOptionIndex)
}

// QuestionDraft is a generated question before persistence.
type QuestionDraft struct {
	SegmentID          string
	Text               string
	Options            []Option
	CorrectOptionIndex int
}

func (d *QuestionDraft) Validate() error {
	if d.Text == "" {
		return fmt.Errorf("%w: text is required", ErrInvalidQuestion)
	}
	return validateOptions(d.Options, d.CorrectOptionIndex)
}

func validateOptions(options []Option, correctIndex int) error {
	if len(options) < MinOptions || len(options) > MaxOptions {
		return fmt.Errorf("%w: got %d options, want between %d and %d",
			ErrInvalidQuestion, len(options), MinOptions, MaxOptions)
	}
	if correctIndex < 0 || correctIndex >= len(options) {
		return fmt.Errorf("%w: correct option index %d out of range", ErrInvalidQuestion, correctIndex)
	}

	correct := -1
	for i, opt := range options {
		if opt.Text == "" {
			return fmt.Errorf("%w: option %d has no text", ErrInvalidQuestion, i)
		}
		if opt.IsCorrect {
			if correct >= 0 {
				return fmt.Errorf("%w: more than one correct option", ErrInvalidQuestion)
			}
			correct = i
		}
	}
	if correct < 0 {
		return fmt.Errorf("%w: no correct option", ErrInvalidQuestion)
	}
	if correct != correctIndex {
		return fmt.Errorf("%w: correct option at %d but index says %d",
			ErrInvalidQuestion, correct, correctIndex)
	}
	return nil
}
