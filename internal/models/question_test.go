package models

import (
	"errors"
	"testing"
)

func TestQuestionValidate(t *testing.T) {
	valid := func() Question {
		return Question{
			Text: "What is the main focus of machine learning?",
			Options: []Option{
				{Text: "It uses supervised learning techniques", IsCorrect: false},
				{Text: "It relies on unsupervised learning", IsCorrect: true},
				{Text: "It combines multiple models", IsCorrect: false},
			},
			CorrectOptionIndex: 1,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Question)
		wantErr bool
	}{
		{
			name:   "valid question",
			mutate: func(q *Question) {},
		},
		{
			name:    "empty text",
			mutate:  func(q *Question) { q.Text = "" },
			wantErr: true,
		},
		{
			name: "too few options",
			mutate: func(q *Question) {
				q.Options = q.Options[:1]
				q.CorrectOptionIndex = 0
			},
			wantErr: true,
		},
		{
			name: "too many options",
			mutate: func(q *Question) {
				for i := 0; i < 4; i++ {
					q.Options = append(q.Options, Option{Text: "filler"})
				}
			},
			wantErr: true,
		},
		{
			name:    "no correct option",
			mutate:  func(q *Question) { q.Options[1].IsCorrect = false },
			wantErr: true,
		},
		{
			name:    "two correct options",
			mutate:  func(q *Question) { q.Options[0].IsCorrect = true },
			wantErr: true,
		},
		{
			name:    "index disagrees with flag",
			mutate:  func(q *Question) { q.CorrectOptionIndex = 0 },
			wantErr: true,
		},
		{
			name:    "index out of range",
			mutate:  func(q *Question) { q.CorrectOptionIndex = 7 },
			wantErr: true,
		},
		{
			name:    "option without text",
			mutate:  func(q *Question) { q.Options[0].Text = "" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := valid()
			tt.mutate(&q)

			err := q.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected validation error, got nil")
				}
				if !errors.Is(err, ErrInvalidQuestion) {
					t.Errorf("error %v is not ErrInvalidQuestion", err)
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestProcessingStatus(t *testing.T) {
	for _, s := range []ProcessingStatus{StatusPending, StatusTranscribing, StatusGeneratingQuestions, StatusCompleted, StatusFailed} {
		if !s.Valid() {
			t.Errorf("%s should be valid", s)
		}
	}
	if ProcessingStatus("transcoding").Valid() {
		t.Error("unknown status should not be valid")
	}

	if StatusPending.Terminal() || StatusTranscribing.Terminal() || StatusGeneratingQuestions.Terminal() {
		t.Error("non-terminal status reported terminal")
	}
	if !StatusCompleted.Terminal() || !StatusFailed.Terminal() {
		t.Error("terminal status not reported terminal")
	}
}
