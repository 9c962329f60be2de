package models

import (
	"time"

	"github.com/google/uuid"
)

// ProcessingStatus tracks a video through the transcription and
// question generation pipeline.
type ProcessingStatus string

const (
	StatusPending             ProcessingStatus = "pending"
	StatusTranscribing        ProcessingStatus = "transcribing"
	StatusGeneratingQuestions ProcessingStatus = "generating-questions"
	StatusCompleted           ProcessingStatus = "completed"
	StatusFailed              ProcessingStatus = "failed"
)

// Terminal reports whether no further transitions are possible.
func (s ProcessingStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

func (s ProcessingStatus) Valid() bool {
	switch s {
	case StatusPending, StatusTranscribing, StatusGeneratingQuestions, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

type Video struct {
	ID               string           `json:"id"`
	Title            string           `json:"title"`
	Filename         string           `json:"-"`
	OriginalFilename string           `json:"fileName"`
	ContentType      string           `json:"contentType"`
	Size             int64            `json:"fileSize"`
	Duration         float64          `json:"duration"`
	UploadTime       time.Time        `json:"uploadDate"`
	Status           ProcessingStatus `json:"processingStatus"`
	ErrorMessage     string           `json:"errorMessage,omitempty"`
}

// NewVideo builds a pending video record for a freshly stored upload.
// Duration stays 0 until transcription discovers it.
func NewVideo(title, filename, originalFilename, contentType string, size int64) *Video {
	return &Video{
		ID:               uuid.New().String(),
		Title:            title,
		Filename:         filename,
		OriginalFilename: originalFilename,
		ContentType:      contentType,
		Size:             size,
		UploadTime:       time.Now().UTC(),
		Status:           StatusPending,
	}
}
