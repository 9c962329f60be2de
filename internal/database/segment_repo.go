package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/avolkov/vidquiz/internal/models"
)

type SegmentRepository struct {
	db *DB
}

func NewSegmentRepository(db *DB) *SegmentRepository {
	return &SegmentRepository{db: db}
}

// ReplaceForVideo swaps out every segment of a video for the given
// ordered drafts in one transaction. Questions for the video are
// removed as well: they reference segments that no longer exist once
// transcription re-runs.
func (r *SegmentRepository) ReplaceForVideo(ctx context.Context, videoID string, drafts []models.SegmentDraft) ([]models.Segment, error) {
	tx, err := r.db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, r.db.rebind("DELETE FROM questions WHERE video_id = ?"), videoID); err != nil {
		return nil, fmt.Errorf("failed to delete questions: %w", err)
	}
	if _, err := tx.ExecContext(ctx, r.db.rebind("DELETE FROM transcript_segments WHERE video_id = ?"), videoID); err != nil {
		return nil, fmt.Errorf("failed to delete segments: %w", err)
	}

	insert := r.db.rebind(`
		INSERT INTO transcript_segments (id, video_id, start_time, end_time, text)
		VALUES (?, ?, ?, ?, ?)`)

	segments := make([]models.Segment, 0, len(drafts))
	for _, draft := range drafts {
		if draft.EndTime <= draft.StartTime {
			return nil, fmt.Errorf("segment [%v, %v) has non-positive length", draft.StartTime, draft.EndTime)
		}

		segment := models.Segment{
			ID:        uuid.New().String(),
			VideoID:   videoID,
			StartTime: draft.StartTime,
			EndTime:   draft.EndTime,
			Text:      draft.Text,
		}
		if _, err := tx.ExecContext(ctx, insert,
			segment.ID, segment.VideoID, segment.StartTime, segment.EndTime, segment.Text); err != nil {
			return nil, fmt.Errorf("failed to insert segment: %w", err)
		}
		segments = append(segments, segment)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit segment replace: %w", err)
	}
	return segments, nil
}

func (r *SegmentRepository) ListByVideo(ctx context.Context, videoID string) ([]models.Segment, error) {
	query := r.db.rebind(`
		SELECT id, video_id, start_time, end_time, text
		FROM transcript_segments
		WHERE video_id = ?
		ORDER BY start_time ASC`)

	rows, err := r.db.conn.QueryContext(ctx, query, videoID)
	if err != nil {
		return nil, fmt.Errorf("failed to list segments: %w", err)
	}
	defer rows.Close()

	segments := []models.Segment{}
	for rows.Next() {
		var s models.Segment
		if err := rows.Scan(&s.ID, &s.VideoID, &s.StartTime, &s.EndTime, &s.Text); err != nil {
			return nil, fmt.Errorf("failed to scan segment: %w", err)
		}
		segments = append(segments, s)
	}
	return segments, rows.Err()
}

func (r *SegmentRepository) GetByID(ctx context.Context, id string) (*models.Segment, error) {
	query := r.db.rebind(`
		SELECT id, video_id, start_time, end_time, text
		FROM transcript_segments WHERE id = ?`)

	var s models.Segment
	err := r.db.conn.QueryRowContext(ctx, query, id).
		Scan(&s.ID, &s.VideoID, &s.StartTime, &s.EndTime, &s.Text)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get segment: %w", err)
	}
	return &s, nil
}

// UpdateText changes the transcript text of one segment. Time bounds
// are immutable once transcription has run.
func (r *SegmentRepository) UpdateText(ctx context.Context, id, text string) (*models.Segment, error) {
	query := r.db.rebind("UPDATE transcript_segments SET text = ? WHERE id = ?")
	result, err := r.db.conn.ExecContext(ctx, query, text, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update segment text: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return nil, ErrNotFound
	}

	return r.GetByID(ctx, id)
}
