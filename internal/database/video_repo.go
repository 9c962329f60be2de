package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/avolkov/vidquiz/internal/models"
)

// VideoRepository persists video records and their processing status.
// Only the pipeline writes status for a given video, so a plain UPDATE
// is sufficient for atomicity.
type VideoRepository struct {
	db *DB
}

func NewVideoRepository(db *DB) *VideoRepository {
	return &VideoRepository{db: db}
}

func (r *VideoRepository) Insert(ctx context.Context, video *models.Video) error {
	query := r.db.rebind(`
		INSERT INTO videos (id, title, filename, original_filename, content_type,
			size, duration, upload_time, processing_status, error_message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	_, err := r.db.conn.ExecContext(ctx, query,
		video.ID, video.Title, video.Filename, video.OriginalFilename,
		video.ContentType, video.Size, video.Duration, video.UploadTime,
		string(video.Status), video.ErrorMessage)
	if err != nil {
		return fmt.Errorf("failed to insert video: %w", err)
	}
	return nil
}

func (r *VideoRepository) GetByID(ctx context.Context, id string) (*models.Video, error) {
	query := r.db.rebind(`
		SELECT id, title, filename, original_filename, content_type,
			size, duration, upload_time, processing_status, error_message
		FROM videos WHERE id = ?`)

	video, err := scanVideo(r.db.conn.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get video: %w", err)
	}
	return video, nil
}

func (r *VideoRepository) List(ctx context.Context) ([]models.Video, error) {
	query := `
		SELECT id, title, filename, original_filename, content_type,
			size, duration, upload_time, processing_status, error_message
		FROM videos ORDER BY upload_time DESC`

	rows, err := r.db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list videos: %w", err)
	}
	defer rows.Close()

	videos := []models.Video{}
	for rows.Next() {
		video, err := scanVideo(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan video: %w", err)
		}
		videos = append(videos, *video)
	}
	return videos, rows.Err()
}

// UpdateStatus atomically sets the processing status plus the optional
// duration and error message fields.
func (r *VideoRepository) UpdateStatus(ctx context.Context, id string, status models.ProcessingStatus, duration *float64, errorMessage *string) error {
	if !status.Valid() {
		return fmt.Errorf("invalid processing status %q", status)
	}

	set := []string{"processing_status = ?"}
	args := []interface{}{string(status)}
	if duration != nil {
		set = append(set, "duration = ?")
		args = append(args, *duration)
	}
	if errorMessage != nil {
		set = append(set, "error_message = ?")
		args = append(args, *errorMessage)
	}
	args = append(args, id)

	query := r.db.rebind(fmt.Sprintf("UPDATE videos SET %s WHERE id = ?", strings.Join(set, ", ")))
	result, err := r.db.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update video status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a video together with its segments and questions.
func (r *VideoRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, r.db.rebind("DELETE FROM questions WHERE video_id = ?"), id); err != nil {
		return fmt.Errorf("failed to delete questions: %w", err)
	}
	if _, err := tx.ExecContext(ctx, r.db.rebind("DELETE FROM transcript_segments WHERE video_id = ?"), id); err != nil {
		return fmt.Errorf("failed to delete segments: %w", err)
	}

	result, err := tx.ExecContext(ctx, r.db.rebind("DELETE FROM videos WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("failed to delete video: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	return tx.Commit()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanVideo(row rowScanner) (*models.Video, error) {
	var video models.Video
	var status string
	err := row.Scan(&video.ID, &video.Title, &video.Filename, &video.OriginalFilename,
		&video.ContentType, &video.Size, &video.Duration, &video.UploadTime,
		&status, &video.ErrorMessage)
	if err != nil {
		return nil, err
	}
	video.Status = models.ProcessingStatus(status)
	return &video, nil
}
