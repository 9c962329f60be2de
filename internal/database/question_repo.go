package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/avolkov/vidquiz/internal/models"
)

// QuestionRepository stores generated questions. Options are kept as a
// JSON column; the one-correct-option invariant is enforced before
// every write.
type QuestionRepository struct {
	db *DB
}

func NewQuestionRepository(db *DB) *QuestionRepository {
	return &QuestionRepository{db: db}
}

// UpdateQuestionParams carries a partial question edit. Nil fields are
// left untouched; replacing options re-validates the invariant.
type UpdateQuestionParams struct {
	Text               *string
	Options            []models.Option
	CorrectOptionIndex *int
}

// ReplaceForVideo swaps out every question of a video for the given
// drafts in one transaction.
func (r *QuestionRepository) ReplaceForVideo(ctx context.Context, videoID string, drafts []models.QuestionDraft) error {
	tx, err := r.db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, r.db.rebind("DELETE FROM questions WHERE video_id = ?"), videoID); err != nil {
		return fmt.Errorf("failed to delete questions: %w", err)
	}

	insert := r.db.rebind(`
		INSERT INTO questions (id, video_id, segment_id, text, options, correct_option_index)
		VALUES (?, ?, ?, ?, ?, ?)`)

	for i := range drafts {
		draft := &drafts[i]
		if err := draft.Validate(); err != nil {
			return fmt.Errorf("question for segment %s: %w", draft.SegmentID, err)
		}

		optionsJSON, err := json.Marshal(draft.Options)
		if err != nil {
			return fmt.Errorf("failed to marshal options: %w", err)
		}

		if _, err := tx.ExecContext(ctx, insert,
			uuid.New().String(), videoID, draft.SegmentID, draft.Text,
			string(optionsJSON), draft.CorrectOptionIndex); err != nil {
			return fmt.Errorf("failed to insert question: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit question replace: %w", err)
	}
	return nil
}

func (r *QuestionRepository) ListByVideo(ctx context.Context, videoID string) ([]models.Question, error) {
	return r.list(ctx, "video_id", videoID)
}

func (r *QuestionRepository) ListBySegment(ctx context.Context, segmentID string) ([]models.Question, error) {
	return r.list(ctx, "segment_id", segmentID)
}

func (r *QuestionRepository) list(ctx context.Context, column, id string) ([]models.Question, error) {
	query := r.db.rebind(fmt.Sprintf(`
		SELECT id, video_id, segment_id, text, options, correct_option_index
		FROM questions WHERE %s = ?`, column))

	rows, err := r.db.conn.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	defer rows.Close()

	questions := []models.Question{}
	for rows.Next() {
		question, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		questions = append(questions, *question)
	}
	return questions, rows.Err()
}

func (r *QuestionRepository) GetByID(ctx context.Context, id string) (*models.Question, error) {
	query := r.db.rebind(`
		SELECT id, video_id, segment_id, text, options, correct_option_index
		FROM questions WHERE id = ?`)

	question, err := scanQuestion(r.db.conn.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	return question, nil
}

// Update applies a partial edit and re-validates the invariant before
// writing the merged record back.
func (r *QuestionRepository) Update(ctx context.Context, id string, params UpdateQuestionParams) (*models.Question, error) {
	question, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if params.Text != nil {
		question.Text = *params.Text
	}
	if params.Options != nil {
		question.Options = params.Options
	}
	if params.CorrectOptionIndex != nil {
		question.CorrectOptionIndex = *params.CorrectOptionIndex
	}

	if err := question.Validate(); err != nil {
		return nil, err
	}

	optionsJSON, err := json.Marshal(question.Options)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal options: %w", err)
	}

	query := r.db.rebind(`
		UPDATE questions SET text = ?, options = ?, correct_option_index = ?
		WHERE id = ?`)
	result, err := r.db.conn.ExecContext(ctx, query,
		question.Text, string(optionsJSON), question.CorrectOptionIndex, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update question: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return nil, ErrNotFound
	}

	return question, nil
}

func (r *QuestionRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.conn.ExecContext(ctx, r.db.rebind("DELETE FROM questions WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("failed to delete question: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func scanQuestion(row rowScanner) (*models.Question, error) {
	var q models.Question
	var optionsJSON string
	err := row.Scan(&q.ID, &q.VideoID, &q.SegmentID, &q.Text, &optionsJSON, &q.CorrectOptionIndex)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(optionsJSON), &q.Options); err != nil {
		return nil, fmt.Errorf("failed to unmarshal options: %w", err)
	}
	return &q, nil
}
