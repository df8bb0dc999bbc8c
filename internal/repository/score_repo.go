package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"linguaclash/internal/database"
	"linguaclash/internal/models"
)

// ScoreRepository stores part averages in user_scores
type ScoreRepository struct {
	db *database.DB
}

// NewScoreRepository creates a new score repository
func NewScoreRepository(db *database.DB) *ScoreRepository {
	return &ScoreRepository{db: db}
}

// GetScore returns the stored score for one part; ok is false when none exists
func (r *ScoreRepository) GetScore(ctx context.Context, userID int64, lessonKey, partID string) (float64, bool, error) {
	query := `
		SELECT score
		FROM user_scores
		WHERE user_id = ? AND lesson_key = ? AND part_id = ?
	`
	var score float64
	err := r.db.QueryRowContext(ctx, query, userID, lessonKey, partID).Scan(&score)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to get score: %w", err)
	}
	return score, true, nil
}

// SetScore upserts one part score; other parts of the lesson are left as they are
func (r *ScoreRepository) SetScore(ctx context.Context, userID int64, lessonKey, partID string, score float64) error {
	if _, err := r.db.ExecContext(ctx, r.db.Dialect.UpsertScoreQuery(), userID, lessonKey, partID, score); err != nil {
		return fmt.Errorf("failed to set score: %w", err)
	}
	return nil
}

// Scores lists every part score of a user
func (r *ScoreRepository) Scores(ctx context.Context, userID int64) ([]models.PartScore, error) {
	query := `
		SELECT user_id, lesson_key, part_id, score, updated_at
		FROM user_scores
		WHERE user_id = ?
		ORDER BY lesson_key, part_id
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query scores: %w", err)
	}
	defer rows.Close()
	return scanScores(rows)
}

// AllScores lists every stored score, for backups
func (r *ScoreRepository) AllScores(ctx context.Context) ([]models.PartScore, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT user_id, lesson_key, part_id, score, updated_at FROM user_scores ORDER BY user_id, lesson_key, part_id")
	if err != nil {
		return nil, fmt.Errorf("failed to query scores: %w", err)
	}
	defer rows.Close()
	return scanScores(rows)
}

// DeleteUser removes all scores of a user
func (r *ScoreRepository) DeleteUser(ctx context.Context, userID int64) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM user_scores WHERE user_id = ?", userID); err != nil {
		return fmt.Errorf("failed to delete scores: %w", err)
	}
	return nil
}

func scanScores(rows *sql.Rows) ([]models.PartScore, error) {
	var scores []models.PartScore
	for rows.Next() {
		var s models.PartScore
		if err := rows.Scan(&s.UserID, &s.LessonKey, &s.PartID, &s.Score, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan score: %w", err)
		}
		scores = append(scores, s)
	}
	return scores, rows.Err()
}
