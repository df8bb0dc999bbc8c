package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"linguaclash/internal/database"
	"linguaclash/internal/models"
)

// FeedbackRepository stores learner ratings
type FeedbackRepository struct {
	db *database.DB
}

// NewFeedbackRepository creates a new feedback repository
func NewFeedbackRepository(db *database.DB) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

// Create inserts a feedback row and returns it with its new ID
func (r *FeedbackRepository) Create(ctx context.Context, userID *int64, rating int, message string) (*models.Feedback, error) {
	var uid any
	if userID != nil {
		uid = *userID
	}
	id, err := r.db.ExecReturningID("INSERT INTO feedback (user_id, rating, message) VALUES (?, ?, ?)", uid, rating, message)
	if err != nil {
		return nil, fmt.Errorf("failed to create feedback: %w", err)
	}
	return &models.Feedback{
		ID:        id,
		UserID:    userID,
		Rating:    rating,
		Message:   message,
		CreatedAt: time.Now(),
	}, nil
}

// All lists feedback newest first
func (r *FeedbackRepository) All(ctx context.Context) ([]models.Feedback, error) {
	query := `
		SELECT id, user_id, rating, COALESCE(message, ''), created_at
		FROM feedback
		ORDER BY id DESC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query feedback: %w", err)
	}
	defer rows.Close()

	var out []models.Feedback
	for rows.Next() {
		var f models.Feedback
		var uid sql.NullInt64
		if err := rows.Scan(&f.ID, &uid, &f.Rating, &f.Message, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan feedback: %w", err)
		}
		if uid.Valid {
			f.UserID = &uid.Int64
		}
		out = append(out, f)
	}
	return out, rows.Err()
}
