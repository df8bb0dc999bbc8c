package models

import "time"

const (
	MinRating = 1
	MaxRating = 5
)

// Feedback is a rating left by a learner or guest
type Feedback struct {
	ID        int64     `json:"id"`
	UserID    *int64    `json:"user_id,omitempty"`
	Rating    int       `json:"rating"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// ValidRating reports whether r is within the 1-5 scale
func ValidRating(r int) bool {
	return r >= MinRating && r <= MaxRating
}
