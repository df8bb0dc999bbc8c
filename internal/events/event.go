// Package events publishes learning progress to RabbitMQ.
package events

import "time"

// Type is the routing key of a progress event
type Type string

const (
	ExerciseCompleted Type = "exercise.completed"
	PartCompleted     Type = "part.completed"
)

// Event is the JSON body published for every progress event.
// UserID is zero for guests.
type Event struct {
	Type        Type      `json:"event_type"`
	UserID      int64     `json:"user_id,omitempty"`
	LessonKey   string    `json:"lesson_key"`
	PartID      string    `json:"part_id"`
	Exercise    int       `json:"exercise,omitempty"`
	Score       float64   `json:"score"`
	Scores      []float64 `json:"scores,omitempty"`
	Destination string    `json:"destination,omitempty"`
	Saved       bool      `json:"saved,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}
