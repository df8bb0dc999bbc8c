package models

import "time"

// PartScore is one persisted part average
type PartScore struct {
	UserID    int64     `json:"-"`
	LessonKey string    `json:"lesson_key"`
	PartID    string    `json:"part_id"`
	Score     float64   `json:"score"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ScoreRecord maps lesson key to part id to the last stored part average
type ScoreRecord map[string]map[string]float64

// Set stores score under lesson/part, leaving sibling parts untouched
func (r ScoreRecord) Set(lessonKey, partID string, score float64) {
	parts, ok := r[lessonKey]
	if !ok {
		parts = make(map[string]float64)
		r[lessonKey] = parts
	}
	parts[partID] = score
}

// Get returns the stored score for lesson/part
func (r ScoreRecord) Get(lessonKey, partID string) (float64, bool) {
	score, ok := r[lessonKey][partID]
	return score, ok
}

// NewScoreRecord folds part rows into a record
func NewScoreRecord(scores []PartScore) ScoreRecord {
	record := make(ScoreRecord)
	for _, s := range scores {
		record.Set(s.LessonKey, s.PartID, s.Score)
	}
	return record
}
