package service

import (
	"context"

	"linguaclash/internal/models"
)

// ScoreStore persists part averages. Writes to one part never touch its
// siblings. Implemented by repository.ScoreRepository and docstore.ScoreStore.
type ScoreStore interface {
	GetScore(ctx context.Context, userID int64, lessonKey, partID string) (float64, bool, error)
	SetScore(ctx context.Context, userID int64, lessonKey, partID string, score float64) error
	Scores(ctx context.Context, userID int64) ([]models.PartScore, error)
	DeleteUser(ctx context.Context, userID int64) error
}

// DictionaryStore persists saved words, at most once per word and folder
type DictionaryStore interface {
	SaveWord(ctx context.Context, userID int64, entry models.DictionaryEntry) (bool, error)
	Entries(ctx context.Context, userID int64, folder string) ([]models.DictionaryEntry, error)
	DeleteUser(ctx context.Context, userID int64) error
}

// userDataPurger removes everything a store holds for one user
type userDataPurger interface {
	DeleteUser(ctx context.Context, userID int64) error
}
