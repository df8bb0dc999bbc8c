package docstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"linguaclash/internal/models"
)

type scoreDocument struct {
	UserID    int64     `bson:"user_id"`
	LessonKey string    `bson:"lesson_key"`
	PartID    string    `bson:"part_id"`
	Score     float64   `bson:"score"`
	UpdatedAt time.Time `bson:"updated_at"`
}

func (d scoreDocument) model() models.PartScore {
	return models.PartScore{
		UserID:    d.UserID,
		LessonKey: d.LessonKey,
		PartID:    d.PartID,
		Score:     d.Score,
		UpdatedAt: d.UpdatedAt,
	}
}

// ScoreStore keeps one document per (user, lesson, part)
type ScoreStore struct {
	collection *mongo.Collection
}

func partFilter(userID int64, lessonKey, partID string) bson.M {
	return bson.M{"user_id": userID, "lesson_key": lessonKey, "part_id": partID}
}

// GetScore returns the stored score for one part; ok is false when none exists
func (s *ScoreStore) GetScore(ctx context.Context, userID int64, lessonKey, partID string) (float64, bool, error) {
	var doc scoreDocument
	err := s.collection.FindOne(ctx, partFilter(userID, lessonKey, partID)).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to get score: %w", err)
	}
	return doc.Score, true, nil
}

// SetScore upserts one part document; sibling parts are separate documents
func (s *ScoreStore) SetScore(ctx context.Context, userID int64, lessonKey, partID string, score float64) error {
	update := bson.M{"$set": bson.M{"score": score, "updated_at": time.Now().UTC()}}
	_, err := s.collection.UpdateOne(ctx, partFilter(userID, lessonKey, partID), update, options.UpdateOne().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to set score: %w", err)
	}
	return nil
}

// Scores lists every part score of a user
func (s *ScoreStore) Scores(ctx context.Context, userID int64) ([]models.PartScore, error) {
	opts := options.Find().SetSort(bson.D{{Key: "lesson_key", Value: 1}, {Key: "part_id", Value: 1}})
	cursor, err := s.collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query scores: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []scoreDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode scores: %w", err)
	}

	scores := make([]models.PartScore, 0, len(docs))
	for _, d := range docs {
		scores = append(scores, d.model())
	}
	return scores, nil
}

// DeleteUser removes all score documents of a user
func (s *ScoreStore) DeleteUser(ctx context.Context, userID int64) error {
	if _, err := s.collection.DeleteMany(ctx, bson.M{"user_id": userID}); err != nil {
		return fmt.Errorf("failed to delete scores: %w", err)
	}
	return nil
}
