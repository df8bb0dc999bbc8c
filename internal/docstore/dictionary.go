package docstore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"linguaclash/internal/models"
)

type entryDocument struct {
	UserID     int64     `bson:"user_id"`
	Folder     string    `bson:"folder"`
	Word       string    `bson:"word"`
	WordKey    string    `bson:"word_key"`
	Definition string    `bson:"definition"`
	CreatedAt  time.Time `bson:"created_at"`
}

// DictionaryStore keeps one document per saved word
type DictionaryStore struct {
	collection *mongo.Collection
}

// SaveWord inserts entry unless the folder already holds the same word.
// The first save wins; added reports whether a document was created.
func (s *DictionaryStore) SaveWord(ctx context.Context, userID int64, entry models.DictionaryEntry) (bool, error) {
	filter := bson.M{"user_id": userID, "folder": entry.Folder, "word_key": entry.Key()}
	update := bson.M{"$setOnInsert": bson.M{
		"word":       entry.Word,
		"definition": entry.Definition,
		"created_at": time.Now().UTC(),
	}}

	result, err := s.collection.UpdateOne(ctx, filter, update, options.UpdateOne().SetUpsert(true))
	if err != nil {
		return false, fmt.Errorf("failed to save word: %w", err)
	}
	return result.UpsertedCount > 0, nil
}

// Entries lists a user's saved words. An empty folder lists every folder.
func (s *DictionaryStore) Entries(ctx context.Context, userID int64, folder string) ([]models.DictionaryEntry, error) {
	filter := bson.M{"user_id": userID}
	if folder != "" {
		filter["folder"] = folder
	}
	opts := options.Find().SetSort(bson.D{{Key: "folder", Value: 1}, {Key: "created_at", Value: 1}})

	cursor, err := s.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query dictionary: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []entryDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode dictionary: %w", err)
	}

	entries := make([]models.DictionaryEntry, 0, len(docs))
	for _, d := range docs {
		entries = append(entries, models.DictionaryEntry{
			UserID:     d.UserID,
			Folder:     d.Folder,
			Word:       d.Word,
			Definition: d.Definition,
			CreatedAt:  d.CreatedAt,
		})
	}
	return entries, nil
}

// DeleteUser removes all saved words of a user
func (s *DictionaryStore) DeleteUser(ctx context.Context, userID int64) error {
	if _, err := s.collection.DeleteMany(ctx, bson.M{"user_id": userID}); err != nil {
		return fmt.Errorf("failed to delete dictionary: %w", err)
	}
	return nil
}
