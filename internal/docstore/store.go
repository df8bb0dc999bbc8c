// Package docstore keeps scores and dictionaries in MongoDB, as an
// alternative to the relational repositories.
package docstore

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

const (
	scoresCollection     = "user_scores"
	dictionaryCollection = "dictionary_entries"
)

// Store owns the Mongo client and database handle
type Store struct {
	client   *mongo.Client
	database *mongo.Database
}

// Connect dials uri, pings the primary and ensures indexes
func Connect(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	s := &Store{client: client, database: client.Database(database)}
	if err := s.ensureIndexes(ctx); err != nil {
		client.Disconnect(context.Background())
		return nil, err
	}

	log.Printf("Connected to MongoDB database: %s", database)
	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	indexes := map[string]bson.D{
		scoresCollection: {
			{Key: "user_id", Value: 1},
			{Key: "lesson_key", Value: 1},
			{Key: "part_id", Value: 1},
		},
		dictionaryCollection: {
			{Key: "user_id", Value: 1},
			{Key: "folder", Value: 1},
			{Key: "word_key", Value: 1},
		},
	}
	for name, keys := range indexes {
		_, err := s.database.Collection(name).Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    keys,
			Options: options.Index().SetUnique(true),
		})
		if err != nil {
			return fmt.Errorf("failed to create %s index: %w", name, err)
		}
	}
	return nil
}

// Scores returns the score store backed by this database
func (s *Store) Scores() *ScoreStore {
	return &ScoreStore{collection: s.database.Collection(scoresCollection)}
}

// Dictionary returns the dictionary store backed by this database
func (s *Store) Dictionary() *DictionaryStore {
	return &DictionaryStore{collection: s.database.Collection(dictionaryCollection)}
}

// Close disconnects the client
func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
