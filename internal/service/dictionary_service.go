package service

import (
	"context"
	"fmt"
	"strings"

	"linguaclash/internal/lessons"
	"linguaclash/internal/models"
	"linguaclash/internal/validation"
)

// SaveResult reports a dictionary write. Saved is false for guests.
type SaveResult struct {
	Saved bool `json:"saved"`
	Added bool `json:"added"`
}

// DictionaryService manages the learner's personal word lists, one per folder
type DictionaryService struct {
	store   DictionaryStore
	catalog *lessons.Catalog
}

// NewDictionaryService creates a dictionary service
func NewDictionaryService(store DictionaryStore, catalog *lessons.Catalog) *DictionaryService {
	return &DictionaryService{store: store, catalog: catalog}
}

// SaveWord adds a word to a folder. Saving it again is a no-op; guests are
// silently skipped.
func (s *DictionaryService) SaveWord(ctx context.Context, userID int64, folder, word, definition string) (*SaveResult, error) {
	if _, err := s.catalog.Folder(folder); err != nil {
		return nil, err
	}
	word = strings.TrimSpace(word)
	definition = strings.TrimSpace(definition)
	if err := validation.ValidateWord(word, definition); err != nil {
		return nil, err
	}

	if userID == 0 {
		return &SaveResult{}, nil
	}

	added, err := s.store.SaveWord(ctx, userID, models.DictionaryEntry{
		UserID:     userID,
		Folder:     folder,
		Word:       word,
		Definition: definition,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save word: %w", err)
	}
	return &SaveResult{Saved: true, Added: added}, nil
}

// Dictionary returns every saved word grouped by folder
func (s *DictionaryService) Dictionary(ctx context.Context, userID int64) (map[string][]models.DictionaryEntry, error) {
	entries, err := s.store.Entries(ctx, userID, "")
	if err != nil {
		return nil, err
	}
	byFolder := make(map[string][]models.DictionaryEntry)
	for _, e := range entries {
		byFolder[e.Folder] = append(byFolder[e.Folder], e)
	}
	return byFolder, nil
}

// Folder returns the saved words of one folder
func (s *DictionaryService) Folder(ctx context.Context, userID int64, folder string) ([]models.DictionaryEntry, error) {
	if _, err := s.catalog.Folder(folder); err != nil {
		return nil, err
	}
	entries, err := s.store.Entries(ctx, userID, folder)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []models.DictionaryEntry{}
	}
	return entries, nil
}
