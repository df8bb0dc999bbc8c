package models

import (
	"strings"
	"time"
)

// DictionaryEntry is a word a learner saved to their personal dictionary
type DictionaryEntry struct {
	ID         int64     `json:"id,omitempty"`
	UserID     int64     `json:"-"`
	Folder     string    `json:"folder"`
	Word       string    `json:"word"`
	Definition string    `json:"definition"`
	CreatedAt  time.Time `json:"created_at"`
}

// WordKey is the deduplication key of a word within a folder
func WordKey(word string) string {
	return strings.ToLower(strings.TrimSpace(word))
}

// Key returns the entry's deduplication key
func (e DictionaryEntry) Key() string {
	return WordKey(e.Word)
}
