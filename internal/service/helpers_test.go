package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"testing/fstest"
	"time"

	"linguaclash/internal/database"
	"linguaclash/internal/lessons"
	"linguaclash/internal/models"
)

func TestMain(m *testing.M) {
	persistInitialDelay = time.Millisecond
	os.Exit(m.Run())
}

const testLessons = `
id: shows
title: Shows
order: 1
episodes:
  - id: ep1
    parts:
      - id: part1
        vocabulary:
          - { word: hoard, definition: "to collect and hide" }
        exercises:
          - { id: tf, type: true_false, policy: { kind: per_mistake, amount: 10 }, items: [{ id: "1", answer: T }, { id: "2", answer: F }] }
          - { id: bank, type: word_bank, policy: { kind: per_mistake, amount: 10 }, items: [{ id: "1", answer: hoard }, { id: "2", answer: submit }] }
          - { id: grid, type: crossword, policy: { kind: per_mistake, amount: 10 }, items: [{ id: "1", answer: CHANCES }] }
      - id: part2
        exercises:
          - { id: a, type: true_false, policy: { kind: per_mistake, amount: 10 }, items: [{ id: "1", answer: T }] }
          - { id: b, type: true_false, policy: { kind: per_mistake, amount: 10 }, items: [{ id: "1", answer: T }] }
          - { id: c, type: true_false, policy: { kind: per_mistake, amount: 10 }, items: [{ id: "1", answer: T }] }
`

var (
	part1 = lessons.Ref{Folder: "shows", Episode: "ep1", Part: "part1"}
	part2 = lessons.Ref{Folder: "shows", Episode: "ep1", Part: "part2"}
)

func testCatalog(t *testing.T) *lessons.Catalog {
	t.Helper()
	fsys := fstest.MapFS{"lessons/shows.yaml": {Data: []byte(testLessons)}}
	c, err := lessons.Load(fsys, "lessons")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return c
}

func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping database test in short mode")
	}

	db, err := database.Initialize(filepath.Join(t.TempDir(), "service.db"))
	if err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations(filepath.Join("..", "..", "migrations")); err != nil {
		t.Fatalf("RunMigrations() error = %v", err)
	}
	return db
}

var errStoreDown = errors.New("store unavailable")

// memScores is an in-memory ScoreStore. The first failWrites SetScore calls
// fail.
type memScores struct {
	mu         sync.Mutex
	rows       map[scoreKey]models.PartScore
	failWrites int
	writes     int
}

func newMemScores() *memScores {
	return &memScores{rows: make(map[scoreKey]models.PartScore)}
}

type scoreKey struct {
	userID    int64
	lessonKey string
	partID    string
}

func (m *memScores) GetScore(_ context.Context, userID int64, lessonKey, partID string) (float64, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[scoreKey{userID, lessonKey, partID}]
	return row.Score, ok, nil
}

func (m *memScores) SetScore(_ context.Context, userID int64, lessonKey, partID string, score float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	if m.writes <= m.failWrites {
		return errStoreDown
	}
	m.rows[scoreKey{userID, lessonKey, partID}] = models.PartScore{
		UserID:    userID,
		LessonKey: lessonKey,
		PartID:    partID,
		Score:     score,
		UpdatedAt: time.Now(),
	}
	return nil
}

func (m *memScores) Scores(_ context.Context, userID int64) ([]models.PartScore, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.PartScore
	for _, row := range m.rows {
		if row.UserID == userID {
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PartID < out[j].PartID })
	return out, nil
}

func (m *memScores) DeleteUser(_ context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, row := range m.rows {
		if row.UserID == userID {
			delete(m.rows, k)
		}
	}
	return nil
}

func (m *memScores) writeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}
