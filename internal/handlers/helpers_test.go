package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"linguaclash/internal/database"
	"linguaclash/internal/lessons"
	"linguaclash/internal/repository"
	"linguaclash/internal/security"
	"linguaclash/internal/service"
)

const testLessons = `
id: shows
title: Shows
order: 1
episodes:
  - id: ep1
    title: Pilot
    parts:
      - id: part1
        title: Part one
        exercises:
          - { id: a, type: true_false, policy: { kind: per_mistake, amount: 10 }, items: [{ id: "1", answer: T }] }
          - { id: b, type: true_false, policy: { kind: per_mistake, amount: 10 }, items: [{ id: "1", answer: F }] }
          - { id: c, type: true_false, policy: { kind: per_mistake, amount: 10 }, items: [{ id: "1", answer: T }] }
      - id: part2
        title: Part two
        exercises:
          - { id: a, type: true_false, policy: { kind: per_mistake, amount: 10 }, items: [{ id: "1", answer: T }] }
          - { id: b, type: true_false, policy: { kind: per_mistake, amount: 10 }, items: [{ id: "1", answer: T }] }
          - { id: c, type: true_false, policy: { kind: per_mistake, amount: 10 }, items: [{ id: "1", answer: T }] }
`

// part1Answers are the correct answers of the part1 exercises, in order
var part1Answers = []string{"T", "F", "T"}

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

	db, err := database.Initialize(filepath.Join(t.TempDir(), "handlers.db"))
	if err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations(filepath.Join("..", "..", "migrations")); err != nil {
		t.Fatalf("RunMigrations() error = %v", err)
	}
	return db
}

// apiFixture serves the full route table over a sqlite database
type apiFixture struct {
	db     *database.DB
	auth   *service.AuthService
	users  *repository.UserRepository
	scores *repository.ScoreRepository
	mux    *http.ServeMux
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	db := newTestDB(t)
	catalog := testCatalog(t)

	tokens, err := security.NewTokenIssuer("handler-secret")
	if err != nil {
		t.Fatalf("NewTokenIssuer() error = %v", err)
	}
	email, err := service.NewEmailService(context.Background(), "", "", "", false)
	if err != nil {
		t.Fatalf("NewEmailService() error = %v", err)
	}

	f := &apiFixture{
		db:     db,
		users:  repository.NewUserRepository(db),
		scores: repository.NewScoreRepository(db),
		mux:    http.NewServeMux(),
	}
	words := repository.NewDictionaryRepository(db)

	authService := service.NewAuthService(f.users, tokens, time.Hour, email, f.scores, words)
	f.auth = authService
	progress := service.NewProgressService(catalog, f.scores, 70, 2, nil)
	exercises := service.NewExerciseService(catalog, progress, nil, time.Hour)
	feedback := service.NewFeedbackService(repository.NewFeedbackRepository(db), email, "")

	Routes{
		Middleware: NewMiddleware(authService, nil),
		Auth:       NewAuthHandler(authService, nil, ""),
		Lessons:    NewLessonHandler(catalog, progress, exercises),
		Exercises:  NewExerciseHandler(exercises),
		Progress:   NewProgressHandler(progress),
		Dictionary: NewDictionaryHandler(service.NewDictionaryService(words, catalog)),
		Feedback:   NewFeedbackHandler(feedback),
		Admin:      NewAdminHandler(f.users, feedback, service.NewBackupService(db)),
		Health:     Healthz(db),
	}.Register(f.mux)

	return f
}

// do sends a JSON request through the mux. body may be nil.
func (f *apiFixture) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)
	return rec
}

// register creates an account and returns its token
func (f *apiFixture) register(t *testing.T, email string) AuthResponse {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":    email,
		"password": "password123",
		"name":     "Learner",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp AuthResponse
	decodeBody(t, rec, &resp)
	return resp
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(dst); err != nil {
		t.Fatalf("failed to decode %q: %v", rec.Body.String(), err)
	}
}

// guestLessonHandler serves the catalog without any store. Only guest
// requests are safe against it.
func guestLessonHandler(t *testing.T) (*LessonHandler, *ExerciseHandler) {
	t.Helper()
	catalog := testCatalog(t)
	progress := service.NewProgressService(catalog, nil, 70, 1, nil)
	exercises := service.NewExerciseService(catalog, progress, nil, time.Hour)
	return NewLessonHandler(catalog, progress, exercises), NewExerciseHandler(exercises)
}
