package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"linguaclash/internal/events"
	"linguaclash/internal/scoring"
)

type exerciseFixture struct {
	svc    *ExerciseService
	scores *memScores
	events *events.Recorder
}

func newExerciseFixture(t *testing.T) *exerciseFixture {
	t.Helper()
	catalog := testCatalog(t)
	store := newMemScores()
	rec := &events.Recorder{}
	progress := NewProgressService(catalog, store, 70, 2, rec)
	return &exerciseFixture{
		svc:    NewExerciseService(catalog, progress, rec, time.Hour),
		scores: store,
		events: rec,
	}
}

func mustSubmit(t *testing.T, svc *ExerciseService, userID int64, sessionID, itemID, value string) *ActionResult {
	t.Helper()
	res, err := svc.Submit(context.Background(), userID, sessionID, itemID, value)
	if err != nil {
		t.Fatalf("Submit(%s, %q) error = %v", itemID, value, err)
	}
	return res
}

// playPart1 plays all three exercises of part1, getting the first word bank
// item wrong once: 100, 90, 100.
func playPart1(t *testing.T, f *exerciseFixture, userID int64) *ActionResult {
	t.Helper()
	ctx := context.Background()

	run, err := f.svc.StartRun(ctx, userID, part1)
	if err != nil {
		t.Fatalf("StartRun() error = %v", err)
	}

	tf, err := f.svc.StartExercise(userID, run.ID, 0)
	if err != nil {
		t.Fatalf("StartExercise(0) error = %v", err)
	}
	mustSubmit(t, f.svc, userID, tf.ID, "1", "T")
	res := mustSubmit(t, f.svc, userID, tf.ID, "2", "F")
	if res.Session.State != scoring.StateScoreComputed {
		t.Fatalf("true/false state = %v, want score computed", res.Session.State)
	}
	nav := res.Session.Navigation
	if nav == nil || nav.Screen != ScreenExercise || nav.Params["index"] != "1" || nav.Params["score1"] != "100" {
		t.Fatalf("navigation after exercise 1 = %+v", nav)
	}

	bank, err := f.svc.StartExercise(userID, run.ID, 1)
	if err != nil {
		t.Fatalf("StartExercise(1) error = %v", err)
	}
	if len(bank.Pool) != 2 {
		t.Errorf("pool = %v, want 2 tokens", bank.Pool)
	}
	if _, err := f.svc.Target(ctx, userID, bank.ID, "1"); err != nil {
		t.Fatalf("Target() error = %v", err)
	}
	if _, err := f.svc.Choose(ctx, userID, bank.ID, "submit"); err != nil {
		t.Fatalf("Choose(wrong) error = %v", err)
	}
	if _, err := f.svc.Choose(ctx, userID, bank.ID, "hoard"); err != nil {
		t.Fatalf("Choose(right) error = %v", err)
	}
	res = mustSubmit(t, f.svc, userID, bank.ID, "2", "submit")
	if res.Session.Score == nil || *res.Session.Score != 90 {
		t.Fatalf("word bank score = %v, want 90", res.Session.Score)
	}
	if nav := res.Session.Navigation; nav.Params["score2"] != "90" {
		t.Errorf("score2 param = %q, want 90", nav.Params["score2"])
	}

	grid, err := f.svc.StartExercise(userID, run.ID, 2)
	if err != nil {
		t.Fatalf("StartExercise(2) error = %v", err)
	}
	if _, err := f.svc.Draft(ctx, userID, grid.ID, "1", "chances"); err != nil {
		t.Fatalf("Draft() error = %v", err)
	}
	res, err = f.svc.CheckAll(ctx, userID, grid.ID)
	if err != nil {
		t.Fatalf("CheckAll() error = %v", err)
	}
	if res.Check == nil || !res.Check.AllCorrect {
		t.Fatalf("CheckAll() = %+v, want all correct", res.Check)
	}
	return res
}

func TestExerciseServiceFullPart(t *testing.T) {
	f := newExerciseFixture(t)

	res := playPart1(t, f, 5)

	part := res.Session.Part
	if part == nil {
		t.Fatal("last exercise should carry the part outcome")
	}
	if got := part.Scores; len(got) != 3 || got[0] != 100 || got[1] != 90 || got[2] != 100 {
		t.Errorf("part scores = %v, want [100 90 100]", got)
	}
	if part.Decision.Destination != scoring.DestinationAdvance || !part.Saved {
		t.Errorf("part outcome = %+v, want saved advance", part)
	}
	if nav := res.Session.Navigation; nav == nil || nav.Screen != ScreenPart || nav.Params["part"] != "part2" {
		t.Errorf("navigation = %+v, want part2", nav)
	}

	if _, ok, _ := f.scores.GetScore(context.Background(), 5, part1.LessonKey(), "part1"); !ok {
		t.Error("part average was not stored")
	}

	var exercises, parts int
	for _, ev := range f.events.Events() {
		switch ev.Type {
		case events.ExerciseCompleted:
			exercises++
		case events.PartCompleted:
			parts++
		}
	}
	if exercises != 3 || parts != 1 {
		t.Errorf("events = %d exercise, %d part; want 3, 1", exercises, parts)
	}
}

func TestCompletedSessionIsGone(t *testing.T) {
	f := newExerciseFixture(t)
	ctx := context.Background()

	run, _ := f.svc.StartRun(ctx, 1, part2)
	sess, err := f.svc.StartExercise(1, run.ID, 0)
	if err != nil {
		t.Fatalf("StartExercise() error = %v", err)
	}
	mustSubmit(t, f.svc, 1, sess.ID, "1", "T")

	if _, err := f.svc.Submit(ctx, 1, sess.ID, "1", "T"); !errors.Is(err, ErrSessionGone) {
		t.Errorf("Submit() after completion error = %v, want ErrSessionGone", err)
	}
	view, err := f.svc.Run(1, run.ID)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if view.Next != 1 || len(view.Scores) != 1 {
		t.Errorf("run = %+v, want one score and next 1", view)
	}
}

func TestCompletedRunIsRemoved(t *testing.T) {
	f := newExerciseFixture(t)

	playPart1(t, f, 5)

	f.svc.mu.Lock()
	runs, sessions := len(f.svc.runs), len(f.svc.sessions)
	f.svc.mu.Unlock()
	if runs != 0 || sessions != 0 {
		t.Errorf("left %d runs and %d sessions, want none", runs, sessions)
	}
}

func TestStartExerciseLocked(t *testing.T) {
	f := newExerciseFixture(t)

	run, _ := f.svc.StartRun(context.Background(), 1, part1)
	if _, err := f.svc.StartExercise(1, run.ID, 1); !errors.Is(err, ErrExerciseLocked) {
		t.Errorf("StartExercise(1) error = %v, want ErrExerciseLocked", err)
	}
	if _, err := f.svc.StartExercise(1, run.ID, 3); !errors.Is(err, ErrUnknownExercise) {
		t.Errorf("StartExercise(3) error = %v, want ErrUnknownExercise", err)
	}
}

func TestRestartingExerciseDiscardsAttempts(t *testing.T) {
	f := newExerciseFixture(t)

	run, _ := f.svc.StartRun(context.Background(), 1, part1)
	first, _ := f.svc.StartExercise(1, run.ID, 0)
	mustSubmit(t, f.svc, 1, first.ID, "1", "F")

	second, err := f.svc.StartExercise(1, run.ID, 0)
	if err != nil {
		t.Fatalf("StartExercise() error = %v", err)
	}
	if _, err := f.svc.View(1, first.ID); !errors.Is(err, ErrSessionGone) {
		t.Errorf("old session error = %v, want ErrSessionGone", err)
	}
	for _, it := range second.Items {
		if it.AttemptCount != 0 {
			t.Errorf("item %s attempts = %d, want 0", it.ID, it.AttemptCount)
		}
	}
}

func TestChooseWithoutTargetIsNoop(t *testing.T) {
	f := newExerciseFixture(t)
	ctx := context.Background()

	run, _ := f.svc.StartRun(ctx, 1, part1)
	tf, _ := f.svc.StartExercise(1, run.ID, 0)
	mustSubmit(t, f.svc, 1, tf.ID, "1", "T")
	mustSubmit(t, f.svc, 1, tf.ID, "2", "F")
	bank, _ := f.svc.StartExercise(1, run.ID, 1)

	res, err := f.svc.Choose(ctx, 1, bank.ID, "hoard")
	if err != nil {
		t.Fatalf("Choose() error = %v", err)
	}
	if res.Applied == nil || *res.Applied {
		t.Errorf("Applied = %v, want false", res.Applied)
	}
	for _, it := range res.Session.Items {
		if it.AttemptCount != 0 {
			t.Errorf("item %s attempts = %d, want 0", it.ID, it.AttemptCount)
		}
	}
}

func TestSessionsBelongToTheirUser(t *testing.T) {
	f := newExerciseFixture(t)

	run, _ := f.svc.StartRun(context.Background(), 1, part1)
	if _, err := f.svc.StartExercise(2, run.ID, 0); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("StartExercise() by another user error = %v, want ErrRunNotFound", err)
	}
	sess, _ := f.svc.StartExercise(1, run.ID, 0)
	if _, err := f.svc.View(2, sess.ID); !errors.Is(err, ErrSessionGone) {
		t.Errorf("View() by another user error = %v, want ErrSessionGone", err)
	}
}

func TestGuestRunIsNotSaved(t *testing.T) {
	f := newExerciseFixture(t)

	res := playPart1(t, f, 0)

	if res.Session.Part == nil || res.Session.Part.Saved {
		t.Errorf("guest part outcome = %+v, want unsaved", res.Session.Part)
	}
	if f.scores.writeCount() != 0 {
		t.Errorf("SetScore calls = %d, want 0", f.scores.writeCount())
	}
}

func TestStartRunCarriesPreviousScore(t *testing.T) {
	f := newExerciseFixture(t)
	ctx := context.Background()
	f.scores.SetScore(ctx, 9, part1.LessonKey(), "part1", 64)

	run, err := f.svc.StartRun(ctx, 9, part1)
	if err != nil {
		t.Fatalf("StartRun() error = %v", err)
	}
	if run.PreviousScore == nil || *run.PreviousScore != 64 {
		t.Errorf("PreviousScore = %v, want 64", run.PreviousScore)
	}
	if run.Next != 0 || len(run.Scores) != 0 {
		t.Errorf("new run = %+v, want no scores", run)
	}
}

func TestCleanupExpired(t *testing.T) {
	f := newExerciseFixture(t)
	now := time.Now()
	f.svc.now = func() time.Time { return now }

	run, _ := f.svc.StartRun(context.Background(), 1, part1)
	sess, _ := f.svc.StartExercise(1, run.ID, 0)

	now = now.Add(30 * time.Minute)
	if n := f.svc.CleanupExpired(); n != 0 {
		t.Errorf("CleanupExpired() = %d before the ttl, want 0", n)
	}

	now = now.Add(2 * time.Hour)
	if _, err := f.svc.View(1, sess.ID); !errors.Is(err, ErrSessionGone) {
		t.Errorf("View() after ttl error = %v, want ErrSessionGone", err)
	}
	if n := f.svc.CleanupExpired(); n != 2 {
		t.Errorf("CleanupExpired() = %d, want 2", n)
	}
}
