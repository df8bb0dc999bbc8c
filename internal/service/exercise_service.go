package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"linguaclash/internal/events"
	"linguaclash/internal/lessons"
	"linguaclash/internal/scoring"
	"linguaclash/internal/security"
)

var (
	ErrRunNotFound     = errors.New("run not found")
	ErrSessionGone     = errors.New("exercise session not found")
	ErrExerciseLocked  = errors.New("earlier exercises of this part are not finished")
	ErrUnknownExercise = errors.New("exercise index out of range")
)

// run is one pass through the three exercises of a part. It lives only in
// memory; abandoning it discards every score it holds.
type run struct {
	id       string
	userID   int64
	ref      lessons.Ref
	part     *lessons.Part
	progress *scoring.PartProgress
	live     string
	touched  time.Time
}

// liveSession is an exercise being played inside a run
type liveSession struct {
	id      string
	run     *run
	index   int
	session *scoring.Session
	touched time.Time
}

// RunView describes a run to the client
type RunView struct {
	ID            string      `json:"id"`
	Lesson        lessons.Ref `json:"lesson"`
	Scores        []float64   `json:"scores"`
	Next          int         `json:"next"`
	PreviousScore *float64    `json:"previous_score,omitempty"`
}

// SessionView is the client-facing state of an exercise session. Correct
// answers stay hidden until an item is revealed.
type SessionView struct {
	ID         string               `json:"id"`
	RunID      string               `json:"run_id"`
	Lesson     lessons.Ref          `json:"lesson"`
	Index      int                  `json:"index"`
	Title      string               `json:"title"`
	Type       scoring.ExerciseType `json:"type"`
	Policy     scoring.PolicyKind   `json:"policy"`
	State      scoring.State        `json:"state"`
	Items      []scoring.Item       `json:"items"`
	Pool       []string             `json:"pool,omitempty"`
	Target     string               `json:"target,omitempty"`
	Drafts     map[string]string    `json:"drafts,omitempty"`
	Score      *float64             `json:"score,omitempty"`
	Display    *float64             `json:"display,omitempty"`
	Navigation *Navigation          `json:"navigation,omitempty"`
	Part       *PartOutcome         `json:"part,omitempty"`
}

// ActionResult is returned by every session action
type ActionResult struct {
	Submit  *scoring.SubmitResult `json:"submit,omitempty"`
	Applied *bool                 `json:"applied,omitempty"`
	Check   *scoring.CheckResult  `json:"check,omitempty"`
	Session SessionView           `json:"session"`
}

// ExerciseService runs exercise sessions and collects their scores per part
type ExerciseService struct {
	mu        sync.Mutex
	catalog   *lessons.Catalog
	progress  *ProgressService
	publisher events.Publisher
	ttl       time.Duration
	runs      map[string]*run
	sessions  map[string]*liveSession
	rng       *rand.Rand
	now       func() time.Time
}

// NewExerciseService creates an exercise service. Runs and sessions idle for
// longer than ttl are dropped by CleanupExpired.
func NewExerciseService(catalog *lessons.Catalog, progress *ProgressService, publisher events.Publisher, ttl time.Duration) *ExerciseService {
	return &ExerciseService{
		catalog:   catalog,
		progress:  progress,
		publisher: publisher,
		ttl:       ttl,
		runs:      make(map[string]*run),
		sessions:  make(map[string]*liveSession),
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		now:       time.Now,
	}
}

// StartRun opens a new pass through ref for userID (0 for guests)
func (s *ExerciseService) StartRun(ctx context.Context, userID int64, ref lessons.Ref) (*RunView, error) {
	part, err := s.catalog.Part(ref)
	if err != nil {
		return nil, err
	}
	previous, err := s.progress.PartScore(ctx, userID, ref)
	if err != nil {
		// A missing previous score never blocks play
		log.Printf("Warning: %v", err)
	}

	progress, _ := scoring.NewPartProgress()
	r := &run{
		id:       security.GenerateSessionID(),
		userID:   userID,
		ref:      ref,
		part:     part,
		progress: progress,
		touched:  s.now(),
	}

	s.mu.Lock()
	s.runs[r.id] = r
	s.mu.Unlock()

	view := r.view()
	view.PreviousScore = previous
	return &view, nil
}

func (r *run) view() RunView {
	return RunView{
		ID:     r.id,
		Lesson: r.ref,
		Scores: r.progress.Scores(),
		Next:   r.progress.Next(),
	}
}

// Run returns a run owned by userID
func (s *ExerciseService) Run(userID int64, runID string) (*RunView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := s.lookupRun(userID, runID)
	if err != nil {
		return nil, err
	}
	view := r.view()
	return &view, nil
}

// StartExercise begins exercise index of a run with fresh attempts and a
// reshuffled pool. Every earlier exercise needs a score first. Any session
// already live in the run is abandoned.
func (s *ExerciseService) StartExercise(userID int64, runID string, index int) (*SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := s.lookupRun(userID, runID)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(r.part.Exercises) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownExercise, index)
	}
	for i := 0; i < index; i++ {
		if !r.progress.Has(i) {
			return nil, fmt.Errorf("%w: exercise %d has no score", ErrExerciseLocked, i+1)
		}
	}

	session, err := scoring.NewSession(r.part.Exercises[index].Definition(), s.rng)
	if err != nil {
		return nil, err
	}

	if r.live != "" {
		delete(s.sessions, r.live)
	}
	ls := &liveSession{
		id:      security.GenerateSessionID(),
		run:     r,
		index:   index,
		session: session,
		touched: s.now(),
	}
	s.sessions[ls.id] = ls
	r.live = ls.id
	r.touched = ls.touched

	view := ls.view()
	return &view, nil
}

// View returns the current state of a session
func (s *ExerciseService) View(userID int64, sessionID string) (*SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ls, err := s.lookupSession(userID, sessionID)
	if err != nil {
		return nil, err
	}
	view := ls.view()
	return &view, nil
}

// Submit grades value for one item immediately
func (s *ExerciseService) Submit(ctx context.Context, userID int64, sessionID, itemID, value string) (*ActionResult, error) {
	return s.act(ctx, userID, sessionID, func(sess *scoring.Session, res *ActionResult) error {
		sub, err := sess.Submit(itemID, value)
		if err != nil {
			return err
		}
		res.Submit = &sub
		return nil
	})
}

// Target selects the item the next Choose answers
func (s *ExerciseService) Target(ctx context.Context, userID int64, sessionID, itemID string) (*ActionResult, error) {
	return s.act(ctx, userID, sessionID, func(sess *scoring.Session, _ *ActionResult) error {
		return sess.Select(itemID)
	})
}

// Choose answers the targeted item with value. Without a target nothing
// happens and Applied is false.
func (s *ExerciseService) Choose(ctx context.Context, userID int64, sessionID, value string) (*ActionResult, error) {
	return s.act(ctx, userID, sessionID, func(sess *scoring.Session, res *ActionResult) error {
		sub, applied, err := sess.Choose(value)
		if err != nil {
			return err
		}
		res.Applied = &applied
		if applied {
			res.Submit = &sub
		}
		return nil
	})
}

// Draft stores an answer for the next CheckAll
func (s *ExerciseService) Draft(ctx context.Context, userID int64, sessionID, itemID, value string) (*ActionResult, error) {
	return s.act(ctx, userID, sessionID, func(sess *scoring.Session, _ *ActionResult) error {
		return sess.Draft(itemID, value)
	})
}

// CheckAll grades every drafted answer of a deferred exercise
func (s *ExerciseService) CheckAll(ctx context.Context, userID int64, sessionID string) (*ActionResult, error) {
	return s.act(ctx, userID, sessionID, func(sess *scoring.Session, res *ActionResult) error {
		check, err := sess.CheckAll()
		if err != nil {
			return err
		}
		res.Check = &check
		return nil
	})
}

// completion carries what is needed after the lock is released
type completion struct {
	userID int64
	ref    lessons.Ref
	runID  string
	index  int
	score  float64
	scores []float64
	done   bool
}

// act applies one action under the lock. When the action finishes the
// exercise, the score goes into the run and the follow-up (events, part
// average, persistence) runs after unlocking.
func (s *ExerciseService) act(ctx context.Context, userID int64, sessionID string, action func(*scoring.Session, *ActionResult) error) (*ActionResult, error) {
	s.mu.Lock()
	ls, err := s.lookupSession(userID, sessionID)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}

	res := &ActionResult{}
	before := ls.session.State()
	if err := action(ls.session, res); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	ls.touched = s.now()
	ls.run.touched = ls.touched
	res.Session = ls.view()

	var done *completion
	if score, ok := ls.session.Score(); ok && before != scoring.StateScoreComputed {
		done = s.recordScore(ls, score)
	}
	s.mu.Unlock()

	if done != nil {
		if err := s.finish(ctx, done, &res.Session); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// recordScore stores a finished exercise in its run. A completed run is
// removed: retrying a part always starts a new run.
func (s *ExerciseService) recordScore(ls *liveSession, score float64) *completion {
	r := ls.run
	if err := r.progress.Record(ls.index, score); err != nil {
		log.Printf("Error recording exercise %d of run %s: %v", ls.index, r.id, err)
	}
	delete(s.sessions, ls.id)
	r.live = ""

	c := &completion{
		userID: r.userID,
		ref:    r.ref,
		runID:  r.id,
		index:  ls.index,
		score:  score,
		scores: r.progress.Scores(),
		done:   r.progress.Complete(),
	}
	if c.done {
		delete(s.runs, r.id)
	}
	return c
}

func (s *ExerciseService) finish(ctx context.Context, c *completion, view *SessionView) error {
	if s.publisher != nil {
		err := s.publisher.Publish(ctx, events.Event{
			Type:      events.ExerciseCompleted,
			UserID:    c.userID,
			LessonKey: c.ref.LessonKey(),
			PartID:    c.ref.Part,
			Exercise:  c.index + 1,
			Score:     c.score,
		})
		if err != nil {
			log.Printf("Warning: failed to publish %s event: %v", events.ExerciseCompleted, err)
		}
	}

	if !c.done {
		nav := toExercise(c.ref, c.runID, c.index+1, c.scores)
		view.Navigation = &nav
		return nil
	}

	outcome, err := s.progress.CompletePart(ctx, c.userID, c.ref, c.scores)
	if err != nil {
		return err
	}
	view.Part = outcome
	view.Navigation = &outcome.Navigation
	return nil
}

func (ls *liveSession) view() SessionView {
	ex := ls.run.part.Exercises[ls.index]
	v := SessionView{
		ID:     ls.id,
		RunID:  ls.run.id,
		Lesson: ls.run.ref,
		Index:  ls.index,
		Title:  ex.Title,
		Type:   ls.session.Type(),
		Policy: ls.session.Policy().Kind(),
		State:  ls.session.State(),
		Items:  ls.session.Items(),
		Pool:   ls.session.Pool(),
		Target: ls.session.Target(),
	}
	if drafts := ls.session.Drafts(); len(drafts) > 0 {
		v.Drafts = drafts
	}
	if score, ok := ls.session.Score(); ok {
		display := scoring.RoundForDisplay(score)
		v.Score = &score
		v.Display = &display
	}
	return v
}

func (s *ExerciseService) lookupRun(userID int64, runID string) (*run, error) {
	r, ok := s.runs[runID]
	if !ok || r.userID != userID || s.expired(r.touched) {
		return nil, ErrRunNotFound
	}
	return r, nil
}

func (s *ExerciseService) lookupSession(userID int64, sessionID string) (*liveSession, error) {
	ls, ok := s.sessions[sessionID]
	if !ok || ls.run.userID != userID || s.expired(ls.touched) {
		return nil, ErrSessionGone
	}
	return ls, nil
}

func (s *ExerciseService) expired(t time.Time) bool {
	return s.ttl > 0 && s.now().Sub(t) > s.ttl
}

// CleanupExpired drops idle runs and sessions and reports how many went
func (s *ExerciseService) CleanupExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, ls := range s.sessions {
		if s.expired(ls.touched) {
			delete(s.sessions, id)
			removed++
		}
	}
	for id, r := range s.runs {
		if s.expired(r.touched) {
			delete(s.runs, id)
			removed++
		}
	}
	return removed
}
