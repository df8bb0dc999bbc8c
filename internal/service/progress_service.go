package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/felixgeelhaar/fortify/retry"

	"linguaclash/internal/events"
	"linguaclash/internal/lessons"
	"linguaclash/internal/models"
	"linguaclash/internal/scoring"
)

// persistInitialDelay is the pause before the second score write
var persistInitialDelay = 250 * time.Millisecond

// PartOutcome is the result of finishing the three exercises of a part
type PartOutcome struct {
	Lesson     lessons.Ref      `json:"lesson"`
	Scores     []float64        `json:"scores"`
	Average    float64          `json:"average"`
	Display    float64          `json:"display"`
	Decision   scoring.Decision `json:"decision"`
	Saved      bool             `json:"saved"`
	Navigation Navigation       `json:"navigation"`
}

// ProgressService averages parts, routes learners through the gate and
// remembers part averages for signed-in learners
type ProgressService struct {
	catalog   *lessons.Catalog
	scores    ScoreStore
	gate      scoring.Gate
	retrier   retry.Retry[struct{}]
	publisher events.Publisher
}

// NewProgressService creates a progress service. maxAttempts bounds score
// writes; 2 means one retry.
func NewProgressService(catalog *lessons.Catalog, scores ScoreStore, threshold float64, maxAttempts int, publisher events.Publisher) *ProgressService {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &ProgressService{
		catalog: catalog,
		scores:  scores,
		gate:    scoring.Gate{Threshold: threshold},
		retrier: retry.New[struct{}](retry.Config{
			MaxAttempts:   maxAttempts,
			InitialDelay:  persistInitialDelay,
			MaxDelay:      2 * time.Second,
			Multiplier:    2.0,
			BackoffPolicy: retry.BackoffExponential,
			Jitter:        true,
			IsRetryable: func(err error) bool {
				return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
			},
		}),
		publisher: publisher,
	}
}

// CompletePart averages the three exercise scores of ref, decides where the
// learner goes and, for a signed-in learner, stores the average. A failed
// save is logged and reported through Saved; routing proceeds regardless.
// userID 0 is a guest.
func (s *ProgressService) CompletePart(ctx context.Context, userID int64, ref lessons.Ref, scores []float64) (*PartOutcome, error) {
	if _, err := s.catalog.Part(ref); err != nil {
		return nil, err
	}

	progress, err := scoring.NewPartProgress(scores...)
	if err != nil {
		return nil, err
	}
	average, err := progress.Average()
	if err != nil {
		return nil, err
	}

	decision := s.gate.Decide(average, ref.Part)
	outcome := &PartOutcome{
		Lesson:   ref,
		Scores:   progress.Scores(),
		Average:  average,
		Display:  scoring.RoundForDisplay(average),
		Decision: decision,
	}

	if userID != 0 {
		outcome.Saved = s.save(ctx, userID, ref, average)
	}

	outcome.Navigation, err = s.route(ref, decision)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:        events.PartCompleted,
		UserID:      userID,
		LessonKey:   ref.LessonKey(),
		PartID:      ref.Part,
		Score:       average,
		Scores:      outcome.Scores,
		Destination: string(decision.Destination),
		Saved:       outcome.Saved,
	})

	return outcome, nil
}

func (s *ProgressService) save(ctx context.Context, userID int64, ref lessons.Ref, average float64) bool {
	_, err := s.retrier.Do(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.scores.SetScore(ctx, userID, ref.LessonKey(), ref.Part, average)
	})
	if err != nil {
		log.Printf("Error saving score for user %d, %s %s: %v", userID, ref.LessonKey(), ref.Part, err)
		return false
	}
	return true
}

// route turns a gate decision into a screen: the next part (or the folder
// list after the last one) on advance, the same part from its start on retry
func (s *ProgressService) route(ref lessons.Ref, decision scoring.Decision) (Navigation, error) {
	if decision.Destination == scoring.DestinationRetry {
		return toPart(lessons.Ref{Folder: ref.Folder, Episode: ref.Episode, Part: decision.RetryTarget}), nil
	}

	next, ok, err := s.catalog.Next(ref)
	if err != nil {
		return Navigation{}, err
	}
	if !ok {
		return toFolders(), nil
	}
	return toPart(next), nil
}

func (s *ProgressService) publish(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		log.Printf("Warning: failed to publish %s event: %v", event.Type, err)
	}
}

// Scores returns every stored part average of a user
func (s *ProgressService) Scores(ctx context.Context, userID int64) (models.ScoreRecord, error) {
	scores, err := s.scores.Scores(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load scores: %w", err)
	}
	return models.NewScoreRecord(scores), nil
}

// PartScore returns the stored average of one part, or nil when the learner
// has none yet or is a guest
func (s *ProgressService) PartScore(ctx context.Context, userID int64, ref lessons.Ref) (*float64, error) {
	if userID == 0 {
		return nil, nil
	}
	score, ok, err := s.scores.GetScore(ctx, userID, ref.LessonKey(), ref.Part)
	if err != nil {
		return nil, fmt.Errorf("failed to load score: %w", err)
	}
	if !ok {
		return nil, nil
	}
	return &score, nil
}
