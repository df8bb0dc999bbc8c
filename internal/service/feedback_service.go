package service

import (
	"context"
	"log"
	"strings"

	"linguaclash/internal/models"
	"linguaclash/internal/repository"
	"linguaclash/internal/validation"
)

// FeedbackService records learner ratings and forwards them by email
type FeedbackService struct {
	repo     *repository.FeedbackRepository
	email    *EmailService
	notifyTo string
}

// NewFeedbackService creates a feedback service. notifyTo may be empty to
// skip notifications.
func NewFeedbackService(repo *repository.FeedbackRepository, email *EmailService, notifyTo string) *FeedbackService {
	return &FeedbackService{repo: repo, email: email, notifyTo: notifyTo}
}

// Submit stores a rating from user (nil for guests). Notification failures
// are logged and never fail the submission.
func (s *FeedbackService) Submit(ctx context.Context, user *models.User, rating int, message string) (*models.Feedback, error) {
	message = strings.TrimSpace(message)
	if err := validation.ValidateFeedback(rating, message); err != nil {
		return nil, err
	}

	var userID *int64
	from := ""
	if user != nil {
		userID = &user.ID
		from = user.Email
	}

	fb, err := s.repo.Create(ctx, userID, rating, message)
	if err != nil {
		return nil, err
	}

	if s.notifyTo != "" && s.email != nil && s.email.IsEnabled() {
		if err := s.email.SendFeedbackNotification(ctx, s.notifyTo, fb, from); err != nil {
			log.Printf("Warning: failed to send feedback notification: %v", err)
		}
	}
	return fb, nil
}

// All lists feedback newest first
func (s *FeedbackService) All(ctx context.Context) ([]models.Feedback, error) {
	return s.repo.All(ctx)
}
