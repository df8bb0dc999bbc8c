package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"linguaclash/internal/models"
	"linguaclash/internal/repository"
	"linguaclash/internal/security"
	"linguaclash/internal/validation"
)

var (
	ErrEmailTaken         = errors.New("email already taken")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrSessionNotFound    = errors.New("session not found")
	ErrSessionExpired     = errors.New("session expired")
)

// AuthToken is handed to the client after a successful sign-in
type AuthToken struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AuthService handles authentication business logic
type AuthService struct {
	userRepo        *repository.UserRepository
	tokens          *security.TokenIssuer
	sessionDuration time.Duration
	email           *EmailService
	purgers         []userDataPurger
}

// NewAuthService creates a new auth service. purgers are asked to drop a
// user's data when the account is deleted.
func NewAuthService(userRepo *repository.UserRepository, tokens *security.TokenIssuer, sessionDuration time.Duration, email *EmailService, purgers ...userDataPurger) *AuthService {
	return &AuthService{
		userRepo:        userRepo,
		tokens:          tokens,
		sessionDuration: sessionDuration,
		email:           email,
		purgers:         purgers,
	}
}

// Register creates a new password account
func (s *AuthService) Register(ctx context.Context, email, password, name string) (*models.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	name = strings.TrimSpace(name)

	if err := validation.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, err
	}
	if err := validation.ValidateName(name); err != nil {
		return nil, err
	}

	existingUser, err := s.userRepo.GetUserByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existingUser != nil {
		return nil, ErrEmailTaken
	}

	passwordHash, err := security.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.userRepo.CreateUser(email, passwordHash, name)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if s.email != nil && s.email.IsEnabled() {
		if err := s.email.SendWelcomeEmail(ctx, user.Email, user.Name); err != nil {
			log.Printf("Warning: failed to send welcome email to user %d: %v", user.ID, err)
		}
	}

	return user, nil
}

// Login authenticates a user and issues a bearer token
func (s *AuthService) Login(email, password string) (*AuthToken, *models.User, error) {
	user, err := s.userRepo.GetUserByEmail(strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil || !security.CheckPassword(password, user.PasswordHash) {
		return nil, nil, ErrInvalidCredentials
	}

	token, err := s.startSession(user)
	if err != nil {
		return nil, nil, err
	}
	return token, user, nil
}

// startSession stores a session row and signs a token whose jti is its id
func (s *AuthService) startSession(user *models.User) (*AuthToken, error) {
	sessionID := security.GenerateSessionID()
	expiresAt := time.Now().Add(s.sessionDuration)

	if _, err := s.userRepo.CreateSession(sessionID, user.ID, expiresAt); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	signed, err := s.tokens.Issue(user.ID, sessionID, expiresAt)
	if err != nil {
		return nil, err
	}
	return &AuthToken{Token: signed, ExpiresAt: expiresAt}, nil
}

// ValidateToken verifies a bearer token against its live session and
// returns the user together with the session id
func (s *AuthService) ValidateToken(token string) (*models.User, string, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, "", err
	}

	session, err := s.userRepo.GetSession(claims.SessionID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil || session.UserID != claims.UserID {
		return nil, "", ErrSessionNotFound
	}

	if session.IsExpired() {
		_ = s.userRepo.DeleteSession(session.ID)
		return nil, "", ErrSessionExpired
	}

	user, err := s.userRepo.GetUserByID(session.UserID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, "", ErrSessionNotFound
	}

	return user, session.ID, nil
}

// Logout invalidates a session, which revokes its token
func (s *AuthService) Logout(sessionID string) error {
	if err := s.userRepo.DeleteSession(sessionID); err != nil {
		return fmt.Errorf("failed to logout: %w", err)
	}
	return nil
}

// CleanupExpiredSessions removes expired sessions from the database
func (s *AuthService) CleanupExpiredSessions() (int64, error) {
	n, err := s.userRepo.DeleteExpiredSessions()
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup sessions: %w", err)
	}
	return n, nil
}

// OAuthLogin signs in through a provider, linking an existing password
// account with the same email or creating a new one
func (s *AuthService) OAuthLogin(provider, subject, email, name string) (*AuthToken, *models.User, error) {
	if provider == "" || subject == "" {
		return nil, nil, errors.New("missing oauth provider information")
	}
	email = strings.TrimSpace(strings.ToLower(email))
	if err := validation.ValidateEmail(email); err != nil {
		return nil, nil, err
	}

	user, err := s.userRepo.GetUserByOAuth(provider, subject)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to lookup oauth user: %w", err)
	}

	if user == nil {
		existingUser, err := s.userRepo.GetUserByEmail(email)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to check existing user: %w", err)
		}

		switch {
		case existingUser != nil && existingUser.OAuthProvider != "" && existingUser.OAuthProvider != provider:
			return nil, nil, ErrEmailTaken
		case existingUser != nil:
			if err := s.userRepo.LinkOAuthProvider(existingUser.ID, provider, subject); err != nil {
				return nil, nil, fmt.Errorf("failed to link oauth provider: %w", err)
			}
			user = existingUser
		default:
			if name == "" {
				name, _, _ = strings.Cut(email, "@")
			}
			user, err = s.userRepo.CreateOAuthUser(email, name, provider, subject)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to create oauth user: %w", err)
			}
		}
	}

	token, err := s.startSession(user)
	if err != nil {
		return nil, nil, err
	}
	return token, user, nil
}

// DeleteAccount removes the user and everything stored for them
func (s *AuthService) DeleteAccount(ctx context.Context, userID int64) error {
	for _, p := range s.purgers {
		if err := p.DeleteUser(ctx, userID); err != nil {
			return fmt.Errorf("failed to delete user data: %w", err)
		}
	}
	if err := s.userRepo.DeleteUser(userID); err != nil {
		return err
	}
	log.Printf("Deleted account %d", userID)
	return nil
}
