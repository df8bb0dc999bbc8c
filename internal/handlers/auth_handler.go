package handlers

import (
	"log"
	"net/http"
	"time"

	"linguaclash/internal/models"
	"linguaclash/internal/service"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	authService          *service.AuthService
	oauthProviders       map[string]OAuthProvider
	oauthRedirectBaseURL string
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, oauthProviders map[string]OAuthProvider, oauthRedirectBaseURL string) *AuthHandler {
	return &AuthHandler{
		authService:          authService,
		oauthProviders:       oauthProviders,
		oauthRedirectBaseURL: oauthRedirectBaseURL,
	}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// AuthResponse is returned after every successful sign-in
type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

func newAuthResponse(token *service.AuthToken, user *models.User) AuthResponse {
	return AuthResponse{
		Token:     token.Token,
		ExpiresAt: token.ExpiresAt.UTC(),
		User:      user,
	}
}

// Register creates a password account and signs it in
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidJSON, "", nil)
		return
	}

	if _, err := h.authService.Register(r.Context(), req.Email, req.Password, req.Name); err != nil {
		respondWithServiceError(w, "Error registering user", err)
		return
	}

	// Auto-login after registration
	token, user, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		respondWithServiceError(w, "Error signing in new user", err)
		return
	}

	respondJSON(w, http.StatusCreated, newAuthResponse(token, user))
}

// Login exchanges email and password for a bearer token
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidJSON, "", nil)
		return
	}

	token, user, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		respondWithServiceError(w, "Error logging in", err)
		return
	}

	respondJSON(w, http.StatusOK, newAuthResponse(token, user))
}

// Logout revokes the token the request was made with
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if sessionID := getSessionFromContext(r.Context()); sessionID != "" {
		if err := h.authService.Logout(sessionID); err != nil {
			respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error logging out", err)
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the signed-in user
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, GetUserFromContext(r.Context()))
}

// DeleteAccount removes the signed-in user and all their progress
func (h *AuthHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if err := h.authService.DeleteAccount(r.Context(), user.ID); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to delete account", "Error deleting account", err)
		return
	}
	log.Printf("Account %d deleted by its owner", user.ID)
	w.WriteHeader(http.StatusNoContent)
}
