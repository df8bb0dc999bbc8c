package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"linguaclash/internal/models"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

const (
	maxWordLength       = 100
	maxDefinitionLength = 1000
	maxFeedbackLength   = 4000
)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateEmail checks if an email address is valid
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ValidationError{Field: "email", Message: "email is required"}
	}
	if !emailRegex.MatchString(email) {
		return ValidationError{Field: "email", Message: "invalid email format"}
	}
	return nil
}

// ValidatePassword checks if a password meets requirements
func ValidatePassword(password string) error {
	if password == "" {
		return ValidationError{Field: "password", Message: "password is required"}
	}
	if len(password) < 8 {
		return ValidationError{Field: "password", Message: "password must be at least 8 characters"}
	}
	return nil
}

// ValidateName checks if a name is valid
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ValidationError{Field: "name", Message: "name is required"}
	}
	if len(name) < 2 {
		return ValidationError{Field: "name", Message: "name must be at least 2 characters"}
	}
	return nil
}

// ValidateWord checks a dictionary entry before it is saved
func ValidateWord(word, definition string) error {
	word = strings.TrimSpace(word)
	if word == "" {
		return ValidationError{Field: "word", Message: "word is required"}
	}
	if utf8.RuneCountInString(word) > maxWordLength {
		return ValidationError{Field: "word", Message: fmt.Sprintf("word must be at most %d characters", maxWordLength)}
	}
	if utf8.RuneCountInString(definition) > maxDefinitionLength {
		return ValidationError{Field: "definition", Message: fmt.Sprintf("definition must be at most %d characters", maxDefinitionLength)}
	}
	return nil
}

// ValidateFeedback checks a 1-5 rating and the optional message
func ValidateFeedback(rating int, message string) error {
	if !models.ValidRating(rating) {
		return ValidationError{Field: "rating", Message: fmt.Sprintf("rating must be between %d and %d", models.MinRating, models.MaxRating)}
	}
	if utf8.RuneCountInString(message) > maxFeedbackLength {
		return ValidationError{Field: "message", Message: fmt.Sprintf("message must be at most %d characters", maxFeedbackLength)}
	}
	return nil
}
