package service

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

var (
	// ErrNotFound means a referenced recipe, ingredient or user does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict covers duplicate relation adds, removes of absent relations
	// and self-subscription attempts.
	ErrConflict = errors.New("conflict")
	// ErrForbidden means the caller is not the owning author.
	ErrForbidden = errors.New("forbidden")
)

// ValidationError reports client input that failed a domain check.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// isUniqueViolation reports whether err is a unique constraint violation from
// any of the supported dialects. A race past the existence pre-check must
// surface as the same conflict outcome.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
