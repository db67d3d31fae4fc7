package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ValidationError reports malformed input: missing fields, bad ordering,
// off-grid timestamps, unknown enum values.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ConflictError reports a double booking or a duplicate friendship/account.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// AuthorizationError reports a mutation attempted by someone other than the owner.
type AuthorizationError struct {
	Message string
}

func (e *AuthorizationError) Error() string { return e.Message }

type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// DeliveryError is returned only where a notification is part of the request
// contract; elsewhere delivery failures are logged and dropped.
type DeliveryError struct {
	Message string
	Err     error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

func validationError(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

func conflictError(format string, args ...interface{}) error {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

func authorizationError(format string, args ...interface{}) error {
	return &AuthorizationError{Message: fmt.Sprintf(format, args...)}
}

func notFoundError(format string, args ...interface{}) error {
	return &NotFoundError{Message: fmt.Sprintf(format, args...)}
}

// notFoundOr maps gorm.ErrRecordNotFound to a NotFoundError and wraps anything else.
func notFoundOr(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFoundError("%s not found", what)
	}
	return fmt.Errorf("failed to load %s: %w", what, err)
}
