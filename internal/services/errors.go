// internal/services/errors.go
package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/javajoker/ipr-backend/internal/repository"
	"github.com/javajoker/ipr-backend/internal/utils"
)

var (
	ErrValidation        = errors.New("validation failed")
	ErrForbidden         = errors.New("forbidden")
	ErrUnauthorized      = errors.New("invalid credentials")
	ErrNotFound          = errors.New("not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrAllocationFailed  = errors.New("application number allocation failed")
	ErrConflict          = errors.New("conflict")
	// ErrNotificationDispatch marks a fan-out in which at least one recipient was not written.
	ErrNotificationDispatch = errors.New("notification dispatch partially failed")
)

// ValidationError carries per-field messages; it is rejected before any store write.
type ValidationError struct {
	Fields []utils.ValidationError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Message)
	}
	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func newValidationError(fields ...utils.ValidationError) *ValidationError {
	return &ValidationError{Fields: fields}
}

func fieldError(field, tag, message string) utils.ValidationError {
	return utils.ValidationError{Field: field, Tag: tag, Message: message}
}

// DispatchError reports which recipients of a fan-out did not receive their notification.
// Recipients not listed were notified.
type DispatchError struct {
	Attempted int
	Failed    map[uuid.UUID]error
}

func (e *DispatchError) Error() string {
	ids := make([]string, 0, len(e.Failed))
	for id := range e.Failed {
		ids = append(ids, id.String())
	}
	sort.Strings(ids)
	return fmt.Sprintf("%s: %d of %d recipients failed (%s)", ErrNotificationDispatch, len(e.Failed), e.Attempted, strings.Join(ids, ", "))
}

func (e *DispatchError) Unwrap() error {
	return ErrNotificationDispatch
}

// fromRepository lifts repository error kinds into service kinds.
func fromRepository(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	case errors.Is(err, repository.ErrConflict):
		return fmt.Errorf("%w: %v", ErrConflict, err)
	default:
		return err
	}
}
