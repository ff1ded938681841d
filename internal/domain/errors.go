package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Services wrap these (directly or through the entity-specific
// sentinels below) and controllers map them to HTTP status codes.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrConflict     = errors.New("conflict")
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
	ErrInternal     = errors.New("internal error")
)

// Entity-specific sentinels. Each one matches its kind with errors.Is.
var (
	ErrUserNotFound         = fmt.Errorf("user %w", ErrNotFound)
	ErrEventNotFound        = fmt.Errorf("event %w", ErrNotFound)
	ErrRegistrationNotFound = fmt.Errorf("registration %w", ErrNotFound)

	ErrDuplicateEmail     = fmt.Errorf("%w: email already exists", ErrConflict)
	ErrDuplicateEventName = fmt.Errorf("%w: event name already exists", ErrInvalidInput)
	ErrEmptyPatch         = fmt.Errorf("%w: request body is empty", ErrInvalidInput)

	ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
)
