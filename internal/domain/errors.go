package domain

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by repositories, services and transports.
// Callers classify with errors.Is; messages are for humans only.
var (
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("forbidden")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrValidation      = errors.New("validation failed")
	ErrConflict        = errors.New("conflict")
)

// Invalidf returns an error wrapping ErrValidation with a formatted detail.
func Invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// NotFoundf returns an error wrapping ErrNotFound, e.g. NotFoundf("project %s", id).
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%s %w", fmt.Sprintf(format, args...), ErrNotFound)
}
