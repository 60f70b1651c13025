package domain

import "errors"

// Sentinel errors shared across services and repositories. Controllers and
// the workflow match on these with errors.Is to pick the right outcome.
var (
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("forbidden")
	ErrCapacityExceeded  = errors.New("no places remaining")
	ErrRegistrationClosed = errors.New("registration closed")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInvalidTransition = errors.New("invalid status transition")
)
