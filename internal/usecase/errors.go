package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrDependencyUnavailable = errors.New("dependency unavailable")

	// Sync run failures.
	ErrConfiguration      = errors.New("configuration error")
	ErrFetchFailure       = errors.New("fetch failure")
	ErrStorageFailure     = errors.New("storage failure")
	ErrInvariantViolation = errors.New("invariant violation")
)
