package domain

import "errors"

// Common errors
var (
	ErrNotFound  = errors.New("record not found")
	ErrForbidden = errors.New("access forbidden: you don't own this resource")
	ErrInvalidID = errors.New("invalid id")

	ErrUserNotFound       = errors.New("user not found")
	ErrBodyweightNotFound = errors.New("no bodyweight measurement recorded")
	ErrExerciseNotFound   = errors.New("exercise not found")
	ErrSessionNotFound    = errors.New("workout session not found")

	// ErrInsufficientBalance is returned when a non-premium user has no
	// calculator credits left. No side effects are performed in that case.
	ErrInsufficientBalance = errors.New("insufficient rank calculator balance")

	// ErrAuditTerminal is returned on any attempt to update an audit row
	// that already reached success or failed.
	ErrAuditTerminal = errors.New("calculation audit is already in a terminal state")

	ErrReferenceData = errors.New("reference data unavailable")
	ErrPersistence   = errors.New("datastore operation failed")
	ErrDeadline      = errors.New("deadline exceeded")
	ErrInvalidInput  = errors.New("invalid input")
)
