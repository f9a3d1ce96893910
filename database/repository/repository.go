package repository

import "errors"

// Shared repository errors. Services translate these into their own error
// taxonomy; handlers never see them directly.
var (
	// ErrNotFound means no record exists with the given id.
	ErrNotFound = errors.New("record not found")
	// ErrNoMatch means the record exists but its status did not match the
	// conditional filter of a transition write.
	ErrNoMatch = errors.New("record did not match expected state")
	// ErrDuplicateLive means a live (non-dismissed) appointment already exists
	// for the offer; raised by the partial unique index on insert.
	ErrDuplicateLive = errors.New("live appointment already exists for offer")
)
