package models

import "errors"

// Domain error taxonomy. Storage and validation errors are always surfaced;
// provider errors are handled inside the LLM gateway and only reach callers
// as a classification failure once every provider is exhausted.
var (
	// ErrNotFound is returned when an item or config key does not exist for
	// the given user. A cross-user id yields the same error, so existence of
	// another user's data is never leaked.
	ErrNotFound = errors.New("not found")

	// ErrInvalidTransition is returned for an illegal status change. No
	// state is mutated.
	ErrInvalidTransition = errors.New("invalid status transition")
)

// StorageError wraps a persistence-layer failure. The capture guarantee does
// not hold across a StorageError; callers should retry at a higher level.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return "storage: " + e.Op + ": " + e.Err.Error()
}

func (e *StorageError) Unwrap() error { return e.Err }
