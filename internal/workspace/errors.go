package workspace

import "errors"

// Common workspace errors. Callers that prefer the tolerant behavior of
// ignoring unknown ids can test for ErrNotFound with errors.Is.
var (
	// ErrNotFound is returned when a referenced entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalid is returned when input fails validation.
	ErrInvalid = errors.New("invalid input")

	// ErrDuplicate is returned when a unique value is already taken.
	ErrDuplicate = errors.New("already exists")
)

// errUnchanged tells mutate that fn left the collection as it was, so
// there is nothing to persist or announce.
var errUnchanged = errors.New("unchanged")
