package core

import "errors"

var (
	// ErrNotFound covers both unknown identifiers and already-consumed notes;
	// callers cannot distinguish the two, by design.
	ErrNotFound = errors.New("note not found")

	// ErrExpired means the note existed but its time window had passed. The
	// stale record is deleted as a side effect, so a retry sees ErrNotFound.
	ErrExpired = errors.New("note expired")
)

// ValidationError is a caller error: malformed or policy-violating input.
// Matched with errors.As; never worth retrying.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func validation(reason string) error {
	return &ValidationError{Reason: reason}
}
