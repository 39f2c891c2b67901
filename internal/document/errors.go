package document

import "errors"

// Predefined errors returned by Apply.
var (
	// ErrVersionGap reports a change set whose FromVersion is ahead of the
	// buffer: intermediate sets are missing and the mirror cannot be
	// trusted again until a reset.
	ErrVersionGap = errors.New("document: change set skips versions")

	// ErrOutOfOrder reports a change whose resolved start precedes the
	// span of the change before it in the same set.
	ErrOutOfOrder = errors.New("document: changes not ordered by start position")
)
