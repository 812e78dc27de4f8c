package apperr

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	// Calendar bridge failures. Converted to the manual-copy fallback at
	// the call site; never surfaced to API consumers as errors.
	ErrCalendarUnavailable = errors.New("calendar unavailable")
	ErrCalendarWrite       = errors.New("calendar write failed")
)
