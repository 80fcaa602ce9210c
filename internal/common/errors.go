// Package common defines shared constants and sentinel errors used across
// the journal keeper. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Store-level errors.
	ErrNotFound          = errors.New("no journal saved yet")
	ErrWrongKeyOrCorrupt = errors.New("wrong key or corrupted journal")

	// Lock-level errors.
	ErrLockUnavailable = errors.New("lock unavailable")

	// Validation errors.
	ErrScaleOutOfRange = errors.New("scale value must be between 0 and 10")
)
