package errors

import "errors"

var (
	ErrNotFound = errors.New("rental not found")

	ErrInvalidID = errors.New("invalid rental ID format")

	ErrOverlap = errors.New("rental overlaps an existing rental on this field")

	ErrLockHeld = errors.New("rental lock is held")

	ErrLockLost = errors.New("rental lock is no longer held by this creator")
)
