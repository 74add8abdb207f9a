package errors

import "errors"

var (
	ErrNotFound = errors.New("game not found")

	ErrInvalidID = errors.New("invalid game ID format")

	// ErrVersionConflict means the join predicate no longer matched the stored game.
	ErrVersionConflict = errors.New("game was modified concurrently")
)
