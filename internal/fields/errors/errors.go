package errors

import "errors"

var (
	ErrNotFound = errors.New("field not found")

	ErrInvalidID = errors.New("invalid field ID format")

	ErrVersionConflict = errors.New("field was modified concurrently")
)
