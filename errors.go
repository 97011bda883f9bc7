package livestow

import "errors"

var (
	// ErrNotFound is returned when no object is registered under a name
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")
)
