package storage

import "errors"

// Storage errors shared by all dataset store implementations.
var (
	// ErrNotFound is returned when a requested dataset file does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")
)
