package store

import "errors"

// Predefined errors for the store layer.
var (
	// ErrNotFound indicates that a requested resource was not found.
	ErrNotFound = errors.New("resource not found")

	// ErrConflict indicates a conflict, e.g. archiving a trip that is already
	// archived or creating a currency that already exists.
	ErrConflict = errors.New("conflict")
)
