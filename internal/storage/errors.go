package storage

import "errors"

// Errors shared by every store implementation.
var (
	// ErrNotFound means no snapshot or observation matched the lookup.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey means the snapshot ID or (snapshot, edge index) pair
	// is already stored. Stored records are never overwritten.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrInvalidInput means a record failed validation before storage.
	ErrInvalidInput = errors.New("invalid input")
)
