package storage

import "errors"

// Common storage errors
var (
	// ErrNotFound indicates that the requested record does not exist
	// within the tenant's scope
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate indicates that a write collided with an existing
	// unique constraint
	ErrDuplicate = errors.New("duplicate record")

	// ErrKeyNotFound indicates that no idempotency record exists for the key
	ErrKeyNotFound = errors.New("idempotency key not found")
)
