package repository

import "errors"

// Common repository errors shared by all storage implementations.
var (
	// ErrNotFound indicates the requested entry was not found.
	ErrNotFound = errors.New("not found")
)
