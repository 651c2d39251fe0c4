package repository

import "errors"

// Common repository errors
var (
	ErrConnectionNotFound = errors.New("connection not found")
	// ErrStoreReinit marks a reset whose wipe succeeded but whose re-initialization failed
	ErrStoreReinit = errors.New("store could not be re-initialized")
)
