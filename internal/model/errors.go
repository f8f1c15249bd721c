package model

import "errors"

// Common errors used across the application
var (
	// User errors
	ErrUserNotFound    = errors.New("user not found")
	ErrUsernameTaken   = errors.New("username already exists")
	ErrMissingUsername = errors.New("username is required for a new user")
	ErrMissingIdentity = errors.New("external identity is required for upsert")

	// Catalog errors
	ErrGameNotFound = errors.New("game not found")

	// Store errors
	ErrStoreUnavailable = errors.New("store unavailable")
)
