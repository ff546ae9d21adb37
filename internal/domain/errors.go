// Package domain defines the core business entities and errors.
package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidMode is returned when a session mode is not one of the known modes.
	ErrInvalidMode = errors.New("invalid session mode")

	// ErrEmptyTierName is returned when a tier identifier is blank.
	ErrEmptyTierName = errors.New("tier cannot be empty")
)
