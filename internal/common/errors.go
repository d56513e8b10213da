// Package common defines sentinel errors and small helpers shared by the
// store, services and CLI layers. Callers should use errors.Is to match
// these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors.
	ErrorAlreadyExists  = errors.New("already exists")
	ErrorNotInitialized = errors.New("store is not initialized, run 'otp init'")
	ErrorInvalidPin     = errors.New("invalid pin")

	// Validation errors.
	ErrorValidation = errors.New("validation error")
)
