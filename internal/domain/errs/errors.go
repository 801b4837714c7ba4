// Package errs holds the sentinel errors shared by every domain package.
package errs

import "errors"

var (
	// ErrNotFound is returned when a resource is not found
	ErrNotFound = errors.New("resource not found")

	// ErrAlreadyExists is returned when a resource already exists
	ErrAlreadyExists = errors.New("resource already exists")

	// ErrInvalidInput is returned when input data is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized is returned when the acting subject may not touch the resource
	ErrUnauthorized = errors.New("unauthorized")

	// ErrConcurrentModification is returned when a version conflict occurs
	ErrConcurrentModification = errors.New("concurrent modification detected")

	// ErrInvalidTransition is returned when a state transition is invalid
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrInsufficientFunds is returned when a coin balance cannot cover a debit
	ErrInsufficientFunds = errors.New("insufficient funds")
)
