package errors

import (
	"errors"
	"fmt"
)

// Common error types for the AuthDoc client
var (
	// Credential errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNoCredentials      = errors.New("no stored credentials")
	ErrTokenExpired       = errors.New("token expired")

	// Session errors
	ErrSessionInvalidated = errors.New("session invalidated")
	ErrOperationInFlight  = errors.New("session operation already in progress")

	// Store errors
	ErrStoreCorrupt    = errors.New("credential store corrupt")
	ErrWrongPassphrase = errors.New("wrong credential store passphrase")

	// Request errors
	ErrValidation = errors.New("validation failed")
	ErrNoResponse = errors.New("no response from server")

	// General errors
	ErrNotFound = errors.New("not found")
	ErrInternal = errors.New("internal error")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
