package store

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidID is returned when an identifier is not a well formed ObjectID. It is detected
	// before the database is queried.
	ErrInvalidID = errors.New("invalid id parameter")

	// ErrNotFound is returned when no contact exists for a well formed identifier.
	ErrNotFound = errors.New("contact not found")

	// ErrDuplicateEmail is wrapped in a ValidationError when the email is already taken.
	ErrDuplicateEmail = errors.New("email already exists")

	// ErrStorage wraps every unexpected failure of the database.
	ErrStorage = errors.New("storage error")
)

// ValidationError is returned when submitted values violate the contact rules. Err is either a
// validation.Errors with an entry per field or ErrDuplicateEmail.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// storageError wraps err so that it matches ErrStorage while keeping the driver error in the
// chain.
func storageError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorage, op, err)
}
