package shared

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrValidation indicates rejected input.
	ErrValidation = errors.New("validation failed")
	// ErrPersistence indicates a storage write failure.
	ErrPersistence = errors.New("persistence failed")
	// ErrLogWrite indicates the audit log append failed after the primary write.
	ErrLogWrite = errors.New("audit log write failed")
	// ErrUnauthenticated indicates no acting user could be resolved.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ValidationError rejects bad input before any write happens.
func ValidationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// NotFoundError marks a missing mutation target.
func NotFoundError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// PersistenceError wraps a failed storage write. The operation is considered
// not to have happened.
func PersistenceError(err error) error {
	return fmt.Errorf("%w: %v", ErrPersistence, err)
}

// LogWriteError wraps a failed audit append. The stock mutation that preceded
// it already committed.
func LogWriteError(err error) error {
	return fmt.Errorf("%w: %v", ErrLogWrite, err)
}

// UserSafeMessage maps internal errors to messages safe to show users.
func UserSafeMessage(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return err.Error()
	case errors.Is(err, ErrNotFound):
		return "The requested item could not be found."
	case errors.Is(err, ErrInvalidCredentials):
		return "Email or password is incorrect."
	case errors.Is(err, ErrUnauthenticated):
		return "Please sign in to continue."
	default:
		return "Something went wrong. Please try again."
	}
}
