package services

import (
	"errors"
	"fmt"

	"github.com/fliproyale/waitlist/internal/store"
)

var (
	ErrValidation       = errors.New("validation failed")
	ErrIdentityConflict = errors.New("wallet and twitter belong to different users")
	ErrUnknownTask      = errors.New("unknown task")
	ErrSessionInvalid   = errors.New("session missing, unknown or expired")
	ErrWaitlistClosed   = errors.New("waitlist is closed")
	// ErrClaimsClosed is a closed waitlist for task claims only; it also matches ErrWaitlistClosed.
	ErrClaimsClosed = fmt.Errorf("%w: task claims", ErrWaitlistClosed)
	// ErrStorageUnavailable is the store's own sentinel so errors.Is works on adapter errors.
	ErrStorageUnavailable = store.ErrUnavailable
)

// ValidationError is a rejected signup field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string { return e.Field + ": " + e.Reason }

func (e *ValidationError) Unwrap() error { return ErrValidation }
