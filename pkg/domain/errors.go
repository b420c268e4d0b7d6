package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors surfaced to collaborators. Authentication and validation
// failures propagate to the caller; storage failures do not (durability is
// best-effort) and appear only in diagnostics wrapped in ErrStorageUnavailable.
var (
	// ErrNotAuthenticated reports an owner-scoped mutation with no active
	// session.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrNotFound reports an update or delete against an unknown identifier.
	ErrNotFound = errors.New("not found")
	// ErrEmailAlreadyInUse reports a sign-up with an email that already has
	// an account.
	ErrEmailAlreadyInUse = errors.New("email already in use")
	// ErrInvalidCredentials reports a sign-in whose email and secret match
	// no account.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrStorageUnavailable wraps durable-medium read/write failures. The
	// engine degrades to in-memory operation for the affected call.
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrInitializationFailed wraps load or seed failures during bootstrap.
	// The engine still transitions to ready with whatever state loaded.
	ErrInitializationFailed = errors.New("initialization failed")
)

// NotFoundError carries the collection and identifier of a failed lookup.
// It matches ErrNotFound under errors.Is.
type NotFoundError struct {
	Collection Collection
	ID         string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Collection, e.ID)
}

// Is reports whether target is ErrNotFound.
func (e NotFoundError) Is(target error) bool { return target == ErrNotFound }
