// Package errors implements the error taxonomy described in spec.md §7:
// ValidationError, NotFound, StateConflict, LedgerConflict,
// StorageUnavailable, plus Unauthorized/Forbidden for actor resolution.
package errors

import (
	"fmt"
	"strings"
)

// ValidationError is returned when a wire row fails registry schema
// validation. Push marks the offending row `error`; pull never produces
// one because the server only ever emits rows it already accepted.
type ValidationError struct {
	EntityType string
	Code       string
	Message    string
	Fields     map[string]string
	Err        error
}

func (e ValidationError) Error() string {
	if strings.TrimSpace(e.Code) != "" {
		return fmt.Sprintf("%s - %s", e.Code, e.Message)
	}

	return e.Message
}

func (e ValidationError) Unwrap() error { return e.Err }

// NotFoundError is returned when a referenced row (most often a
// ChangeRequest id) does not exist.
type NotFoundError struct {
	EntityType string
	Message    string
}

func (e NotFoundError) Error() string {
	if strings.TrimSpace(e.Message) != "" {
		return e.Message
	}

	return fmt.Sprintf("%s not found", e.EntityType)
}

// StateConflictError is returned when a ChangeRequest is no longer pending
// or a UPSERT violates a uniqueness invariant.
type StateConflictError struct {
	Reason  string
	Message string
}

func (e StateConflictError) Error() string { return e.Message }

// LedgerConflictError is returned when a concurrent append moved last_seq
// out from under the caller's observed value. It is not retried:
// WriteSyncChanges and Gate.Apply return it, and the HTTP layer answers 500.
type LedgerConflictError struct {
	ObservedLastSeq uint64
	ActualLastSeq   uint64
}

func (e LedgerConflictError) Error() string {
	return fmt.Sprintf("ledger conflict: observed last_seq=%d, actual=%d", e.ObservedLastSeq, e.ActualLastSeq)
}

// StorageUnavailableError wraps a database/ledger I/O failure.
type StorageUnavailableError struct {
	Err error
}

func (e StorageUnavailableError) Error() string {
	return fmt.Sprintf("storage unavailable: %v", e.Err)
}

func (e StorageUnavailableError) Unwrap() error { return e.Err }

// UnauthorizedError indicates the request carried no valid actor.
type UnauthorizedError struct {
	Message string
}

func (e UnauthorizedError) Error() string { return e.Message }

// ForbiddenError indicates the actor is authenticated but not permitted.
type ForbiddenError struct {
	Message string
}

func (e ForbiddenError) Error() string { return e.Message }
