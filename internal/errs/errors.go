// Package errs provides the unified error type used across schemadump.
//
// Every subsystem (fetch clients, renderer, artifact store, config) wraps
// its native errors into *errs.Error before returning them. Callers use the
// Is* predicates to decide how an error maps to exit behavior without
// importing driver-specific packages.
//
// Usage:
//
//	// In a client — wrap native errors:
//	return errs.Wrap(errs.ErrKindConnectionFailed, "rpc call failed", httpErr)
//
//	// In main — check error kind:
//	if errs.IsNotFound(err) {
//	    log.Warn("table not found")
//	    os.Exit(0)
//	}
package errs

import (
	"errors"
	"fmt"
)

// ErrKind categorises an error without exposing subsystem-specific codes.
// All backends (PostgREST, direct Postgres, MinIO, the filesystem) map
// their native errors to one of these kinds.
type ErrKind int

const (
	ErrKindUnknown          ErrKind = iota
	ErrKindConfig                   // required endpoint/credential missing or invalid
	ErrKindConnectionFailed         // cannot reach the remote endpoint (single attempt)
	ErrKindFetchFailed              // every retry attempt failed; last cause preserved
	ErrKindNotFound                 // requested table absent from the fetched schema (soft)
	ErrKindWriteFailed              // an artifact could not be written or uploaded
	ErrKindInvalidInput             // bad arguments from the caller
)

func (k ErrKind) String() string {
	switch k {
	case ErrKindConfig:
		return "config"
	case ErrKindConnectionFailed:
		return "connection_failed"
	case ErrKindFetchFailed:
		return "fetch_failed"
	case ErrKindNotFound:
		return "not_found"
	case ErrKindWriteFailed:
		return "write_failed"
	case ErrKindInvalidInput:
		return "invalid_input"
	default:
		return "unknown"
	}
}

// Error is the single error type returned by all schemadump subsystems.
type Error struct {
	Kind    ErrKind
	Message string
	Cause   error // original underlying error, preserved for logging
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Unwrap allows errors.Is / errors.As to traverse the cause chain.
func (e *Error) Unwrap() error {
	return e.Cause
}

// --- Constructors ---

// New creates an *Error with the given kind and message and no cause.
func New(kind ErrKind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Wrap creates an *Error with the given kind, message, and an underlying cause.
func Wrap(kind ErrKind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Cause: cause}
}

// --- Predicates ---

// IsConfig reports whether err was caused by missing or invalid configuration.
func IsConfig(err error) bool {
	return kindOf(err) == ErrKindConfig
}

// IsConnectionFailed reports whether err is a single-attempt connectivity
// or server failure (the retryable kind).
func IsConnectionFailed(err error) bool {
	return kindOf(err) == ErrKindConnectionFailed
}

// IsFetchFailed reports whether err means the retry budget was exhausted.
func IsFetchFailed(err error) bool {
	return kindOf(err) == ErrKindFetchFailed
}

// IsNotFound reports whether err represents a missing table — the one soft
// error kind: callers report it and exit cleanly instead of failing.
func IsNotFound(err error) bool {
	return kindOf(err) == ErrKindNotFound
}

// IsWriteFailed reports whether err means an artifact write or upload failed.
func IsWriteFailed(err error) bool {
	return kindOf(err) == ErrKindWriteFailed
}

// IsInvalidInput reports whether err was caused by bad input from the caller.
func IsInvalidInput(err error) bool {
	return kindOf(err) == ErrKindInvalidInput
}

// kindOf extracts the ErrKind from any error in the chain.
func kindOf(err error) ErrKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ErrKindUnknown
}
