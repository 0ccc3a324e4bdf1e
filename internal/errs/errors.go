// Package errs provides the unified error type used across sqlbrowser.
//
// Every subsystem (database, settings, reconcile, server, …) wraps its native
// errors into *errs.Error before returning them to callers. Callers use the
// Is* predicates to handle errors without importing driver-specific packages.
//
// Usage:
//
//	// In the session, wrap native errors:
//	return errs.Wrap(errs.ErrKindStatementFailed, "statement failed", err)
//
//	// In a handler, check error kind:
//	if errs.IsNotConnected(err) {
//	    http.Error(w, "not connected", http.StatusConflict)
//	}
package errs

import (
	"errors"
	"fmt"
)

// ErrKind categorises an error without exposing subsystem-specific codes.
// Every failure of a session is recoverable: none of these kinds closes it.
type ErrKind int

const (
	ErrKindUnknown                ErrKind = iota
	ErrKindNotFound                       // no saved server, no object
	ErrKindInvalidParams                  // connection params failed local validation
	ErrKindNotConnected                   // operation needs an open session
	ErrKindConnectFailed                  // driver could not open the connection
	ErrKindTransactionBeginFailed         // BEGIN failed, nothing was sent
	ErrKindStatementFailed                // the driver rejected the statement
	ErrKindCommitFailed                   // COMMIT failed, a rollback was forced
	ErrKindEditRejected                   // edit could not be turned into a statement
	ErrKindInvalidInput                   // bad arguments from the caller
	ErrKindPermissionDenied               // access denied / auth failure
	ErrKindTimeout                        // context deadline / cancellation
)

func (k ErrKind) String() string {
	switch k {
	case ErrKindNotFound:
		return "not_found"
	case ErrKindInvalidParams:
		return "invalid_params"
	case ErrKindNotConnected:
		return "not_connected"
	case ErrKindConnectFailed:
		return "connect_failed"
	case ErrKindTransactionBeginFailed:
		return "transaction_begin_failed"
	case ErrKindStatementFailed:
		return "statement_failed"
	case ErrKindCommitFailed:
		return "commit_failed"
	case ErrKindEditRejected:
		return "edit_rejected"
	case ErrKindInvalidInput:
		return "invalid_input"
	case ErrKindPermissionDenied:
		return "permission_denied"
	case ErrKindTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// Error is the single error type returned by all sqlbrowser subsystems.
type Error struct {
	Kind    ErrKind
	Message string
	Cause   error // original driver-level error, preserved verbatim
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

// IsNotFound reports whether err represents a "not found" result.
func IsNotFound(err error) bool {
	return KindOf(err) == ErrKindNotFound
}

// IsInvalidParams reports whether err is a local validation failure that
// never reached the network.
func IsInvalidParams(err error) bool {
	return KindOf(err) == ErrKindInvalidParams
}

// IsNotConnected reports whether err was returned because the session is closed.
func IsNotConnected(err error) bool {
	return KindOf(err) == ErrKindNotConnected
}

// IsConnectFailed reports whether err is a connectivity or auth failure at open time.
func IsConnectFailed(err error) bool {
	return KindOf(err) == ErrKindConnectFailed
}

// IsTransactionBeginFailed reports whether a mutation could not start its transaction.
func IsTransactionBeginFailed(err error) bool {
	return KindOf(err) == ErrKindTransactionBeginFailed
}

// IsStatementFailed reports whether the driver rejected the statement.
func IsStatementFailed(err error) bool {
	return KindOf(err) == ErrKindStatementFailed
}

// IsCommitFailed reports whether a mutation succeeded but could not be committed.
func IsCommitFailed(err error) bool {
	return KindOf(err) == ErrKindCommitFailed
}

// IsEditRejected reports whether an edit was refused before any statement was sent.
func IsEditRejected(err error) bool {
	return KindOf(err) == ErrKindEditRejected
}

// IsInvalidInput reports whether err was caused by bad input from the caller.
func IsInvalidInput(err error) bool {
	return KindOf(err) == ErrKindInvalidInput
}

// IsPermissionDenied reports whether err is an access control failure.
func IsPermissionDenied(err error) bool {
	return KindOf(err) == ErrKindPermissionDenied
}

// IsTimeout reports whether err was caused by a deadline or context cancellation.
func IsTimeout(err error) bool {
	return KindOf(err) == ErrKindTimeout
}

// KindOf extracts the ErrKind from the outermost *Error in the chain.
func KindOf(err error) ErrKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ErrKindUnknown
}

// DriverText returns the message a user should see for err: the text of the
// innermost cause, which is the driver's own message when one is attached.
func DriverText(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		if e.Cause == nil {
			return e.Message
		}
		return DriverText(e.Cause)
	}
	return err.Error()
}
