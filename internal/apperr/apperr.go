// Package apperr defines the error taxonomy shared by the service layer
// and the HTTP boundary. Services return *Error values; the handlers map
// each Kind to a status code in exactly one place.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	// KindInternal is the fallback for anything unexpected (storage
	// failures, programming errors). Rendered as a generic 500.
	KindInternal Kind = iota
	// KindNotFound covers both "entity absent" and "entity not owned by
	// the caller" - the two are deliberately indistinguishable so that
	// lookups never leak the existence of other users' resources.
	KindNotFound
	// KindValidation is malformed or out-of-range input.
	KindValidation
	// KindConflict is a business-rule violation: insufficient stock,
	// empty cart at checkout, illegal status transition, duplicate name.
	KindConflict
	// KindExternal is a failure talking to the payment processor,
	// including a webhook signature that does not verify.
	KindExternal
)

type Error struct {
	kind Kind
	msg  string
	err  error // wrapped cause, may be nil
}

func (e *Error) Error() string {
	if e.err != nil {
		return e.msg + ": " + e.err.Error()
	}
	return e.msg
}

func (e *Error) Unwrap() error { return e.err }

func (e *Error) Kind() Kind { return e.kind }

func NotFound(format string, args ...any) *Error {
	return &Error{kind: KindNotFound, msg: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...any) *Error {
	return &Error{kind: KindValidation, msg: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...any) *Error {
	return &Error{kind: KindConflict, msg: fmt.Sprintf(format, args...)}
}

func External(msg string, cause error) *Error {
	return &Error{kind: KindExternal, msg: msg, err: cause}
}

func Internal(msg string, cause error) *Error {
	return &Error{kind: KindInternal, msg: msg, err: cause}
}

// KindOf extracts the Kind from err, unwrapping as needed.
// Non-taxonomy errors report KindInternal.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
