// Package ncerrors defines the discriminated error kinds produced by the
// netconf packages. None of them unwind control flow implicitly; every
// operation that can fail returns one of these as a plain error value.
package ncerrors

import (
	"fmt"

	stderrors "errors"

	"github.com/pkg/errors"
)

// Kind discriminates the category of a netconf failure.
type Kind string

// The error kinds a netconf operation can report.
const (
	InvalidArgument   Kind = "invalid-argument"
	AllocationFailed  Kind = "allocation-failed"
	MalformedFraming  Kind = "malformed-framing"
	MalformedXML      Kind = "malformed-xml"
	VersionMismatch   Kind = "version-mismatch"
	CapabilityMissing Kind = "capability-missing"
	TransportError    Kind = "transport-error"
	TransportEOF      Kind = "transport-eof"
	AuthFailed        Kind = "authentication-failed"
	Unauthorized      Kind = "unauthorized"
	Timeout           Kind = "timeout"
	SchemaMissing     Kind = "schema-missing"
	SessionClosed     Kind = "session-closed"
	Busy              Kind = "busy"
)

// Error wraps a Kind with context and, optionally, an underlying cause.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Cause   error
}

// New creates an Error of the given kind with a formatted message.
func New(kind Kind, op, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Op: op, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error of the given kind wrapping cause, recording a stack
// trace via github.com/pkg/errors the way the rest of this module does.
func Wrap(kind Kind, op string, cause error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Op: op, Message: fmt.Sprintf(format, args...), Cause: errors.WithStack(cause)}
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("netconf %s: %s: %s: %v", e.Op, e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("netconf %s: %s: %s", e.Op, e.Kind, e.Message)
}

// Unwrap allows errors.Is/errors.As to reach the underlying cause.
func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether target is an *Error with the same Kind and no Op or
// Message set, so `errors.Is(err, &ncerrors.Error{Kind: ncerrors.SessionClosed})`
// matches any error of that kind. IsKind does the same check given only a Kind.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return other.Kind == e.Kind && other.Message == "" && other.Op == ""
}

// IsKind reports whether err is (or wraps) an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
