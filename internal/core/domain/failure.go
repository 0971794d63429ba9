package domain

import (
	"errors"
	"fmt"
)

// Failure is an expected, user-actionable error. Only its message chain is
// shown to the user, and it maps to exit code 1.
type Failure struct {
	kind  error
	msg   string
	cause error
}

// NewFailure creates a Failure of the given kind with a formatted message.
func NewFailure(kind error, format string, args ...any) *Failure {
	return &Failure{
		kind: kind,
		msg:  fmt.Sprintf(format, args...),
	}
}

// WithCause returns a copy of f that wraps cause.
func (f *Failure) WithCause(cause error) *Failure {
	return &Failure{
		kind:  f.kind,
		msg:   f.msg,
		cause: cause,
	}
}

// Error implements error.
func (f *Failure) Error() string {
	if f.cause == nil {
		return f.msg
	}
	return f.msg + ": " + f.cause.Error()
}

// Message returns the message without the cause chain.
func (f *Failure) Message() string {
	return f.msg
}

// Unwrap returns the cause.
func (f *Failure) Unwrap() error {
	return f.cause
}

// Is reports whether target is ErrSoftFailure or the kind of this failure.
func (f *Failure) Is(target error) bool {
	return target == ErrSoftFailure || (f.kind != nil && target == f.kind)
}

// IsSoftFailure reports whether err contains a Failure anywhere in its chain.
func IsSoftFailure(err error) bool {
	return errors.Is(err, ErrSoftFailure)
}
