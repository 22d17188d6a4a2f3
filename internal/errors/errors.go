// Package errors is the single import for error handling across the service.
// Wrapping goes through pkg/errors so failures logged at the edge carry the
// stack of the call that first annotated them. Matching uses the stdlib tree
// walk, which sees through both kinds of wrappers.
package errors

import (
	stderrors "errors"

	pkgerrors "github.com/pkg/errors"
)

// New returns a plain error. Use it for sentinels.
func New(text string) error {
	return stderrors.New(text)
}

// Errorf formats a new error and records the stack.
func Errorf(format string, args ...any) error {
	return pkgerrors.Errorf(format, args...)
}

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// AsType returns the first error in err's tree assignable to T.
func AsType[T error](err error) (T, bool) {
	var target T
	ok := stderrors.As(err, &target)

	return target, ok
}

// Wrap annotates err with message and a stack trace. A nil err stays nil.
func Wrap(err error, message string) error {
	return pkgerrors.Wrap(err, message)
}

// Wrapf is Wrap with a format string.
func Wrapf(err error, format string, args ...any) error {
	return pkgerrors.Wrapf(err, format, args...)
}

// WithStack records the stack without changing the message.
func WithStack(err error) error {
	return pkgerrors.WithStack(err)
}
