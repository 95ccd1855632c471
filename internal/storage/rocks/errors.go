package rocks

import (
	"errors"
	"fmt"
)

// Kind classifies an Error by the phase that produced it.
type Kind int

const (
	// KindValidate errors come from Options.Validate, before any I/O.
	KindValidate Kind = iota + 1
	// KindInstance errors come from New or Build.
	KindInstance
	// KindExecutor errors come from a single Exec call or a single key of
	// a batched lookup.
	KindExecutor
)

// String returns the error prefix for the kind.
func (k Kind) String() string {
	switch k {
	case KindValidate:
		return "validate error"
	case KindInstance:
		return "instance error"
	case KindExecutor:
		return "executor error"
	default:
		return "unknown error"
	}
}

// Error is the error type returned by every operation in this package.
type Error struct {
	Kind Kind
	Msg  string
	Err  error // underlying cause, if any
}

// Sentinels for errors.Is. They match any Error of the same kind.
var (
	ErrValidate = &Error{Kind: KindValidate}
	ErrInstance = &Error{Kind: KindInstance}
	ErrExecutor = &Error{Kind: KindExecutor}
)

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

func validateError(msg string) *Error {
	return &Error{Kind: KindValidate, Msg: msg}
}

func instanceError(msg string, cause error) *Error {
	return &Error{Kind: KindInstance, Msg: msg, Err: cause}
}

// executorError wraps cause as a KindExecutor error carrying its message.
// An existing executor error is returned unchanged.
func executorError(cause error) *Error {
	var e *Error
	if errors.As(cause, &e) && e.Kind == KindExecutor {
		return e
	}
	return &Error{Kind: KindExecutor, Msg: cause.Error(), Err: cause}
}

// IsKind reports whether err is an *Error of kind k.
func IsKind(err error, k Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == k
	}
	return false
}
