package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a BaseError.
type ErrorKind int

const (
	KindToJSON ErrorKind = iota + 1
	KindValidate
	KindPublish
	KindEmit
	KindHandle
	KindRepository
	KindNotFound
)

// BaseError is the error type returned by domain models and repositories.
type BaseError struct {
	Kind    ErrorKind
	Message string
	Event   string // Event name, set for KindHandle
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *BaseError) Error() string {
	switch e.Kind {
	case KindToJSON:
		return fmt.Sprintf("unable to convert to json: %s", e.Message)
	case KindValidate:
		return fmt.Sprintf("validation failed: %s", e.Message)
	case KindPublish:
		return fmt.Sprintf("unable to publish an event: %s", e.Message)
	case KindEmit:
		return fmt.Sprintf("unable to emit event: %s", e.Message)
	case KindHandle:
		return fmt.Sprintf("unable to handle an event: %s, error: %s", e.Event, e.Message)
	case KindRepository, KindNotFound:
		return fmt.Sprintf("repository error: %s", e.Message)
	default:
		return e.Message
	}
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *BaseError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is() support. Errors of the same kind match.
func (e *BaseError) Is(target error) bool {
	t, ok := target.(*BaseError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// NewError creates a BaseError of the given kind.
func NewError(kind ErrorKind, message string) *BaseError {
	return &BaseError{
		Kind:    kind,
		Message: message,
	}
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *BaseError) WithCause(cause error) *BaseError {
	return &BaseError{
		Kind:    e.Kind,
		Message: e.Message,
		Event:   e.Event,
		Cause:   cause,
	}
}

// HandleError reports an observer failing on event.
func HandleError(event string, cause error) *BaseError {
	return &BaseError{
		Kind:    KindHandle,
		Message: cause.Error(),
		Event:   event,
		Cause:   cause,
	}
}

// Sentinels for errors.Is.
var (
	ErrToJSON     = NewError(KindToJSON, "")
	ErrValidate   = NewError(KindValidate, "")
	ErrPublish    = NewError(KindPublish, "")
	ErrEmit       = NewError(KindEmit, "")
	ErrHandle     = NewError(KindHandle, "")
	ErrRepository = NewError(KindRepository, "")

	// ErrEntityNotFound is returned by repositories for absent ids. It has
	// its own kind, so it does not match ErrRepository.
	ErrEntityNotFound = NewError(KindNotFound, "entity not found")
)

// IsKind reports whether err is a BaseError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var be *BaseError
	if errors.As(err, &be) {
		return be.Kind == kind
	}
	return false
}

// IsNotFound reports whether err means the entity does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEntityNotFound)
}
