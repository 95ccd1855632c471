// Package storage defines the lifecycle contract shared by storage
// backends and the errors their Connect and Ping return.
//
// Engine adapters live in subpackages:
//
//   - kv: the native engine surface (column families, lookups)
//   - rocks: rockyardkv-backed database, shared handle and executor
//   - badgercf: badger-backed engine with prefix column families
package storage

import (
	"context"
	"fmt"
)

// Storage is implemented by every storage backend.
//
// It is designed to be consumed by repository-pattern persistence layers.
type Storage[T any] interface {
	// Instance returns the backend object.
	Instance() T

	// Connect establishes the connection or opens the engine.
	Connect(ctx context.Context) error

	// Ping checks that the backend is still usable.
	Ping(ctx context.Context) error

	// Close releases the backend.
	Close(ctx context.Context) error
}

// Kind classifies a storage Error.
type Kind int

const (
	KindConnection Kind = iota + 1
	KindPing
)

// String returns the error prefix of the kind.
func (k Kind) String() string {
	switch k {
	case KindConnection:
		return "storage connection error"
	case KindPing:
		return "storage ping error"
	default:
		return "storage error"
	}
}

// Error is a storage lifecycle error.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

// Sentinels for errors.Is, matching any Error of the same kind.
var (
	ErrConnection = &Error{Kind: KindConnection}
	ErrPing       = &Error{Kind: KindPing}
)

// NewError creates an Error of kind k.
func NewError(k Kind, msg string, cause error) *Error {
	return &Error{Kind: k, Msg: msg, Err: cause}
}

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
