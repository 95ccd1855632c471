// Package kv defines the native engine surface driven by the storage
// adapters.
//
// An Engine is an opened embedded database; a ColumnFamily is one logical
// partition inside it. Every method is synchronous and may block on disk
// I/O, so callers that must not stall run them through a blocking pool.
package kv

import "errors"

// ErrMergeNotSupported is returned by Merge when the engine has no merge
// operator configured for the column family.
var ErrMergeNotSupported = errors.New("kv: merge operator not configured")

// Engine is an opened native storage engine.
//
// Implementations must be safe for concurrent use by multiple goroutines.
type Engine interface {
	// ColumnFamily resolves a column family by name.
	// Returns false if the family does not exist.
	ColumnFamily(name string) (ColumnFamily, bool)

	// ColumnFamilies returns the names of all column families.
	ColumnFamilies() []string

	// Close releases the engine. No method may be called afterwards.
	Close() error
}

// ColumnFamily is a handle to one column family of an Engine.
type ColumnFamily interface {
	// Name returns the column family name.
	Name() string

	// Put stores value under key.
	Put(key, value []byte) error

	// Merge records a merge operand for key.
	Merge(key, value []byte) error

	// Get looks up key. A missing key is reported with found == false and
	// a nil error.
	Get(key []byte) (value []byte, found bool, err error)

	// MultiGet looks up every key in one batched call. The result has one
	// entry per key in input order; a failure on one key does not affect
	// the others.
	MultiGet(keys [][]byte) []Lookup

	// Delete removes key. Deleting a missing key is not an error.
	Delete(key []byte) error
}

// Lookup is the result of looking up a single key.
type Lookup struct {
	Value []byte
	Found bool
	Err   error
}
