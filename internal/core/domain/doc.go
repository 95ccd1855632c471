// Package domain defines the building blocks of cfkv domain models.
//
// Domain models are plain values without IO dependencies. This package
// contains:
//
//   - Entity: identity and self-validation contract
//   - Repository: persistence contract keyed by entity id
//   - Event, Observer, Publisher: in-process domain events
//   - BaseError: domain error kinds shared by all of the above
//
// Storage-backed repositories live in internal/core/repository.
package domain
