package domain

import (
	"context"
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Entity is a domain object with a stable identity.
type Entity interface {
	// UID returns the entity id.
	UID() string

	// Validate checks the entity's own invariants.
	Validate() error
}

// Repository persists entities of type E by id.
type Repository[E Entity] interface {
	FindByUID(ctx context.Context, uid string) (E, error)
	Save(ctx context.Context, entity E) error
	Remove(ctx context.Context, uid string) error
}

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// NewID returns a new lexicographically sortable id.
func NewID() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

// ParseID checks that id was produced by NewID.
func ParseID(id string) error {
	if _, err := ulid.ParseStrict(id); err != nil {
		return NewError(KindValidate, "invalid id "+id).WithCause(err)
	}
	return nil
}
