package rocks

import (
	"errors"
	"sync"

	"github.com/yndnr/cfkv/internal/storage/kv"
)

// ErrHandleReleased is returned when acquiring a handle whose engine has
// already been closed.
var ErrHandleReleased = errors.New("rocks: handle released")

// SharedHandle is a reference-counted owner of an opened engine.
//
// The handle starts with one reference, held by whoever created it
// (normally a DB). Each Executor acquires its own reference and releases
// it on Close. The engine is closed when the last reference is released.
type SharedHandle struct {
	engine kv.Engine

	mu       sync.Mutex
	refs     int
	closeErr error
}

// NewSharedHandle wraps engine in a handle holding one reference.
func NewSharedHandle(engine kv.Engine) *SharedHandle {
	return &SharedHandle{engine: engine, refs: 1}
}

// Engine returns the underlying engine.
func (h *SharedHandle) Engine() kv.Engine {
	return h.engine
}

// Refs returns the current reference count.
func (h *SharedHandle) Refs() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.refs
}

// Acquire adds a reference. It fails once the engine has been closed.
func (h *SharedHandle) Acquire() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.refs == 0 {
		return ErrHandleReleased
	}
	h.refs++
	return nil
}

// Release drops a reference and closes the engine when it was the last
// one. Releasing an already closed handle returns the close result again.
func (h *SharedHandle) Release() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.refs == 0 {
		return h.closeErr
	}

	h.refs--
	if h.refs == 0 {
		h.closeErr = h.engine.Close()
	}
	return h.closeErr
}
