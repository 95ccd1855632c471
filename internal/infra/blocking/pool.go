package blocking

import (
	"context"
	"fmt"
	"runtime"
	"runtime/debug"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// DefaultSizeFactor scales GOMAXPROCS into the default pool size.
// Engine calls spend most of their time waiting on disk, so the pool is
// sized above the CPU count.
const DefaultSizeFactor = 4

// Pool bounds the number of blocking calls running at the same time.
//
// A Pool is safe for concurrent use and may be shared by any number of
// callers.
type Pool struct {
	sem      *semaphore.Weighted
	size     int64
	limiter  *rate.Limiter
	inflight atomic.Int64
}

// Option configures a Pool.
type Option func(*Pool)

// WithRateLimit throttles admission to perSecond calls with the given
// burst. A non-positive perSecond disables throttling.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(p *Pool) {
		if perSecond <= 0 {
			p.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		p.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// New creates a pool running at most size calls at once.
// A non-positive size selects DefaultSizeFactor * GOMAXPROCS.
func New(size int, opts ...Option) *Pool {
	if size <= 0 {
		size = DefaultSizeFactor * runtime.GOMAXPROCS(0)
	}

	p := &Pool{
		sem:  semaphore.NewWeighted(int64(size)),
		size: int64(size),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Size returns the maximum number of concurrent calls.
func (p *Pool) Size() int {
	return int(p.size)
}

// InFlight returns the number of calls currently running.
func (p *Pool) InFlight() int {
	return int(p.inflight.Load())
}

// PanicError reports a panic raised by a submitted function.
type PanicError struct {
	Value any
	Stack []byte
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("blocking: task panicked: %v", e.Value)
}

type result[T any] struct {
	value T
	err   error
}

// Do runs fn on a pool worker and waits for its result.
//
// Do returns ctx.Err() if the context ends before a slot is acquired, in
// which case fn never runs, or while fn is running, in which case fn runs
// to completion and its result is dropped. A panic inside fn is returned
// as a *PanicError.
func Do[T any](ctx context.Context, p *Pool, fn func() (T, error)) (T, error) {
	var zero T

	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return zero, err
		}
	}

	if err := p.sem.Acquire(ctx, 1); err != nil {
		return zero, err
	}

	// Buffered so the worker never blocks on an abandoned caller.
	done := make(chan result[T], 1)

	p.inflight.Add(1)
	go func() {
		defer p.sem.Release(1)
		defer p.inflight.Add(-1)

		var r result[T]
		defer func() {
			if v := recover(); v != nil {
				r = result[T]{err: &PanicError{Value: v, Stack: debug.Stack()}}
			}
			done <- r
		}()

		r.value, r.err = fn()
	}()

	select {
	case r := <-done:
		return r.value, r.err
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}
