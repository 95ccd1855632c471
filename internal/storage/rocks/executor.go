package rocks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/yndnr/cfkv/internal/infra/blocking"
	"github.com/yndnr/cfkv/internal/storage/kv"
	"github.com/yndnr/cfkv/internal/telemetry/metric"
)

var (
	defaultPoolOnce sync.Once
	defaultPool     *blocking.Pool
)

// DefaultPool returns the process-wide pool used by executors created
// without WithPool.
func DefaultPool() *blocking.Pool {
	defaultPoolOnce.Do(func() {
		defaultPool = blocking.New(0)
	})
	return defaultPool
}

// Executor runs instructions against one column family of a shared
// handle. It holds a reference on the handle until Close.
//
// Exec may be called concurrently.
type Executor struct {
	handle     *SharedHandle
	acquireErr error
	cfName     string

	pool    *blocking.Pool
	metrics *metric.Registry
	logger  *slog.Logger

	// mu orders the closed check in Exec against Close, so no call is
	// added to inflight after Close starts waiting on it.
	mu        sync.RWMutex
	closed    bool
	inflight  sync.WaitGroup
	closeOnce sync.Once
	closeErr  error
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithPool runs engine calls on p instead of DefaultPool.
func WithPool(p *blocking.Pool) ExecutorOption {
	return func(e *Executor) {
		if p != nil {
			e.pool = p
		}
	}
}

// WithMetrics records instruction metrics in r.
func WithMetrics(r *metric.Registry) ExecutorOption {
	return func(e *Executor) {
		e.metrics = r
	}
}

// WithExecutorLogger sets the logger for per-instruction debug events.
func WithExecutorLogger(logger *slog.Logger) ExecutorOption {
	return func(e *Executor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewExecutor binds h and cfName. A nil h is accepted; every Exec on such
// an executor fails with "missing database instance".
func NewExecutor(h *SharedHandle, cfName string, opts ...ExecutorOption) *Executor {
	e := &Executor{
		handle: h,
		cfName: cfName,
		pool:   DefaultPool(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}

	if h != nil {
		e.acquireErr = h.Acquire()
	}
	return e
}

// ColumnFamily returns the name of the bound column family.
func (e *Executor) ColumnFamily() string {
	return e.cfName
}

// Exec runs ins on a pool worker and returns its outcome.
//
// Every failure is a KindExecutor *Error. For MultiGetCf a failure on one
// key is reported in that key's Result and Exec itself succeeds.
func (e *Executor) Exec(ctx context.Context, ins Instruction) (Outcome, error) {
	if e.handle == nil {
		return nil, executorError(errors.New("missing database instance"))
	}
	if e.acquireErr != nil {
		return nil, executorError(e.acquireErr)
	}
	if ins == nil {
		return nil, executorError(errors.New("instruction is nil"))
	}

	e.mu.RLock()
	if e.closed {
		e.mu.RUnlock()
		return nil, executorError(errors.New("executor is closed"))
	}
	e.inflight.Add(1)
	e.mu.RUnlock()

	// Whoever claims first marks the call done: the worker once the engine
	// call returns, or Exec if the worker never got to start it.
	var claimed atomic.Bool
	defer func() {
		if claimed.CompareAndSwap(false, true) {
			e.inflight.Done()
		}
	}()

	if e.metrics != nil {
		e.metrics.IncInFlight()
		defer e.metrics.DecInFlight()
	}
	start := time.Now()

	out, err := blocking.Do(ctx, e.pool, func() (Outcome, error) {
		if !claimed.CompareAndSwap(false, true) {
			return nil, context.Canceled
		}
		defer e.inflight.Done()

		cf, ok := e.handle.Engine().ColumnFamily(e.cfName)
		if !ok {
			return nil, executorError(errors.New("cf handler failed"))
		}
		return e.dispatch(cf, ins)
	})
	if err != nil {
		err = executorError(err)
	}

	if e.metrics != nil {
		e.metrics.ObserveInstruction(ins.Name(), err, time.Since(start))
	}
	e.logger.Debug("instruction executed",
		"instruction", ins.Name(),
		"column_family", e.cfName,
		"duration", time.Since(start),
		"error", err)

	if err != nil {
		return nil, err
	}
	return out, nil
}

func (e *Executor) dispatch(cf kv.ColumnFamily, ins Instruction) (Outcome, error) {
	switch in := ins.(type) {
	case SaveCf:
		if err := cf.Put([]byte(in.Key), in.Value); err != nil {
			return nil, err
		}
		return None{}, nil

	case MergeCf:
		if err := cf.Merge([]byte(in.Key), in.Value); err != nil {
			return nil, err
		}
		return None{}, nil

	case GetCf:
		value, found, err := cf.Get([]byte(in.Key))
		if err != nil {
			return nil, err
		}
		return SingleByte{Value: value, Found: found}, nil

	case MultiGetCf:
		keys := make([][]byte, len(in.Keys))
		for i, k := range in.Keys {
			keys[i] = []byte(k)
		}

		lookups := cf.MultiGet(keys)
		if len(lookups) != len(keys) {
			return nil, fmt.Errorf("batched lookup returned %d results for %d keys", len(lookups), len(keys))
		}

		values := make([]Result, len(lookups))
		failed := 0
		for i, l := range lookups {
			if l.Err != nil {
				values[i] = Result{Err: executorError(l.Err)}
				failed++
				continue
			}
			values[i] = Result{Value: l.Value, Found: l.Found}
		}
		if e.metrics != nil {
			e.metrics.ObserveMultiGet(len(keys), failed)
		}
		return MultiBytes{Values: values}, nil

	case RemoveCf:
		if err := cf.Delete([]byte(in.Key)); err != nil {
			return nil, err
		}
		return None{}, nil

	default:
		return nil, fmt.Errorf("unsupported instruction %T", ins)
	}
}

// Close rejects new calls, waits for engine calls already running, then
// releases the executor's reference on the handle. Closing more than once
// returns the first result.
func (e *Executor) Close() error {
	e.closeOnce.Do(func() {
		e.mu.Lock()
		e.closed = true
		e.mu.Unlock()
		e.inflight.Wait()

		if e.handle == nil || e.acquireErr != nil {
			return
		}
		e.closeErr = e.handle.Release()
	})
	return e.closeErr
}
