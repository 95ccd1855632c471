package rocks

import (
	"context"
	"log/slog"
	"sync"

	"github.com/yndnr/cfkv/internal/storage"
)

// DB owns the lifecycle of one native database.
//
// A DB starts Unbuilt. Build opens the engine once and caches the handle;
// every later Build returns the same handle. There is no way back to
// Unbuilt short of creating a new DB.
type DB struct {
	opts   Options
	logger *slog.Logger

	mu       sync.Mutex
	handle   *SharedHandle
	released bool
}

var _ storage.Storage[*DB] = (*DB)(nil)

// DBOption configures a DB.
type DBOption func(*DB)

// WithLogger sets the logger used for lifecycle events and handed to the
// engine when its options carry no logger.
func WithLogger(logger *slog.Logger) DBOption {
	return func(d *DB) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// New validates opts and returns an Unbuilt DB holding a copy of them.
// A validation failure is returned as a KindInstance error wrapping the
// KindValidate cause.
func New(opts *Options, dbOpts ...DBOption) (*DB, error) {
	if opts == nil {
		return nil, instanceError("options are nil", nil)
	}
	if err := opts.Validate(); err != nil {
		return nil, instanceError(err.Error(), err)
	}

	d := &DB{
		opts:   opts.clone(),
		logger: slog.Default(),
	}
	for _, opt := range dbOpts {
		opt(d)
	}
	return d, nil
}

// SetDB injects a pre-built handle, bypassing the open path of Build.
// Built is terminal, so a nil handle is ignored. Any previously cached
// handle is not released; its owner remains responsible for it.
func (d *DB) SetDB(h *SharedHandle) *DB {
	if h == nil {
		d.logger.Warn("ignoring nil handle injection", "path", d.opts.path)
		return d
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.handle = h
	d.released = false
	return d
}

// Handle returns the cached handle, or nil if the DB has not been built.
func (d *DB) Handle() *SharedHandle {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.handle
}

// Options returns a copy of the options the DB was created with.
func (d *DB) Options() Options {
	return d.opts.clone()
}

// Build opens the engine and returns the shared handle. If the DB is
// already built the cached handle is returned and nothing is reopened.
func (d *DB) Build() (*SharedHandle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.handle != nil {
		return d.handle, nil
	}

	if d.opts.cfOpts == nil {
		return nil, instanceError("cf options was empty", nil)
	}
	if d.opts.dbOpts == nil {
		return nil, instanceError("db options was empty", nil)
	}

	// The engine may keep the options it was opened with; give it its own
	// copy so the DB's options stay untouched.
	opened := d.opts.clone()

	engine, err := openRockyard(d.opts.path, opened.dbOpts, d.opts.cfName, *opened.cfOpts, opened.cfTuned, d.logger)
	if err != nil {
		return nil, instanceError(err.Error(), err)
	}

	d.handle = NewSharedHandle(engine)
	d.logger.Info("rocks database opened",
		"path", d.opts.path,
		"column_family", d.opts.cfName)

	return d.handle, nil
}

// Instance implements storage.Storage.
func (d *DB) Instance() *DB {
	return d
}

// Connect implements storage.Storage by building the DB.
func (d *DB) Connect(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return storage.NewError(storage.KindConnection, err.Error(), err)
	}
	if _, err := d.Build(); err != nil {
		return storage.NewError(storage.KindConnection, err.Error(), err)
	}
	return nil
}

// Ping implements storage.Storage. It fails if the DB is not built or the
// configured column family cannot be resolved.
func (d *DB) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return storage.NewError(storage.KindPing, err.Error(), err)
	}

	h := d.Handle()
	if h == nil {
		return storage.NewError(storage.KindPing, "database is not built", nil)
	}
	if h.Refs() == 0 {
		return storage.NewError(storage.KindPing, "database is closed", nil)
	}
	if _, ok := h.Engine().ColumnFamily(d.opts.cfName); !ok {
		return storage.NewError(storage.KindPing, "column family "+d.opts.cfName+" not found", nil)
	}
	return nil
}

// Close implements storage.Storage. It releases the DB's reference on the
// handle; the engine closes once every Executor has been closed too.
// The DB stays Built: Build keeps returning the released handle.
func (d *DB) Close(ctx context.Context) error {
	d.mu.Lock()
	h := d.handle
	if h == nil || d.released {
		d.mu.Unlock()
		return nil
	}
	d.released = true
	d.mu.Unlock()

	if err := h.Release(); err != nil {
		return storage.NewError(storage.KindConnection, err.Error(), err)
	}
	d.logger.Info("rocks database released", "path", d.opts.path, "refs", h.Refs())
	return nil
}
