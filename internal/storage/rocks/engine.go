package rocks

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/aalhour/rockyardkv"

	"github.com/yndnr/cfkv/internal/storage/kv"
)

// rockyardEngine adapts a rockyardkv database to kv.Engine.
type rockyardEngine struct {
	db rockyardkv.DB
}

// openRockyard opens the database at path and makes sure cfName exists,
// creating it with cfOpts when it does not. cfOpts is unused for a family
// that already exists; tuned reports whether the caller changed it.
func openRockyard(path string, dbOpts *rockyardkv.Options, cfName string, cfOpts rockyardkv.ColumnFamilyOptions, tuned bool, logger *slog.Logger) (*rockyardEngine, error) {
	if dbOpts.Logger == nil {
		dbOpts.Logger = &rockyardLogger{logger: logger}
	}

	db, err := rockyardkv.Open(path, dbOpts)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	if h := db.GetColumnFamily(cfName); h == nil {
		if _, err := db.CreateColumnFamily(cfOpts, cfName); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("create column family %q: %w", cfName, err)
		}
		logger.Info("column family created", "path", path, "column_family", cfName)
	} else if tuned {
		logger.Warn("column family exists, cf options not applied",
			"path", path, "column_family", cfName)
	}

	return &rockyardEngine{db: db}, nil
}

// ColumnFamily implements kv.Engine.
func (e *rockyardEngine) ColumnFamily(name string) (kv.ColumnFamily, bool) {
	h := e.db.GetColumnFamily(name)
	if h == nil || !h.IsValid() {
		return nil, false
	}
	return &rockyardCF{db: e.db, handle: h}, true
}

// ColumnFamilies implements kv.Engine.
func (e *rockyardEngine) ColumnFamilies() []string {
	return e.db.ListColumnFamilies()
}

// Close implements kv.Engine.
func (e *rockyardEngine) Close() error {
	return e.db.Close()
}

// rockyardCF adapts a rockyardkv column family handle to kv.ColumnFamily.
type rockyardCF struct {
	db     rockyardkv.DB
	handle rockyardkv.ColumnFamilyHandle
}

func (c *rockyardCF) Name() string {
	return c.handle.Name()
}

func (c *rockyardCF) Put(key, value []byte) error {
	return c.db.PutCF(nil, c.handle, key, value)
}

func (c *rockyardCF) Merge(key, value []byte) error {
	err := c.db.MergeCF(nil, c.handle, key, value)
	if errors.Is(err, rockyardkv.ErrMergeOperatorNotSet) {
		return fmt.Errorf("%w: %w", kv.ErrMergeNotSupported, err)
	}
	return err
}

func (c *rockyardCF) Get(key []byte) ([]byte, bool, error) {
	value, err := c.db.GetCF(nil, c.handle, key)
	if err != nil {
		if errors.Is(err, rockyardkv.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return value, true, nil
}

// MultiGet uses the engine's batched lookup for the default column family
// and per-key lookups for the others, which the engine does not batch.
func (c *rockyardCF) MultiGet(keys [][]byte) []kv.Lookup {
	out := make([]kv.Lookup, len(keys))

	if c.handle.ID() == rockyardkv.DefaultColumnFamilyID {
		values, errs := c.db.MultiGet(nil, keys)
		for i := range keys {
			var err error
			if i < len(errs) {
				err = errs[i]
			}
			switch {
			case err == nil:
				out[i] = kv.Lookup{Value: values[i], Found: true}
			case errors.Is(err, rockyardkv.ErrNotFound):
				out[i] = kv.Lookup{}
			default:
				out[i] = kv.Lookup{Err: err}
			}
		}
		return out
	}

	for i, key := range keys {
		value, found, err := c.Get(key)
		out[i] = kv.Lookup{Value: value, Found: found, Err: err}
	}
	return out
}

func (c *rockyardCF) Delete(key []byte) error {
	return c.db.DeleteCF(nil, c.handle, key)
}

// rockyardLogger adapts slog.Logger to rockyardkv's Logger interface.
type rockyardLogger struct {
	logger *slog.Logger
}

func (l *rockyardLogger) Errorf(format string, args ...any) {
	l.logger.Error(fmt.Sprintf(format, args...), "engine", "rockyardkv")
}

func (l *rockyardLogger) Warnf(format string, args ...any) {
	l.logger.Warn(fmt.Sprintf(format, args...), "engine", "rockyardkv")
}

func (l *rockyardLogger) Infof(format string, args ...any) {
	l.logger.Info(fmt.Sprintf(format, args...), "engine", "rockyardkv")
}

func (l *rockyardLogger) Debugf(format string, args ...any) {
	l.logger.Debug(fmt.Sprintf(format, args...), "engine", "rockyardkv")
}

// Fatalf is logged at error level. The engine itself moves to a stopped
// state after calling it.
func (l *rockyardLogger) Fatalf(format string, args ...any) {
	l.logger.Error(fmt.Sprintf(format, args...), "engine", "rockyardkv", "fatal", true)
}
