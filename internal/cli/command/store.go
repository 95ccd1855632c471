package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/cfkv/internal/config"
	"github.com/yndnr/cfkv/internal/core/domain"
	"github.com/yndnr/cfkv/internal/storage/badgercf"
	"github.com/yndnr/cfkv/internal/storage/rocks"
	"github.com/yndnr/cfkv/internal/telemetry/logger"
	"github.com/yndnr/cfkv/internal/telemetry/metric"
)

// memoryPath stands in for the database path of an in-memory badger
// store, which has no directory.
const memoryPath = ":memory:"

// ErrGCNotSupported is returned by Store.GC on engines without value log
// garbage collection.
var ErrGCNotSupported = errors.New("gc is only supported by the badger engine")

// Store is an opened database with an executor bound to the configured
// column family.
type Store struct {
	cfg     *config.Config
	db      *rocks.DB
	exec    *rocks.Executor
	badger  *badgercf.Engine
	metrics *metric.Registry
	log     logger.Logger
}

// OpenStore opens the engine selected by cfg and binds an executor to
// cfg.Storage.ColumnFamily.
func OpenStore(ctx context.Context, cfg *config.Config, log logger.Logger) (*Store, error) {
	section := cfg.Storage
	if section.DataDir == "" && section.Engine == config.EngineBadger && section.Badger.InMemory {
		section.DataDir = memoryPath
	}

	opts, err := section.Options()
	if err != nil {
		return nil, err
	}
	db, err := rocks.New(opts, rocks.WithLogger(log.Slog()))
	if err != nil {
		return nil, err
	}

	s := &Store{
		cfg:     cfg,
		db:      db,
		metrics: metric.NewRegistry(),
		log:     log,
	}

	if section.Engine == config.EngineBadger {
		bcfg, bopts := section.BadgerConfig()
		bopts = append(bopts, badgercf.WithLogger(log.Slog()))

		engine, err := badgercf.Open(bcfg, bopts...)
		if err != nil {
			return nil, err
		}
		if err := engine.RegisterMetrics(s.metrics.Registerer()); err != nil {
			_ = engine.Close()
			return nil, err
		}
		s.badger = engine
		db.SetDB(rocks.NewSharedHandle(engine))
	}

	if err := db.Connect(ctx); err != nil {
		if s.badger != nil {
			_ = s.badger.Close()
		}
		return nil, err
	}

	s.exec = rocks.NewExecutor(db.Handle(), section.ColumnFamily,
		rocks.WithPool(cfg.Executor.NewPool()),
		rocks.WithMetrics(s.metrics),
		rocks.WithExecutorLogger(log.Slog()))

	if err := db.Ping(ctx); err != nil {
		_ = s.Close(ctx)
		return nil, err
	}

	log.Debug("store opened",
		"engine", section.Engine,
		"path", section.DataDir,
		"column_family", section.ColumnFamily)

	return s, nil
}

// Exec runs ins on the store's executor, tagging the call with a fresh
// operation id for logging.
func (s *Store) Exec(ctx context.Context, ins rocks.Instruction) (rocks.Outcome, error) {
	ctx = logger.WithOperationID(ctx, domain.NewID())
	out, err := s.exec.Exec(ctx, ins)
	if err != nil {
		logger.L(ctx).Debug("instruction failed", "instruction", ins.Name(), "error", err)
	}
	return out, err
}

// ColumnFamily returns the bound column family.
func (s *Store) ColumnFamily() string {
	return s.exec.ColumnFamily()
}

// ColumnFamilies lists the column families of the open engine.
func (s *Store) ColumnFamilies() []string {
	h := s.db.Handle()
	if h == nil {
		return nil
	}
	return h.Engine().ColumnFamilies()
}

// GC runs badger value log garbage collection.
func (s *Store) GC() (uint64, error) {
	if s.badger == nil {
		return 0, ErrGCNotSupported
	}
	return s.badger.GC()
}

// Stats returns badger storage statistics; ok is false on other engines.
func (s *Store) Stats() (stats badgercf.Stats, ok bool) {
	if s.badger == nil {
		return badgercf.Stats{}, false
	}
	return s.badger.Stats(), true
}

// Metrics returns the store's metric registry.
func (s *Store) Metrics() *metric.Registry {
	return s.metrics
}

// Close releases the executor and the database, then writes the metrics
// file when one is configured.
func (s *Store) Close(ctx context.Context) error {
	var errs []error
	if s.exec != nil {
		if err := s.exec.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := s.db.Close(ctx); err != nil {
		errs = append(errs, err)
	}
	if path := s.cfg.Metrics.File; path != "" {
		if err := s.metrics.WriteTextfile(path); err != nil {
			errs = append(errs, fmt.Errorf("write metrics: %w", err))
		}
	}
	return errors.Join(errs...)
}

// withStore runs fn with the shell's store when there is one, otherwise
// with a store opened for this command and closed afterwards.
func withStore(c *cli.Context, fn func(*Store) error) error {
	if s, ok := c.App.Metadata[metaStore].(*Store); ok && s != nil {
		return fn(s)
	}

	cfg, _, log, err := loadConfig(c)
	if err != nil {
		return err
	}
	s, err := OpenStore(c.Context, cfg, log)
	if err != nil {
		return err
	}

	runErr := fn(s)
	closeErr := s.Close(context.Background())
	return errors.Join(runErr, closeErr)
}
