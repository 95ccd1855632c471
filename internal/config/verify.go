package config

import (
	"errors"
	"fmt"
	"strings"
)

// Verify validates the configuration.
func Verify(cfg *Config) error {
	if err := verifyStorage(&cfg.Storage); err != nil {
		return err
	}
	if err := verifyExecutor(&cfg.Executor); err != nil {
		return err
	}
	if err := verifyLog(&cfg.Log); err != nil {
		return err
	}
	return nil
}

func verifyStorage(cfg *StorageSection) error {
	switch cfg.Engine {
	case EngineRockyard, EngineBadger:
	default:
		return fmt.Errorf("storage.engine must be %q or %q, got %q", EngineRockyard, EngineBadger, cfg.Engine)
	}

	if cfg.DataDir == "" && !(cfg.Engine == EngineBadger && cfg.Badger.InMemory) {
		return errors.New("storage.data_dir is required")
	}
	if cfg.ColumnFamily == "" {
		return errors.New("storage.column_family is required")
	}
	if strings.ContainsRune(cfg.ColumnFamily, 0) {
		return errors.New("storage.column_family must not contain NUL")
	}

	if _, err := parseCompression(cfg.Compression); err != nil {
		return err
	}

	switch cfg.MergeOperator {
	case MergeNone, MergeAppend:
	case MergeUInt64Add:
		if cfg.Engine == EngineBadger {
			return errors.New("storage.merge_operator uint64add is not supported by the badger engine")
		}
	default:
		return fmt.Errorf("storage.merge_operator must be empty, %q or %q, got %q", MergeAppend, MergeUInt64Add, cfg.MergeOperator)
	}

	if cfg.WriteBufferSize < 0 || cfg.ColumnFamilyWriteBufferSize < 0 {
		return errors.New("storage write buffer sizes must not be negative")
	}
	if cfg.Badger.GCThreshold <= 0 || cfg.Badger.GCThreshold >= 1 {
		return errors.New("storage.badger.gc_threshold must be in (0, 1)")
	}

	return nil
}

func verifyExecutor(cfg *ExecutorSection) error {
	if cfg.Workers < 0 {
		return errors.New("executor.workers must not be negative")
	}
	if cfg.RateLimit < 0 {
		return errors.New("executor.rate_limit must not be negative")
	}
	if cfg.RateLimit > 0 && cfg.Burst < 1 {
		return errors.New("executor.burst must be at least 1 when rate_limit is set")
	}
	return nil
}

func verifyLog(cfg *LogSection) error {
	switch strings.ToLower(cfg.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn or error, got %q", cfg.Level)
	}
	switch cfg.Format {
	case "json", "text":
	default:
		return fmt.Errorf("log.format must be json or text, got %q", cfg.Format)
	}
	return nil
}
