package badgercf

import "time"

// Config contains Badger tuning parameters for an Engine.
type Config struct {
	// Dir is the storage directory. Ignored when InMemory is set.
	Dir string

	// ColumnFamilies are created on Open when missing. The default family
	// always exists.
	ColumnFamilies []string

	// InMemory keeps all data in memory. Useful for tests.
	// Default: false
	InMemory bool

	// GCInterval is the interval between automatic value log GC runs.
	// Zero disables the GC loop.
	// Default: 10m
	GCInterval time.Duration

	// GCThreshold is the GC discard ratio threshold (0.0-1.0).
	// Default: 0.5 (rewrite a value log file when half of it is stale)
	GCThreshold float64

	// CacheSize is the block cache size in bytes.
	// Default: 64MB
	CacheSize int64

	// ValueLogFileSize is the max value log file size in bytes.
	// Default: 1GB
	ValueLogFileSize int64

	// NumMemtables is the number of memtables.
	// Default: 2
	NumMemtables int

	// NumLevelZeroTables is the number of Level 0 tables before compaction.
	// Default: 5
	NumLevelZeroTables int

	// NumLevelZeroTablesStall is the number of Level 0 tables that triggers write stall.
	// Default: 10
	NumLevelZeroTablesStall int

	// SyncWrites enables sync writes (fsync after each write).
	// Default: false
	SyncWrites bool

	// MergeRetries bounds how often a merge is retried after a
	// transaction conflict.
	// Default: 16
	MergeRetries int
}

// DefaultConfig returns the default configuration for dir.
func DefaultConfig(dir string) Config {
	return Config{
		Dir:                     dir,
		GCInterval:              10 * time.Minute,
		GCThreshold:             0.5,
		CacheSize:               64 << 20, // 64MB
		ValueLogFileSize:        1 << 30,  // 1GB
		NumMemtables:            2,
		NumLevelZeroTables:      5,
		NumLevelZeroTablesStall: 10,
		SyncWrites:              false,
		MergeRetries:            16,
	}
}
