package config

import "time"

// Engine names.
const (
	EngineRockyard = "rockyard"
	EngineBadger   = "badger"
)

// Merge operator names.
const (
	MergeNone      = ""
	MergeAppend    = "append"
	MergeUInt64Add = "uint64add"
)

// Default configuration values.
const (
	DefaultEngine       = EngineRockyard
	DefaultDataDir      = "./cfkv-data"
	DefaultColumnFamily = "default"

	DefaultWriteBufferSize      = 4 << 20 // 4MB
	DefaultMaxWriteBufferNumber = 2
	DefaultBloomBitsPerKey      = 10
	DefaultCompression          = "snappy"
	DefaultMergeDelimiter       = ","

	DefaultBadgerGCInterval  = 10 * time.Minute
	DefaultBadgerGCThreshold = 0.5
	DefaultBadgerCacheSize   = 64 << 20 // 64MB

	DefaultLogLevel  = "warn"
	DefaultLogFormat = "text"
)

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Storage: StorageSection{
			Engine:               DefaultEngine,
			DataDir:              DefaultDataDir,
			ColumnFamily:         DefaultColumnFamily,
			CreateIfMissing:      true,
			WriteBufferSize:      DefaultWriteBufferSize,
			MaxWriteBufferNumber: DefaultMaxWriteBufferNumber,
			BloomBitsPerKey:      DefaultBloomBitsPerKey,
			Compression:          DefaultCompression,
			MergeOperator:        MergeNone,
			MergeDelimiter:       DefaultMergeDelimiter,
			Badger: BadgerSection{
				GCInterval:  DefaultBadgerGCInterval,
				GCThreshold: DefaultBadgerGCThreshold,
				CacheSize:   DefaultBadgerCacheSize,
			},
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
