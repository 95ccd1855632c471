package config

import "time"

// Config is the root configuration for cfkv.
type Config struct {
	Storage  StorageSection  `koanf:"storage" json:"storage" yaml:"storage"`
	Executor ExecutorSection `koanf:"executor" json:"executor" yaml:"executor"`
	Log      LogSection      `koanf:"log" json:"log" yaml:"log"`
	Metrics  MetricsSection  `koanf:"metrics" json:"metrics" yaml:"metrics"`
}

// StorageSection configures the storage engine.
type StorageSection struct {
	// Engine selects the backend: "rockyard" or "badger".
	Engine string `koanf:"engine" json:"engine" yaml:"engine"`

	DataDir      string `koanf:"data_dir" json:"data_dir" yaml:"data_dir"`
	ColumnFamily string `koanf:"column_family" json:"column_family" yaml:"column_family"`

	CreateIfMissing      bool `koanf:"create_if_missing" json:"create_if_missing" yaml:"create_if_missing"`
	WriteBufferSize      int  `koanf:"write_buffer_size" json:"write_buffer_size" yaml:"write_buffer_size"`
	MaxWriteBufferNumber int  `koanf:"max_write_buffer_number" json:"max_write_buffer_number" yaml:"max_write_buffer_number"`
	BloomBitsPerKey      int  `koanf:"bloom_bits_per_key" json:"bloom_bits_per_key" yaml:"bloom_bits_per_key"`

	// Compression is one of none, snappy, zstd, lz4.
	Compression string `koanf:"compression" json:"compression" yaml:"compression"`

	// MergeOperator is empty (merge disabled), "append" or "uint64add".
	MergeOperator  string `koanf:"merge_operator" json:"merge_operator" yaml:"merge_operator"`
	MergeDelimiter string `koanf:"merge_delimiter" json:"merge_delimiter" yaml:"merge_delimiter"`

	// ColumnFamilyWriteBufferSize overrides WriteBufferSize for the
	// configured column family when > 0.
	ColumnFamilyWriteBufferSize int `koanf:"cf_write_buffer_size" json:"cf_write_buffer_size" yaml:"cf_write_buffer_size"`

	Badger BadgerSection `koanf:"badger" json:"badger" yaml:"badger"`
}

// BadgerSection configures the badger engine.
type BadgerSection struct {
	InMemory         bool          `koanf:"in_memory" json:"in_memory" yaml:"in_memory"`
	GCInterval       time.Duration `koanf:"gc_interval" json:"gc_interval" yaml:"gc_interval"`
	GCThreshold      float64       `koanf:"gc_threshold" json:"gc_threshold" yaml:"gc_threshold"`
	CacheSize        int64         `koanf:"cache_size" json:"cache_size" yaml:"cache_size"`
	ValueLogFileSize int64         `koanf:"value_log_file_size" json:"value_log_file_size" yaml:"value_log_file_size"`
	SyncWrites       bool          `koanf:"sync_writes" json:"sync_writes" yaml:"sync_writes"`
}

// ExecutorSection configures the blocking worker pool.
type ExecutorSection struct {
	// Workers bounds concurrent engine calls. 0 selects 4 * GOMAXPROCS.
	Workers int `koanf:"workers" json:"workers" yaml:"workers"`

	// RateLimit throttles instruction admission per second. 0 disables it.
	RateLimit float64 `koanf:"rate_limit" json:"rate_limit" yaml:"rate_limit"`
	Burst     int     `koanf:"burst" json:"burst" yaml:"burst"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level" json:"level" yaml:"level"`
	Format string `koanf:"format" json:"format" yaml:"format"`
}

// MetricsSection configures metric export.
type MetricsSection struct {
	// File, when set, receives the metrics in Prometheus text format when
	// a command finishes.
	File string `koanf:"file" json:"file" yaml:"file"`
}
