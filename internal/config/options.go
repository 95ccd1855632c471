package config

import (
	"fmt"
	"strings"

	"github.com/aalhour/rockyardkv"

	"github.com/yndnr/cfkv/internal/infra/blocking"
	"github.com/yndnr/cfkv/internal/storage/badgercf"
	"github.com/yndnr/cfkv/internal/storage/rocks"
)

func parseCompression(name string) (rockyardkv.CompressionType, error) {
	switch strings.ToLower(name) {
	case "", "none":
		return rockyardkv.CompressionNone, nil
	case "snappy":
		return rockyardkv.CompressionSnappy, nil
	case "zstd":
		return rockyardkv.CompressionZstd, nil
	case "lz4":
		return rockyardkv.CompressionLZ4, nil
	default:
		return rockyardkv.CompressionNone, fmt.Errorf("storage.compression must be none, snappy, zstd or lz4, got %q", name)
	}
}

// Options builds rocks options from the storage section: engine defaults
// first, then the configured tuning on top.
func (s *StorageSection) Options() (*rocks.Options, error) {
	compression, err := parseCompression(s.Compression)
	if err != nil {
		return nil, err
	}

	opts := rocks.NewOptions(s.DataDir, s.ColumnFamily).BuildDefaultOpts()

	opts.SetDBOpts(func(o *rockyardkv.Options) {
		o.CreateIfMissing = s.CreateIfMissing
		o.Compression = compression
		if s.WriteBufferSize > 0 {
			o.WriteBufferSize = s.WriteBufferSize
		}
		if s.MaxWriteBufferNumber > 0 {
			o.MaxWriteBufferNumber = s.MaxWriteBufferNumber
		}
		if s.BloomBitsPerKey > 0 {
			o.BloomFilterBitsPerKey = s.BloomBitsPerKey
		}

		switch s.MergeOperator {
		case MergeAppend:
			o.MergeOperator = &rockyardkv.StringAppendOperator{Delimiter: s.MergeDelimiter}
		case MergeUInt64Add:
			o.MergeOperator = &rockyardkv.UInt64AddOperator{}
		}
	})

	opts.SetCFOpts(func(o *rockyardkv.ColumnFamilyOptions) {
		switch {
		case s.ColumnFamilyWriteBufferSize > 0:
			o.WriteBufferSize = s.ColumnFamilyWriteBufferSize
		case s.WriteBufferSize > 0:
			o.WriteBufferSize = s.WriteBufferSize
		}
	})

	return opts, nil
}

// BadgerConfig builds the badger engine configuration and options from
// the storage section.
func (s *StorageSection) BadgerConfig() (badgercf.Config, []badgercf.Option) {
	cfg := badgercf.DefaultConfig(s.DataDir)
	cfg.InMemory = s.Badger.InMemory
	cfg.GCInterval = s.Badger.GCInterval
	cfg.SyncWrites = s.Badger.SyncWrites
	if s.Badger.GCThreshold > 0 {
		cfg.GCThreshold = s.Badger.GCThreshold
	}
	if s.Badger.CacheSize > 0 {
		cfg.CacheSize = s.Badger.CacheSize
	}
	if s.Badger.ValueLogFileSize > 0 {
		cfg.ValueLogFileSize = s.Badger.ValueLogFileSize
	}
	cfg.ColumnFamilies = []string{s.ColumnFamily}

	var opts []badgercf.Option
	if s.MergeOperator == MergeAppend {
		opts = append(opts, badgercf.WithMergeFunc(badgercf.AppendMerge(s.MergeDelimiter)))
	}
	return cfg, opts
}

// NewPool creates the blocking pool described by the executor section.
func (e *ExecutorSection) NewPool() *blocking.Pool {
	return blocking.New(e.Workers, blocking.WithRateLimit(e.RateLimit, e.Burst))
}
