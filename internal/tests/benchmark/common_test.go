package benchmark

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/aalhour/rockyardkv"

	"github.com/yndnr/cfkv/internal/core/domain"
	"github.com/yndnr/cfkv/internal/storage/badgercf"
	"github.com/yndnr/cfkv/internal/storage/rocks"
)

// KeyCounts defines the preloaded key counts for benchmarking.
var KeyCounts = []int{1000, 10000, 100000}

// SmallKeyCounts for quick benchmarks.
var SmallKeyCounts = []int{1000, 5000}

// BatchSizes are the key counts per batched lookup.
var BatchSizes = []int{1, 16, 128}

// engineOpener opens an executor over a fresh database bound to cf.
type engineOpener func(b *testing.B, cf string) *rocks.Executor

// engines lists the engines every benchmark runs against.
var engines = map[string]engineOpener{
	"rockyard": openRockyard,
	"badger":   openBadger,
}

func openRockyard(b *testing.B, cf string) *rocks.Executor {
	b.Helper()

	opts := rocks.NewOptions(filepath.Join(b.TempDir(), "db"), cf).BuildDefaultOpts()
	opts.SetDBOpts(func(o *rockyardkv.Options) {
		o.MergeOperator = &rockyardkv.StringAppendOperator{Delimiter: ","}
	})
	return openExecutor(b, opts)
}

func openBadger(b *testing.B, cf string) *rocks.Executor {
	b.Helper()

	cfg := badgercf.DefaultConfig(filepath.Join(b.TempDir(), "badger"))
	cfg.GCInterval = 0
	cfg.ColumnFamilies = []string{cf}
	engine, err := badgercf.Open(cfg, badgercf.WithMergeFunc(badgercf.AppendMerge(",")))
	if err != nil {
		b.Fatalf("open badger: %v", err)
	}

	opts := rocks.NewOptions(cfg.Dir, cf).BuildDefaultOpts()
	db, err := rocks.New(opts)
	if err != nil {
		b.Fatalf("New() error = %v", err)
	}
	db.SetDB(rocks.NewSharedHandle(engine))
	return bindExecutor(b, db, cf)
}

func openExecutor(b *testing.B, opts *rocks.Options) *rocks.Executor {
	b.Helper()

	db, err := rocks.New(opts)
	if err != nil {
		b.Fatalf("New() error = %v", err)
	}
	if err := db.Connect(context.Background()); err != nil {
		b.Fatalf("Connect() error = %v", err)
	}
	return bindExecutor(b, db, opts.ColumnFamilyName())
}

func bindExecutor(b *testing.B, db *rocks.DB, cf string) *rocks.Executor {
	b.Helper()

	exec := rocks.NewExecutor(db.Handle(), cf)
	b.Cleanup(func() {
		_ = exec.Close()
		_ = db.Close(context.Background())
	})
	return exec
}

// prefill saves count keys and returns them in save order.
func prefill(b *testing.B, exec *rocks.Executor, count int) []string {
	b.Helper()

	ctx := context.Background()
	keys := make([]string, count)
	for i := range keys {
		keys[i] = fmt.Sprintf("key:%s", domain.NewID())
		if _, err := exec.Exec(ctx, rocks.SaveCf{Key: keys[i], Value: value(i)}); err != nil {
			b.Fatalf("prefill failed: %v", err)
		}
	}
	return keys
}

func value(i int) []byte {
	return []byte(fmt.Sprintf("value-%08d", i))
}

// reportMemory reports memory usage.
func reportMemory(b *testing.B, prefix string) {
	var m runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&m)
	b.ReportMetric(float64(m.Alloc)/(1024*1024), prefix+"_MB")
	b.ReportMetric(float64(m.NumGC), prefix+"_GC")
}

// runWithEngines runs benchFn once per engine.
func runWithEngines(b *testing.B, benchFn func(b *testing.B, open engineOpener)) {
	for _, name := range []string{"rockyard", "badger"} {
		open := engines[name]
		b.Run(name, func(b *testing.B) {
			benchFn(b, open)
		})
	}
}
