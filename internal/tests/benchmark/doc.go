// Package benchmark provides performance benchmarks for cfkv.
//
// Benchmarks cover the executor path over both engines:
//
//   - executor_bench_test.go: save, get, batched lookup and merge
//
// Run with:
//
//	go test -bench=. -benchmem ./internal/tests/benchmark/
package benchmark
