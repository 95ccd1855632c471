// Package main provides the entry point for cfkv.
//
// cfkv opens a column-family key-value database (rockyardkv or badger)
// and runs storage instructions against one column family:
//
//   - put, merge, get, mget, delete
//   - load from a YAML or JSON mapping
//   - gc and column family listing
//   - an interactive shell over one open store
//
// Usage:
//
//	cfkv --data-dir ./data --cf users put user:1 alice
//	cfkv --data-dir ./data --cf users mget user:1 user:2 -o json
//	cfkv --config cfkv.yaml shell --watch
package main
