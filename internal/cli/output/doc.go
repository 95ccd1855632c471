// Package output renders cfkv command results.
//
//   - formatter.go: Formatter interface and factory
//   - table.go: tabwriter tables for results implementing Tabular
//   - json.go, yaml.go: machine-readable output
//   - spinner.go, progress.go: feedback for long-running commands
//
// Result types carry json and yaml tags with the same names so every
// format shows the same field names.
package output
