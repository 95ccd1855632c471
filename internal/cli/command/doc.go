// Package command provides the cfkv command definitions.
//
// This package defines all CLI commands using urfave/cli/v2:
//
//   - root.go: Root command, global flags, configuration loading
//   - store.go: Opening the configured engine and executor
//   - data.go: put, merge, get, mget and delete
//   - load.go: Bulk load from a YAML or JSON file
//   - admin.go: cf list, gc and version
//   - config.go: Configuration subcommand group
//   - shell.go: Interactive shell over one open store
//
// Commands follow a consistent pattern of parsing flags, running
// instructions through the store and formatting output.
package command
