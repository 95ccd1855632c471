// Package repl implements the line-oriented interactive mode behind
// cfkv shell.
//
// Each input line is split into words with shell-style quoting and handed
// to an Executor; cfkv runs its own command tree there so every command
// works the same in and out of the shell. A line ending in "?" lists the
// commands starting with the words before it.
package repl
