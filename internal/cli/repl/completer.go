package repl

import (
	"sort"
	"strings"
)

// Completer provides command completion for the REPL.
type Completer struct {
	commands []string
}

// NewCompleter creates a Completer over commands plus the REPL built-ins.
func NewCompleter(commands ...string) *Completer {
	all := append([]string{"exit", "help", "history", "quit"}, commands...)
	sort.Strings(all)

	out := all[:0]
	for i, c := range all {
		if i > 0 && c == all[i-1] {
			continue
		}
		out = append(out, c)
	}
	return &Completer{commands: out}
}

// Complete returns completion suggestions for the given prefix.
func (c *Completer) Complete(prefix string) []string {
	var suggestions []string
	for _, cmd := range c.commands {
		if strings.HasPrefix(cmd, prefix) {
			suggestions = append(suggestions, cmd)
		}
	}
	return suggestions
}
