package repl

import (
	"sort"
	"strings"
)

// Completer suggests command names for the REPL help command.
type Completer struct {
	commands []string
}

// NewCompleter creates a Completer over the server commands and the REPL
// builtins.
func NewCompleter() *Completer {
	return &Completer{
		commands: []string{
			"GET", "SET", "DEL",
			"help", "history", "exit", "quit",
		},
	}
}

// Complete returns the commands starting with prefix, ignoring case.
func (c *Completer) Complete(prefix string) []string {
	prefix = strings.ToLower(prefix)
	var suggestions []string
	for _, cmd := range c.commands {
		if strings.HasPrefix(strings.ToLower(cmd), prefix) {
			suggestions = append(suggestions, cmd)
		}
	}
	sort.Strings(suggestions)
	return suggestions
}
