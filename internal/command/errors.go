package command

import (
	"errors"
	"fmt"
)

// ErrInvalidRequest is returned by Interpret for requests that are not a
// non-empty array of bulk strings.
var ErrInvalidRequest = errors.New("ERR invalid command")

// ArityError reports a command called with too few arguments.
type ArityError struct {
	Name string
	Min  int
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("ERR wrong number of arguments for '%s' command, expected at least %d", e.Name, e.Min)
}

// UnsupportedError reports a command name outside the routing table.
type UnsupportedError struct {
	Name string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("ERR unsupported command '%s'", e.Name)
}

// errInternal is the reply for a handler that panicked.
var errInternal = errors.New("ERR internal error")
