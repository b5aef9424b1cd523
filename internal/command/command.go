package command

import (
	"strings"

	"github.com/yndnr/rudis/internal/protocol/resp"
)

// Command is a request name plus its positional arguments.
type Command struct {
	// Name is the upper-cased command name.
	Name string
	Args []string
}

// Interpret validates the shape of a decoded request. The request must be
// a non-empty array whose every element is a bulk string.
func Interpret(v resp.Value) (Command, error) {
	if v.Kind != resp.KindArray || len(v.Array) == 0 {
		return Command{}, ErrInvalidRequest
	}
	for _, el := range v.Array {
		if el.Kind != resp.KindBulk {
			return Command{}, ErrInvalidRequest
		}
	}

	args := make([]string, 0, len(v.Array)-1)
	for _, el := range v.Array[1:] {
		args = append(args, string(el.Bulk))
	}

	return Command{
		Name: normalizeName(v.Array[0].Bulk),
		Args: args,
	}, nil
}

// normalizeName upper-cases ASCII letters, skipping the allocation when the
// name is already upper case.
func normalizeName(b []byte) string {
	for _, c := range b {
		if 'a' <= c && c <= 'z' {
			return strings.ToUpper(string(b))
		}
	}
	return string(b)
}
