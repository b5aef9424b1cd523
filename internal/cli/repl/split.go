package repl

import (
	"errors"
	"strconv"
	"strings"
)

// ErrUnbalancedQuotes is returned by SplitArgs for an unterminated or
// badly placed quote.
var ErrUnbalancedQuotes = errors.New("invalid argument(s): unbalanced quotes")

// SplitArgs splits a line into arguments the way redis-cli does.
// Double-quoted arguments accept \n \r \t \b \a \\ \" and \xHH escapes.
// Single-quoted arguments accept only \'. A closing quote must be followed
// by whitespace or the end of the line.
func SplitArgs(line string) ([]string, error) {
	var args []string
	i := 0
	for {
		for i < len(line) && isSpace(line[i]) {
			i++
		}
		if i == len(line) {
			return args, nil
		}

		var (
			cur    strings.Builder
			inDq   bool
			inSq   bool
			closed bool
		)
		for !closed {
			if i == len(line) {
				if inDq || inSq {
					return nil, ErrUnbalancedQuotes
				}
				break
			}
			ch := line[i]
			switch {
			case inDq:
				switch {
				case ch == '\\' && i+3 < len(line) && line[i+1] == 'x' && isHex(line[i+2]) && isHex(line[i+3]):
					b, _ := strconv.ParseUint(line[i+2:i+4], 16, 8)
					cur.WriteByte(byte(b))
					i += 3
				case ch == '\\' && i+1 < len(line):
					i++
					cur.WriteByte(unescape(line[i]))
				case ch == '"':
					if i+1 < len(line) && !isSpace(line[i+1]) {
						return nil, ErrUnbalancedQuotes
					}
					closed = true
				default:
					cur.WriteByte(ch)
				}
			case inSq:
				switch {
				case ch == '\\' && i+1 < len(line) && line[i+1] == '\'':
					i++
					cur.WriteByte('\'')
				case ch == '\'':
					if i+1 < len(line) && !isSpace(line[i+1]) {
						return nil, ErrUnbalancedQuotes
					}
					closed = true
				default:
					cur.WriteByte(ch)
				}
			default:
				switch {
				case isSpace(ch):
					closed = true
				case ch == '"':
					inDq = true
				case ch == '\'':
					inSq = true
				default:
					cur.WriteByte(ch)
				}
			}
			i++
		}
		args = append(args, cur.String())
	}
}

func unescape(c byte) byte {
	switch c {
	case 'n':
		return '\n'
	case 'r':
		return '\r'
	case 't':
		return '\t'
	case 'b':
		return '\b'
	case 'a':
		return '\a'
	default:
		return c
	}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f'
}

func isHex(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}
