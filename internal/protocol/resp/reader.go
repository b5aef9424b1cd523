package resp

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Decoder limits. A frame declaring more than these is rejected before any
// payload is allocated.
const (
	// DefaultMaxBulkLen limits the size of a single bulk string (16MB).
	DefaultMaxBulkLen = 16 * 1024 * 1024

	// DefaultMaxArrayLen limits the number of elements in one array.
	DefaultMaxArrayLen = 64 * 1024

	// DefaultMaxDepth limits array nesting.
	DefaultMaxDepth = 32

	// maxLineLen limits header, simple string and error lines.
	maxLineLen = 64 * 1024
)

// Reader decodes RESP frames from a byte stream.
type Reader struct {
	br          *bufio.Reader
	maxBulkLen  int
	maxArrayLen int
	maxDepth    int
}

// ReaderOption configures a Reader.
type ReaderOption func(*Reader)

// WithMaxBulkLen overrides DefaultMaxBulkLen. Non-positive values are ignored.
func WithMaxBulkLen(n int) ReaderOption {
	return func(r *Reader) {
		if n > 0 {
			r.maxBulkLen = n
		}
	}
}

// WithMaxArrayLen overrides DefaultMaxArrayLen. Non-positive values are ignored.
func WithMaxArrayLen(n int) ReaderOption {
	return func(r *Reader) {
		if n > 0 {
			r.maxArrayLen = n
		}
	}
}

// WithMaxDepth overrides DefaultMaxDepth. Non-positive values are ignored.
func WithMaxDepth(n int) ReaderOption {
	return func(r *Reader) {
		if n > 0 {
			r.maxDepth = n
		}
	}
}

// NewReader returns a Reader on rd. If rd is already a *bufio.Reader it is
// used directly, so bytes buffered by the caller are not lost.
func NewReader(rd io.Reader, opts ...ReaderOption) *Reader {
	br, ok := rd.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(rd)
	}
	r := &Reader{
		br:          br,
		maxBulkLen:  DefaultMaxBulkLen,
		maxArrayLen: DefaultMaxArrayLen,
		maxDepth:    DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Buffered returns the number of bytes already read from the stream but
// not yet consumed by ReadValue.
func (r *Reader) Buffered() int {
	return r.br.Buffered()
}

// Peek waits until at least one byte of the next frame is available.
func (r *Reader) Peek() error {
	_, err := r.br.Peek(1)
	return err
}

// ReadValue decodes exactly one frame.
//
// It returns io.EOF only when the stream ends on a frame boundary. A stream
// ending inside a frame yields an error matching both ErrProtocol and
// io.ErrUnexpectedEOF. Transport errors (such as deadline timeouts) are
// returned unwrapped.
func (r *Reader) ReadValue() (Value, error) {
	prefix, err := r.br.ReadByte()
	if err != nil {
		return Value{}, err
	}
	return r.readValue(prefix, 0)
}

func (r *Reader) next(depth int) (Value, error) {
	prefix, err := r.br.ReadByte()
	if err != nil {
		return Value{}, truncated(err)
	}
	return r.readValue(prefix, depth)
}

func (r *Reader) readValue(prefix byte, depth int) (Value, error) {
	switch Kind(prefix) {
	case KindSimple:
		line, err := r.readLine(maxLineLen)
		if err != nil {
			return Value{}, err
		}
		return SimpleValue(line), nil

	case KindError:
		line, err := r.readLine(maxLineLen)
		if err != nil {
			return Value{}, err
		}
		return ErrorValue(line), nil

	case KindInteger:
		line, err := r.readLine(64)
		if err != nil {
			return Value{}, err
		}
		n, err := strconv.ParseInt(line, 10, 64)
		if err != nil || !canonicalInt(line) {
			return Value{}, fmt.Errorf("%w: invalid integer %q", ErrProtocol, line)
		}
		return IntValue(n), nil

	case KindBulk:
		return r.readBulk()

	case KindArray:
		return r.readArray(depth)

	default:
		return Value{}, fmt.Errorf("%w: unexpected type byte %q", ErrProtocol, prefix)
	}
}

func (r *Reader) readBulk() (Value, error) {
	n, err := r.readLength("bulk length")
	if err != nil {
		return Value{}, err
	}
	if n == -1 {
		return NullValue(), nil
	}
	if n > r.maxBulkLen {
		return Value{}, fmt.Errorf("%w: bulk length %d exceeds limit %d", ErrLimitExceeded, n, r.maxBulkLen)
	}

	buf := make([]byte, n+2)
	if _, err := io.ReadFull(r.br, buf); err != nil {
		return Value{}, truncated(err)
	}
	if !bytes.HasSuffix(buf, []byte("\r\n")) {
		return Value{}, fmt.Errorf("%w: bulk payload does not match declared length %d", ErrProtocol, n)
	}
	return BulkValue(buf[:n]), nil
}

func (r *Reader) readArray(depth int) (Value, error) {
	if depth >= r.maxDepth {
		return Value{}, fmt.Errorf("%w: array nesting exceeds limit %d", ErrLimitExceeded, r.maxDepth)
	}
	n, err := r.readLength("array length")
	if err != nil {
		return Value{}, err
	}
	if n == -1 {
		return NullValue(), nil
	}
	if n > r.maxArrayLen {
		return Value{}, fmt.Errorf("%w: array length %d exceeds limit %d", ErrLimitExceeded, n, r.maxArrayLen)
	}

	out := make([]Value, 0, n)
	for i := 0; i < n; i++ {
		v, err := r.next(depth + 1)
		if err != nil {
			return Value{}, err
		}
		out = append(out, v)
	}
	return ArrayValue(out...), nil
}

// readLength parses a bulk or array header. -1 is the only accepted
// negative value.
func (r *Reader) readLength(what string) (int, error) {
	line, err := r.readLine(64)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(line)
	if err != nil || n < -1 || !canonicalInt(line) {
		return 0, fmt.Errorf("%w: invalid %s %q", ErrProtocol, what, line)
	}
	return n, nil
}

// canonicalInt reports whether s is written the way Redis writes
// integers: an optional minus sign, no plus sign, and no leading zeros
// except for "0" itself.
func canonicalInt(s string) bool {
	if s == "0" {
		return true
	}
	if strings.HasPrefix(s, "-") {
		s = s[1:]
	}
	return s != "" && s[0] >= '1' && s[0] <= '9'
}

// readLine reads up to and including CRLF and returns the line without it.
func (r *Reader) readLine(maxLen int) (string, error) {
	var buf []byte
	for {
		frag, err := r.br.ReadSlice('\n')
		if err == nil {
			buf = append(buf, frag...)
			break
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			buf = append(buf, frag...)
			if len(buf) > maxLen {
				return "", fmt.Errorf("%w: line length exceeds limit %d", ErrLimitExceeded, maxLen)
			}
			continue
		}
		return "", truncated(err)
	}

	if len(buf) > maxLen+2 {
		return "", fmt.Errorf("%w: line length exceeds limit %d", ErrLimitExceeded, maxLen)
	}
	if len(buf) < 2 || buf[len(buf)-2] != '\r' {
		return "", fmt.Errorf("%w: missing CRLF", ErrProtocol)
	}
	return string(buf[:len(buf)-2]), nil
}

// truncated maps an EOF inside a frame to a protocol error.
func truncated(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %w", ErrProtocol, io.ErrUnexpectedEOF)
	}
	return err
}
