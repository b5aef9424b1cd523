package resp

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

var crlf = []byte("\r\n")

var lineBreaks = strings.NewReplacer("\r", " ", "\n", " ")

// Encode returns the wire encoding of v.
func Encode(v Value) []byte {
	return AppendValue(nil, v)
}

// AppendValue appends the wire encoding of v to dst.
//
// Encoding is total: Null and unknown kinds encode as a null bulk string,
// and CR or LF inside simple string or error text is replaced with a space.
func AppendValue(dst []byte, v Value) []byte {
	switch v.Kind {
	case KindSimple, KindError:
		dst = append(dst, byte(v.Kind))
		dst = append(dst, lineBreaks.Replace(v.Str)...)
		return append(dst, crlf...)

	case KindInteger:
		dst = append(dst, ':')
		dst = strconv.AppendInt(dst, v.Int, 10)
		return append(dst, crlf...)

	case KindBulk:
		dst = append(dst, '$')
		dst = strconv.AppendInt(dst, int64(len(v.Bulk)), 10)
		dst = append(dst, crlf...)
		dst = append(dst, v.Bulk...)
		return append(dst, crlf...)

	case KindArray:
		dst = append(dst, '*')
		dst = strconv.AppendInt(dst, int64(len(v.Array)), 10)
		dst = append(dst, crlf...)
		for _, el := range v.Array {
			dst = AppendValue(dst, el)
		}
		return dst

	default:
		return append(dst, "$-1\r\n"...)
	}
}

// Command encodes a request: an array of bulk strings.
func Command(args ...string) Value {
	vs := make([]Value, len(args))
	for i, a := range args {
		vs[i] = BulkStringValue(a)
	}
	return ArrayValue(vs...)
}

// Writer buffers encoded values for a stream.
type Writer struct {
	bw  *bufio.Writer
	buf []byte
}

// NewWriter returns a Writer on w.
func NewWriter(w io.Writer) *Writer {
	bw, ok := w.(*bufio.Writer)
	if !ok {
		bw = bufio.NewWriter(w)
	}
	return &Writer{bw: bw}
}

// WriteValue buffers the encoding of v. Call Flush to send it.
func (w *Writer) WriteValue(v Value) error {
	w.buf = AppendValue(w.buf[:0], v)
	_, err := w.bw.Write(w.buf)
	return err
}

// Flush writes buffered data to the underlying writer.
func (w *Writer) Flush() error {
	return w.bw.Flush()
}

// Buffered returns the number of bytes waiting for Flush.
func (w *Writer) Buffered() int {
	return w.bw.Buffered()
}
