package resp

import "bytes"

// Kind identifies the variant held by a Value. Except for KindNull the
// constant is the RESP type byte of the variant.
type Kind byte

const (
	KindNull    Kind = 0
	KindSimple  Kind = '+'
	KindError   Kind = '-'
	KindInteger Kind = ':'
	KindBulk    Kind = '$'
	KindArray   Kind = '*'
)

// String returns a human readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindSimple:
		return "simple-string"
	case KindError:
		return "error"
	case KindInteger:
		return "integer"
	case KindBulk:
		return "bulk-string"
	case KindArray:
		return "array"
	default:
		return "unknown"
	}
}

// Value is a decoded request or an encodable reply.
// The zero Value is Null.
type Value struct {
	Kind  Kind
	Str   string
	Bulk  []byte
	Int   int64
	Array []Value
}

// SimpleValue creates a simple string Value.
func SimpleValue(s string) Value {
	return Value{Kind: KindSimple, Str: s}
}

// ErrorValue creates an error Value.
func ErrorValue(msg string) Value {
	return Value{Kind: KindError, Str: msg}
}

// IntValue creates an integer Value.
func IntValue(n int64) Value {
	return Value{Kind: KindInteger, Int: n}
}

// BulkValue creates a bulk string Value. A nil slice is an empty bulk
// string, not Null; use NullValue for absence.
func BulkValue(b []byte) Value {
	return Value{Kind: KindBulk, Bulk: b}
}

// BulkStringValue creates a bulk string Value from s.
func BulkStringValue(s string) Value {
	return Value{Kind: KindBulk, Bulk: []byte(s)}
}

// ArrayValue creates an array Value.
func ArrayValue(vs ...Value) Value {
	if vs == nil {
		vs = []Value{}
	}
	return Value{Kind: KindArray, Array: vs}
}

// NullValue returns the Null Value.
func NullValue() Value {
	return Value{}
}

// IsNull reports whether v is Null.
func (v Value) IsNull() bool {
	return v.Kind == KindNull
}

// Text returns the textual payload of simple strings, errors and bulk
// strings, and "" for every other kind.
func (v Value) Text() string {
	switch v.Kind {
	case KindSimple, KindError:
		return v.Str
	case KindBulk:
		return string(v.Bulk)
	default:
		return ""
	}
}

// Equal reports whether v and o hold the same variant and payload.
// Bulk payloads compare by content, so a nil and an empty payload are equal.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindNull:
		return true
	case KindSimple, KindError:
		return v.Str == o.Str
	case KindInteger:
		return v.Int == o.Int
	case KindBulk:
		return bytes.Equal(v.Bulk, o.Bulk)
	case KindArray:
		if len(v.Array) != len(o.Array) {
			return false
		}
		for i := range v.Array {
			if !v.Array[i].Equal(o.Array[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
