package logger

import (
	"fmt"
	"log/slog"
	"strings"
)

// Attribute keys whose values are client data. Keys are logged freely;
// values and raw argument lists only by size.
var sensitiveKeys = []string{
	"value",
	"args",
}

// redactSensitive replaces the value of a sensitive attribute with a
// size summary.
func redactSensitive(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		newAttrs := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			newAttrs[i] = redactSensitive(attr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(newAttrs...)}
	}

	if IsSensitiveKey(a.Key) {
		return slog.String(a.Key, Summarize(a.Value.Any()))
	}
	return a
}

// redactPairs applies the same policy to alternating key/value arguments.
func redactPairs(args []any) []any {
	out := make([]any, len(args))
	copy(out, args)
	for i := 0; i+1 < len(out); i += 2 {
		if key, ok := out[i].(string); ok && IsSensitiveKey(key) {
			out[i+1] = Summarize(out[i+1])
		}
	}
	return out
}

// Summarize describes v by size only.
func Summarize(v any) string {
	switch x := v.(type) {
	case string:
		return fmt.Sprintf("<redacted %d bytes>", len(x))
	case []byte:
		return fmt.Sprintf("<redacted %d bytes>", len(x))
	case []string:
		return fmt.Sprintf("<redacted %d items>", len(x))
	default:
		return "<redacted>"
	}
}

// IsSensitiveKey reports whether values logged under key are redacted.
func IsSensitiveKey(key string) bool {
	k := strings.ToLower(key)
	for _, s := range sensitiveKeys {
		if k == s {
			return true
		}
	}
	return false
}
