package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/yndnr/rudis/internal/protocol/resp"
)

// Reply is the printable form of a server reply.
//
// JSON and YAML output use the {type, value} shape. Table output mimics
// redis-cli: quoted bulk strings, (nil), (integer) n, (error) msg and
// numbered array items.
type Reply struct {
	Type  string `json:"type" yaml:"type"`
	Value any    `json:"value" yaml:"value"`
}

// NewReply converts a decoded value.
func NewReply(v resp.Value) Reply {
	r := Reply{Type: v.Kind.String()}
	switch v.Kind {
	case resp.KindSimple, resp.KindError:
		r.Value = v.Str
	case resp.KindBulk:
		r.Value = string(v.Bulk)
	case resp.KindInteger:
		r.Value = v.Int
	case resp.KindArray:
		items := make([]Reply, len(v.Array))
		for i, e := range v.Array {
			items[i] = NewReply(e)
		}
		r.Value = items
	}
	return r
}

// RenderTable implements TableRenderer.
func (r Reply) RenderTable(w io.Writer) error {
	var b strings.Builder
	r.render(&b, "")
	_, err := io.WriteString(w, b.String())
	return err
}

func (r Reply) render(b *strings.Builder, indent string) {
	switch r.Type {
	case "null":
		b.WriteString("(nil)\n")
	case "error":
		fmt.Fprintf(b, "(error) %v\n", r.Value)
	case "integer":
		fmt.Fprintf(b, "(integer) %v\n", r.Value)
	case "bulk-string":
		s, _ := r.Value.(string)
		b.WriteString(strconv.Quote(s))
		b.WriteByte('\n')
	case "array":
		items, _ := r.Value.([]Reply)
		if len(items) == 0 {
			b.WriteString("(empty array)\n")
			return
		}
		width := len(strconv.Itoa(len(items)))
		pad := strings.Repeat(" ", width+2)
		for i, item := range items {
			if i > 0 {
				b.WriteString(indent)
			}
			fmt.Fprintf(b, "%*d) ", width, i+1)
			item.render(b, indent+pad)
		}
	default:
		fmt.Fprintf(b, "%v\n", r.Value)
	}
}
