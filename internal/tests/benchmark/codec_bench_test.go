package benchmark

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/yndnr/rudis/internal/protocol/resp"
)

func BenchmarkCodec_EncodeCommand(b *testing.B) {
	v := resp.Command("SET", newKey(), strings.Repeat("x", 128))
	buf := make([]byte, 0, 256)
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		buf = resp.AppendValue(buf[:0], v)
	}
}

func BenchmarkCodec_DecodeCommand(b *testing.B) {
	for _, size := range []int{16, 1024, 64 * 1024} {
		b.Run(fmt.Sprintf("value_%dB", size), func(b *testing.B) {
			frame := resp.Encode(resp.Command("SET", "key", strings.Repeat("x", size)))
			stream := bytes.Repeat(frame, 64)
			b.SetBytes(int64(len(frame)))
			b.ReportAllocs()

			src := bytes.NewReader(stream)
			r := resp.NewReader(bufio.NewReader(src))
			for i := 0; i < b.N; i++ {
				if _, err := r.ReadValue(); err != nil {
					if err != io.EOF {
						b.Fatal(err)
					}
					src.Reset(stream)
					r = resp.NewReader(bufio.NewReader(src))
					i--
				}
			}
		})
	}
}

func BenchmarkCodec_WriteReplies(b *testing.B) {
	w := resp.NewWriter(bufio.NewWriter(io.Discard))
	reply := resp.BulkStringValue(strings.Repeat("v", 64))
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if err := w.WriteValue(reply); err != nil {
			b.Fatal(err)
		}
		if i%64 == 63 {
			if err := w.Flush(); err != nil {
				b.Fatal(err)
			}
		}
	}
}
