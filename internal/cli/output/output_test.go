package output

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

type sample struct {
	Name     string        `json:"name" yaml:"name"`
	Count    int           `json:"count" yaml:"count"`
	Elapsed  time.Duration `json:"elapsed" yaml:"elapsed"`
	Rate     float64       `json:"rate" yaml:"rate"`
	Internal string        `json:"-" table:"-" yaml:"-"`
}

type custom struct{}

func (custom) RenderTable(w io.Writer) error {
	_, err := io.WriteString(w, "custom!\n")
	return err
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatTable, false},
		{"table", FormatTable, false},
		{"JSON", FormatJSON, false},
		{"yaml", FormatYAML, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNewFormatter(t *testing.T) {
	if _, ok := NewFormatter(FormatJSON).(*JSONFormatter); !ok {
		t.Error("json format should give a JSONFormatter")
	}
	if _, ok := NewFormatter(FormatYAML).(*YAMLFormatter); !ok {
		t.Error("yaml format should give a YAMLFormatter")
	}
	if _, ok := NewFormatter("other").(*TableFormatter); !ok {
		t.Error("unknown format should fall back to table")
	}
}

func TestTableFormatter_Struct(t *testing.T) {
	var buf bytes.Buffer
	data := sample{Name: "bench", Count: 3, Elapsed: 1500 * time.Millisecond, Rate: 2.5, Internal: "secret"}
	if err := (&TableFormatter{}).Format(&buf, data); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{"FIELD", "name", "bench", "count", "3", "1.5s", "2.50"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "secret") {
		t.Errorf("table:\"-\" field was rendered:\n%s", out)
	}
}

func TestTableFormatter_MapSorted(t *testing.T) {
	var buf bytes.Buffer
	f := &TableFormatter{NoHeaders: true}
	if err := f.Format(&buf, map[string]int{"b": 2, "a": 1}); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[0], "a") {
		t.Errorf("rows = %q, want sorted without headers", lines)
	}
}

func TestTableFormatter_RendererAndScalars(t *testing.T) {
	var buf bytes.Buffer
	f := &TableFormatter{}

	if err := f.Format(&buf, custom{}); err != nil {
		t.Fatal(err)
	}
	if err := f.Format(&buf, "plain"); err != nil {
		t.Fatal(err)
	}
	if err := f.Format(&buf, nil); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "custom!\nplain\n" {
		t.Errorf("output = %q", got)
	}
}

func TestTable_Render(t *testing.T) {
	tbl := &Table{Headers: []string{"KEY", "VALUE"}}
	tbl.AddRow("k1", "v1")
	tbl.AddRow("longer-key", "v2")

	var buf bytes.Buffer
	if err := tbl.Render(&buf); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(lines))
	}
	// Columns are aligned.
	if strings.Index(lines[1], "v1") != strings.Index(lines[2], "v2") {
		t.Errorf("columns not aligned:\n%s", buf.String())
	}
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	if err := (&JSONFormatter{}).Format(&buf, sample{Name: "<x>", Count: 1}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"<x>"`) {
		t.Errorf("HTML should not be escaped: %s", buf.String())
	}
	var back map[string]any
	if err := json.Unmarshal(buf.Bytes(), &back); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if _, ok := back["Internal"]; ok {
		t.Error("json:\"-\" field was encoded")
	}
}

func TestYAMLFormatter(t *testing.T) {
	var buf bytes.Buffer
	if err := (&YAMLFormatter{}).Format(&buf, sample{Name: "bench", Count: 4}); err != nil {
		t.Fatal(err)
	}

	var back sample
	if err := yaml.Unmarshal(buf.Bytes(), &back); err != nil {
		t.Fatalf("output is not YAML: %v", err)
	}
	if back.Name != "bench" || back.Count != 4 {
		t.Errorf("decoded = %+v", back)
	}
	if !strings.Contains(buf.String(), "name: bench") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestProgressBar(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgressBar(&buf, "bench", 200)

	for i := 0; i < 200; i++ {
		p.Increment(1)
	}
	p.Finish()

	if p.Current() != 200 {
		t.Errorf("Current() = %d, want 200", p.Current())
	}
	out := buf.String()
	if !strings.Contains(out, "100% (200/200)") {
		t.Errorf("final state missing: %q", out)
	}
	// One redraw per percent plus Finish, not one per increment.
	if n := strings.Count(out, "\r"); n > 102 {
		t.Errorf("redrew %d times", n)
	}
}

func TestProgressBar_UnknownTotal(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgressBar(&buf, "ops", 0)
	p.Increment(5)
	p.Finish()
	if !strings.Contains(buf.String(), "ops 5") {
		t.Errorf("output = %q", buf.String())
	}
}
