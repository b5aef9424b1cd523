package repl

import (
	"errors"
	"reflect"
	"testing"
)

func TestSplitArgs(t *testing.T) {
	tests := []struct {
		line    string
		want    []string
		wantErr bool
	}{
		{line: "", want: nil},
		{line: "   ", want: nil},
		{line: "get foo", want: []string{"get", "foo"}},
		{line: "  set   a\tb  ", want: []string{"set", "a", "b"}},
		{line: `set k "hello world"`, want: []string{"set", "k", "hello world"}},
		{line: `set k ""`, want: []string{"set", "k", ""}},
		{line: `set k "a\r\nb"`, want: []string{"set", "k", "a\r\nb"}},
		{line: `set k "\x41\x7a"`, want: []string{"set", "k", "Az"}},
		{line: `set k "say \"hi\""`, want: []string{"set", "k", `say "hi"`}},
		{line: `set k 'it\'s \n'`, want: []string{"set", "k", `it's \n`}},
		{line: `set k "open`, wantErr: true},
		{line: `set k 'open`, wantErr: true},
		{line: `set k "a"b`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := SplitArgs(tt.line)
			if tt.wantErr {
				if !errors.Is(err, ErrUnbalancedQuotes) {
					t.Fatalf("err = %v, want ErrUnbalancedQuotes", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitArgs(%q) = %q, want %q", tt.line, got, tt.want)
			}
		})
	}
}
