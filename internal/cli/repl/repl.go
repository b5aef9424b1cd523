package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/yndnr/rudis/internal/cli/output"
	"github.com/yndnr/rudis/internal/protocol/resp"
)

// Executor sends one request and returns the reply. A returned error is a
// transport failure; error replies come back as values.
type Executor func(ctx context.Context, args []string) (resp.Value, error)

// REPL represents the Read-Eval-Print Loop.
type REPL struct {
	input     io.Reader
	output    io.Writer
	prompt    string
	exec      Executor
	formatter output.Formatter
	completer *Completer
	history   *History
}

// Option configures a REPL.
type Option func(*REPL)

// WithIO sets the input and output streams.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(r *REPL) {
		r.input = in
		r.output = out
	}
}

// WithPrompt sets the prompt.
func WithPrompt(prompt string) Option {
	return func(r *REPL) {
		r.prompt = prompt
	}
}

// WithFormatter sets the reply formatter.
func WithFormatter(f output.Formatter) Option {
	return func(r *REPL) {
		r.formatter = f
	}
}

// WithHistory replaces the in-memory history.
func WithHistory(h *History) Option {
	return func(r *REPL) {
		r.history = h
	}
}

// New creates a new REPL instance.
func New(exec Executor, opts ...Option) *REPL {
	r := &REPL{
		input:     os.Stdin,
		output:    os.Stdout,
		prompt:    "rudis> ",
		exec:      exec,
		formatter: &output.TableFormatter{},
		completer: NewCompleter(),
		history:   NewHistory(""),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run starts the REPL loop. It returns nil on exit, quit or end of input.
func (r *REPL) Run(ctx context.Context) error {
	if err := r.history.Load(); err != nil {
		fmt.Fprintf(r.output, "Warning: load history: %v\n", err)
	}
	defer func() {
		if err := r.history.Save(); err != nil {
			fmt.Fprintf(r.output, "Warning: save history: %v\n", err)
		}
	}()

	reader := bufio.NewReader(r.input)
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		fmt.Fprint(r.output, r.prompt)

		line, err := reader.ReadString('\n')
		if err == io.EOF && line == "" {
			fmt.Fprintln(r.output)
			return nil
		}
		if err != nil && err != io.EOF {
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		r.history.Add(line)

		args, splitErr := SplitArgs(line)
		if splitErr != nil {
			fmt.Fprintf(r.output, "Error: %v\n", splitErr)
			continue
		}

		switch strings.ToLower(args[0]) {
		case "exit", "quit":
			return nil
		case "help":
			r.help(args[1:])
			continue
		case "history":
			r.printHistory()
			continue
		}

		if err := r.execute(ctx, args); err != nil {
			fmt.Fprintf(r.output, "Error: %v\n", err)
		}
	}
}

func (r *REPL) execute(ctx context.Context, args []string) error {
	reply, err := r.exec(ctx, args)
	if err != nil {
		return err
	}
	return r.formatter.Format(r.output, output.NewReply(reply))
}

func (r *REPL) help(args []string) {
	prefix := ""
	if len(args) > 0 {
		prefix = args[0]
	}
	matches := r.completer.Complete(prefix)
	if len(matches) == 0 {
		fmt.Fprintf(r.output, "No commands match %q\n", prefix)
		return
	}
	for _, cmd := range matches {
		fmt.Fprintln(r.output, cmd)
	}
}

func (r *REPL) printHistory() {
	n := r.history.Len()
	for i := n - 1; i >= 0; i-- {
		fmt.Fprintf(r.output, "%4d  %s\n", n-i, r.history.Get(i))
	}
}
