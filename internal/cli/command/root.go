package command

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/rudis/internal/cli/config"
	"github.com/yndnr/rudis/internal/cli/connection"
	"github.com/yndnr/rudis/internal/cli/output"
	"github.com/yndnr/rudis/internal/cli/repl"
	"github.com/yndnr/rudis/internal/infra/buildinfo"
	"github.com/yndnr/rudis/internal/infra/tlsroots"
	"github.com/yndnr/rudis/internal/protocol/resp"
)

const globalFlagsKey = "globalFlags"

// App creates the CLI application.
//
// Without arguments it starts interactive mode. Arguments that do not name
// a subcommand are sent as a single request, so "rudis-cli SET k v" works
// like "rudis-cli exec SET k v".
func App() *cli.App {
	return &cli.App{
		Name:      "rudis-cli",
		Usage:     "command-line client for the rudis key-value server",
		ArgsUsage: "[COMMAND [ARG...]]",
		Version:   buildinfo.String(),
		Flags:     globalFlags(),
		Metadata:  map[string]any{},
		Commands: []*cli.Command{
			GetCommand(),
			SetCommand(),
			DelCommand(),
			ExecCommand(),
			BenchCommand(),
		},
		Before: func(c *cli.Context) error {
			flags, err := ParseGlobalFlags(c)
			if err != nil {
				return err
			}
			c.App.Metadata[globalFlagsKey] = flags
			return nil
		},
		Action: func(c *cli.Context) error {
			if c.NArg() > 0 {
				return execAction(c, c.Args().Slice())
			}
			return runInteractive(c)
		},
	}
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "config",
			Usage: "CLI config file",
			Value: config.DefaultConfigPath(),
		},
		&cli.StringFlag{
			Name:    "connection",
			Aliases: []string{"C"},
			Usage:   "saved connection profile from the config file",
		},
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "server address host:port (env " + config.EnvServer + ")",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output format: table, json, yaml (env " + config.EnvOutput + ")",
		},
		&cli.DurationFlag{
			Name:    "timeout",
			Aliases: []string{"t"},
			Usage:   "dial and request timeout (env " + config.EnvTimeout + ")",
		},
		&cli.BoolFlag{
			Name:  "tls",
			Usage: "connect with TLS",
		},
		&cli.StringFlag{
			Name:  "cacert",
			Usage: "PEM file with CA certificates to trust (implies --tls)",
		},
		&cli.BoolFlag{
			Name:  "insecure",
			Usage: "skip TLS certificate verification",
		},
	}
}

// GlobalFlags are the resolved connection and output settings.
type GlobalFlags struct {
	Server   string
	Output   output.Format
	Timeout  time.Duration
	TLS      bool
	Insecure bool
	CACert   string
}

// ParseGlobalFlags resolves settings from the config file, environment and
// flags, in increasing order of precedence.
func ParseGlobalFlags(c *cli.Context) (*GlobalFlags, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}

	env := make(map[string]string)
	for _, key := range []string{config.EnvServer, config.EnvOutput, config.EnvTimeout} {
		if v, ok := os.LookupEnv(key); ok {
			env[key] = v
		}
	}
	flags := map[string]string{
		"connection": c.String("connection"),
		"server":     c.String("server"),
		"output":     c.String("output"),
	}
	if c.IsSet("timeout") {
		flags["timeout"] = c.Duration("timeout").String()
	}

	merged, err := config.Merge(cfg, env, flags)
	if err != nil {
		return nil, err
	}

	format, err := output.ParseFormat(merged.DefaultOutput)
	if err != nil {
		return nil, err
	}

	g := &GlobalFlags{
		Server:   merged.DefaultServer,
		Output:   format,
		Timeout:  merged.Timeout,
		TLS:      merged.TLS,
		Insecure: merged.Insecure,
		CACert:   merged.CACert,
	}
	if c.IsSet("tls") {
		g.TLS = c.Bool("tls")
	}
	if c.IsSet("insecure") {
		g.Insecure = c.Bool("insecure")
	}
	if c.IsSet("cacert") {
		g.CACert = c.String("cacert")
	}
	return g, nil
}

// Options returns the client options for g. TLS is enabled by --tls,
// --insecure or --cacert.
func (g *GlobalFlags) Options() (connection.Options, error) {
	opts := connection.Options{Timeout: g.Timeout}
	if !g.TLS && !g.Insecure && g.CACert == "" {
		return opts, nil
	}

	tlsCfg, err := tlsroots.ClientConfigFromFile(g.CACert)
	if err != nil {
		return opts, err
	}
	tlsCfg.InsecureSkipVerify = g.Insecure //nolint:gosec // explicit --insecure
	opts.TLS = tlsCfg
	return opts, nil
}

// getGlobalFlags returns the settings resolved by the App's Before hook.
func getGlobalFlags(c *cli.Context) (*GlobalFlags, error) {
	if g, ok := c.App.Metadata[globalFlagsKey].(*GlobalFlags); ok {
		return g, nil
	}
	return ParseGlobalFlags(c)
}

// dial connects using the global settings.
func dial(c *cli.Context) (*connection.Client, *GlobalFlags, error) {
	g, err := getGlobalFlags(c)
	if err != nil {
		return nil, nil, err
	}
	opts, err := g.Options()
	if err != nil {
		return nil, nil, err
	}
	client, err := connection.Dial(c.Context, g.Server, opts)
	if err != nil {
		return nil, nil, err
	}
	return client, g, nil
}

// printResult writes data to the app's writer in the selected format.
func printResult(c *cli.Context, g *GlobalFlags, data any) error {
	return output.NewFormatter(g.Output).Format(c.App.Writer, data)
}

func runInteractive(c *cli.Context) error {
	g, err := getGlobalFlags(c)
	if err != nil {
		return err
	}
	opts, err := g.Options()
	if err != nil {
		return err
	}

	var client *connection.Client
	defer func() {
		if client != nil {
			_ = client.Close()
		}
	}()

	// Reconnects after a transport failure so one dropped connection does
	// not end the session.
	exec := func(ctx context.Context, args []string) (resp.Value, error) {
		if client == nil || !client.Healthy() {
			if client != nil {
				_ = client.Close()
			}
			cl, err := connection.Dial(ctx, g.Server, opts)
			if err != nil {
				client = nil
				return resp.Value{}, err
			}
			client = cl
		}
		return client.Do(ctx, args...)
	}

	r := repl.New(exec,
		repl.WithIO(c.App.Reader, c.App.Writer),
		repl.WithPrompt(fmt.Sprintf("%s> ", g.Server)),
		repl.WithFormatter(output.NewFormatter(g.Output)),
		repl.WithHistory(repl.NewHistory(repl.DefaultHistoryPath())),
	)
	return r.Run(c.Context)
}

// PrintError prints an error message to stderr.
func PrintError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
}
