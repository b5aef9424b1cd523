package command

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/yndnr/rudis/internal/cli/config"
	"github.com/yndnr/rudis/internal/cli/connection"
	"github.com/yndnr/rudis/internal/cli/output"
	dispatch "github.com/yndnr/rudis/internal/command"
	"github.com/yndnr/rudis/internal/infra/tlsroots/tlstest"
	"github.com/yndnr/rudis/internal/server/redisserver"
	"github.com/yndnr/rudis/internal/storage/memory"
)

func startServer(t *testing.T) string {
	t.Helper()
	cfg := redisserver.DefaultConfig()
	cfg.Address = "127.0.0.1:0"
	srv := redisserver.New(cfg, dispatch.NewDispatcher(memory.New()), nil, nil)
	require.NoError(t, srv.Start(context.Background()))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	})
	return srv.Addr().String()
}

// isolate keeps the user's environment and home directory out of a test.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv(config.EnvServer, "")
	t.Setenv(config.EnvOutput, "")
	t.Setenv(config.EnvTimeout, "")
	return filepath.Join(home, "cli.yaml")
}

// runApp runs rudis-cli with args and returns stdout.
func runApp(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cfgPath := isolate(t)

	app := App()
	var out bytes.Buffer
	app.Writer = &out
	app.ErrWriter = io.Discard
	app.Reader = strings.NewReader(stdin)

	err := app.Run(append([]string{"rudis-cli", "--config", cfgPath}, args...))
	return out.String(), err
}

func TestApp(t *testing.T) {
	app := App()

	assert.Equal(t, "rudis-cli", app.Name)
	assert.NotEmpty(t, app.Usage)
	assert.NotEmpty(t, app.Version)

	names := make(map[string]bool)
	for _, cmd := range app.Commands {
		names[cmd.Name] = true
	}
	for _, name := range []string{"get", "set", "del", "exec", "bench"} {
		assert.True(t, names[name], "missing command %s", name)
	}

	flags := make(map[string]bool)
	for _, f := range app.Flags {
		for _, n := range f.Names() {
			flags[n] = true
		}
	}
	for _, name := range []string{"config", "connection", "server", "s", "output", "o", "timeout", "tls", "insecure"} {
		assert.True(t, flags[name], "missing flag %s", name)
	}
}

func TestParseGlobalFlags(t *testing.T) {
	cfgPath := isolate(t)
	fileCfg := config.Default()
	fileCfg.DefaultServer = "file:1"
	fileCfg.DefaultOutput = "yaml"
	fileCfg.Connections["prod"] = config.ConnectionConfig{Server: "prod:6378", TLS: true}
	require.NoError(t, config.Save(fileCfg, cfgPath))

	parse := func(args ...string) (*GlobalFlags, error) {
		var got *GlobalFlags
		var perr error
		app := &cli.App{
			Flags: globalFlags(),
			Action: func(c *cli.Context) error {
				got, perr = ParseGlobalFlags(c)
				return nil
			},
		}
		require.NoError(t, app.Run(append([]string{"x", "--config", cfgPath}, args...)))
		return got, perr
	}

	g, err := parse()
	require.NoError(t, err)
	assert.Equal(t, "file:1", g.Server)
	assert.Equal(t, output.FormatYAML, g.Output)
	assert.Equal(t, 5*time.Second, g.Timeout)
	assert.False(t, g.TLS)

	t.Setenv(config.EnvServer, "env:2")
	g, err = parse()
	require.NoError(t, err)
	assert.Equal(t, "env:2", g.Server)

	g, err = parse("-s", "flag:3", "-o", "json", "-t", "2s")
	require.NoError(t, err)
	assert.Equal(t, "flag:3", g.Server)
	assert.Equal(t, output.FormatJSON, g.Output)
	assert.Equal(t, 2*time.Second, g.Timeout)

	t.Setenv(config.EnvServer, "")
	g, err = parse("-C", "prod")
	require.NoError(t, err)
	assert.Equal(t, "prod:6378", g.Server)
	assert.True(t, g.TLS)

	g, err = parse("-C", "prod", "--tls=false")
	require.NoError(t, err)
	assert.False(t, g.TLS)

	_, err = parse("-o", "xml")
	assert.Error(t, err)

	_, err = parse("-C", "missing")
	assert.Error(t, err)
}

func TestGlobalFlags_Options(t *testing.T) {
	opts, err := (&GlobalFlags{Timeout: time.Second}).Options()
	require.NoError(t, err)
	assert.Equal(t, time.Second, opts.Timeout)
	assert.Nil(t, opts.TLS)

	opts, err = (&GlobalFlags{TLS: true}).Options()
	require.NoError(t, err)
	require.NotNil(t, opts.TLS)
	assert.False(t, opts.TLS.InsecureSkipVerify)

	opts, err = (&GlobalFlags{Insecure: true}).Options()
	require.NoError(t, err)
	require.NotNil(t, opts.TLS)
	assert.True(t, opts.TLS.InsecureSkipVerify)

	_, err = (&GlobalFlags{CACert: filepath.Join(t.TempDir(), "missing.pem")}).Options()
	assert.Error(t, err)
}

func TestKVCommands_TLS(t *testing.T) {
	kp := tlstest.WriteKeyPair(t, t.TempDir())
	cfg := redisserver.DefaultConfig()
	cfg.Address = "127.0.0.1:0"
	cfg.TLSCertFile = kp.CertFile
	cfg.TLSKeyFile = kp.KeyFile
	srv := redisserver.New(cfg, dispatch.NewDispatcher(memory.New()), nil, nil)
	require.NoError(t, srv.Start(context.Background()))
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	addr := srv.Addr().String()

	out, err := runApp(t, "", "-s", addr, "--cacert", kp.CertFile, "set", "k", "secure")
	require.NoError(t, err)
	assert.Equal(t, "OK\n", out)

	out, err = runApp(t, "", "-s", addr, "--insecure", "get", "k")
	require.NoError(t, err)
	assert.Equal(t, "\"secure\"\n", out)

	// Unknown CA.
	_, err = runApp(t, "", "-s", addr, "--tls", "-t", "2s", "get", "k")
	assert.Error(t, err)
}

func TestKVCommands(t *testing.T) {
	addr := startServer(t)

	out, err := runApp(t, "", "-s", addr, "get", "foo")
	require.NoError(t, err)
	assert.Equal(t, "(nil)\n", out)

	out, err = runApp(t, "", "-s", addr, "set", "foo", "hello world")
	require.NoError(t, err)
	assert.Equal(t, "OK\n", out)

	out, err = runApp(t, "", "-s", addr, "get", "foo")
	require.NoError(t, err)
	assert.Equal(t, "\"hello world\"\n", out)

	out, err = runApp(t, "", "-s", addr, "del", "foo")
	require.NoError(t, err)
	assert.Equal(t, "OK\n", out)

	out, err = runApp(t, "", "-s", addr, "get", "foo")
	require.NoError(t, err)
	assert.Equal(t, "(nil)\n", out)
}

func TestKVCommands_Usage(t *testing.T) {
	addr := startServer(t)

	for _, args := range [][]string{
		{"get"},
		{"get", "a", "b"},
		{"set", "a"},
		{"del"},
		{"exec"},
	} {
		_, err := runApp(t, "", append([]string{"-s", addr}, args...)...)
		assert.Error(t, err, "args %v", args)
	}
}

func TestExecCommand(t *testing.T) {
	addr := startServer(t)

	out, err := runApp(t, "", "-s", addr, "exec", "SET", "-k", "-v")
	require.NoError(t, err)
	assert.Equal(t, "OK\n", out)

	out, err = runApp(t, "", "-s", addr, "exec", "GET", "-k")
	require.NoError(t, err)
	assert.Equal(t, "\"-v\"\n", out)

	// Error replies are printed, not returned.
	out, err = runApp(t, "", "-s", addr, "exec", "PING")
	require.NoError(t, err)
	assert.Equal(t, "(error) ERR unsupported command 'PING'\n", out)

	out, err = runApp(t, "", "-s", addr, "exec", "GET")
	require.NoError(t, err)
	assert.Contains(t, out, "wrong number of arguments")
}

func TestImplicitExec(t *testing.T) {
	addr := startServer(t)

	out, err := runApp(t, "", "-s", addr, "SET", "k", "v")
	require.NoError(t, err)
	assert.Equal(t, "OK\n", out)

	out, err = runApp(t, "", "-s", addr, "-o", "json", "GET", "k")
	require.NoError(t, err)

	var reply struct {
		Type  string `json:"type"`
		Value string `json:"value"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &reply))
	assert.Equal(t, "bulk-string", reply.Type)
	assert.Equal(t, "v", reply.Value)
}

func TestInteractive(t *testing.T) {
	addr := startServer(t)

	out, err := runApp(t, "set greeting 'hi there'\nget greeting\nexit\n", "-s", addr)
	require.NoError(t, err)
	assert.Contains(t, out, addr+"> OK\n")
	assert.Contains(t, out, "\"hi there\"\n")

	// History lands in the isolated home directory.
	data, err := os.ReadFile(filepath.Join(os.Getenv("HOME"), ".rudis", "history"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "get greeting")
}

func TestInteractive_ServerDown(t *testing.T) {
	out, err := runApp(t, "get a\n", "-s", "127.0.0.1:1", "-t", "200ms")
	require.NoError(t, err)
	assert.Contains(t, out, "Error: dial 127.0.0.1:1")
}

func TestDial_Refused(t *testing.T) {
	_, err := runApp(t, "", "-s", "127.0.0.1:1", "-t", "200ms", "get", "a")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dial 127.0.0.1:1")
}

func TestBenchCommand(t *testing.T) {
	addr := startServer(t)

	out, err := runApp(t, "", "-s", addr, "-o", "json", "bench", "-c", "4", "-n", "200", "--key", "bench:t", "-q")
	require.NoError(t, err)

	var res BenchResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, 4, res.Clients)
	assert.Equal(t, 200, res.Requests)
	assert.Zero(t, res.Errors)
	assert.True(t, res.Consistent, "final value %q", res.FinalValue)
	assert.Len(t, res.FinalValue, 16)
}

func TestRunBench(t *testing.T) {
	addr := startServer(t)

	var progress bytes.Buffer
	res, err := RunBench(context.Background(), addr, connection.Options{}, BenchConfig{
		Clients:   8,
		Requests:  1001,
		Key:       "shared",
		ValueSize: 64,
	}, &progress)
	require.NoError(t, err)

	assert.Equal(t, 1001, res.Requests)
	assert.Zero(t, res.Errors)
	assert.True(t, res.Consistent)
	assert.Len(t, res.FinalValue, 64)
	assert.Greater(t, res.OpsPerSec, 0.0)
	assert.Contains(t, progress.String(), "100% (1001/1001)")
}

func TestRunBench_MoreClientsThanRequests(t *testing.T) {
	addr := startServer(t)

	res, err := RunBench(context.Background(), addr, connection.Options{}, BenchConfig{
		Clients:  10,
		Requests: 3,
		Key:      "k",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Clients)
	assert.True(t, res.Consistent)
}

func TestRunBench_InvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  BenchConfig
	}{
		{"no clients", BenchConfig{Clients: 0, Requests: 1, Key: "k"}},
		{"no requests", BenchConfig{Clients: 1, Requests: 0, Key: "k"}},
		{"no key", BenchConfig{Clients: 1, Requests: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := RunBench(context.Background(), "127.0.0.1:1", connection.Options{}, tt.cfg, nil)
			assert.Error(t, err)
		})
	}
}

func TestRunBench_ServerDown(t *testing.T) {
	_, err := RunBench(context.Background(), "127.0.0.1:1", connection.Options{Timeout: 200 * time.Millisecond},
		BenchConfig{Clients: 2, Requests: 10, Key: "k"}, nil)
	assert.Error(t, err)
}

func TestBenchValue(t *testing.T) {
	assert.Equal(t, "3:14:xxxxx", benchValue(3, 14, 10))
	assert.Equal(t, "12:345:", benchValue(12, 345, 2))
	assert.NotEqual(t, benchValue(1, 11, 16), benchValue(11, 1, 16))
}
