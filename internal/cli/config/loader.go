package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables read by Merge.
const (
	EnvServer  = "RUDIS_SERVER"
	EnvOutput  = "RUDIS_OUTPUT"
	EnvTimeout = "RUDIS_TIMEOUT"
)

// DefaultConfigPath returns the default CLI config file path.
func DefaultConfigPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".rudis", "cli.yaml")
}

// Load reads the CLI configuration from path. A missing file yields the
// defaults. Keys absent from the file keep their default values.
func Load(path string) (*CLIConfig, error) {
	if path == "" {
		path = DefaultConfigPath()
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read cli config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse cli config %s: %w", path, err)
	}
	if cfg.Connections == nil {
		cfg.Connections = make(map[string]ConnectionConfig)
	}
	return cfg, nil
}

// Save writes cfg to path with owner-only permissions.
func Save(cfg *CLIConfig, path string) error {
	if path == "" {
		path = DefaultConfigPath()
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode cli config: %w", err)
	}
	return os.WriteFile(path, data, 0600)
}

// Merge returns a copy of cfg with the selected connection profile, then
// env, then flags applied. Recognised flag keys are "connection", "server",
// "output" and "timeout"; empty values are ignored.
func Merge(cfg *CLIConfig, env map[string]string, flags map[string]string) (*CLIConfig, error) {
	out := *cfg

	name := out.CurrentConnection
	if v := flags["connection"]; v != "" {
		name = v
	}
	if name != "" {
		conn, ok := out.Connections[name]
		if !ok {
			return nil, fmt.Errorf("unknown connection %q", name)
		}
		out.DefaultServer = conn.Server
		out.TLS = conn.TLS
		out.Insecure = conn.Insecure
		if conn.CACert != "" {
			out.CACert = conn.CACert
		}
	}

	for _, src := range []map[string]string{
		{"server": env[EnvServer], "output": env[EnvOutput], "timeout": env[EnvTimeout]},
		flags,
	} {
		if v := src["server"]; v != "" {
			out.DefaultServer = v
		}
		if v := src["output"]; v != "" {
			out.DefaultOutput = v
		}
		if v := src["timeout"]; v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return nil, fmt.Errorf("invalid timeout %q: %w", v, err)
			}
			out.Timeout = d
		}
	}
	return &out, nil
}
