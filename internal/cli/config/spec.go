package config

import "time"

// CLIConfig is the configuration for rudis-cli.
type CLIConfig struct {
	// Default connection settings
	DefaultServer string        `yaml:"default_server"`
	DefaultOutput string        `yaml:"default_output"` // table, json, yaml
	Timeout       time.Duration `yaml:"timeout"`
	TLS           bool          `yaml:"tls"`
	Insecure      bool          `yaml:"insecure"`
	CACert        string        `yaml:"ca_cert,omitempty"` // PEM file trusted in addition to system roots

	// Saved connections
	Connections map[string]ConnectionConfig `yaml:"connections,omitempty"`

	// Profile applied when --connection is not given
	CurrentConnection string `yaml:"current_connection,omitempty"`
}

// ConnectionConfig is a saved connection profile.
type ConnectionConfig struct {
	Server   string `yaml:"server"`
	TLS      bool   `yaml:"tls,omitempty"`
	Insecure bool   `yaml:"insecure,omitempty"`
	CACert   string `yaml:"ca_cert,omitempty"`
}

// Default returns the default CLI configuration.
func Default() *CLIConfig {
	return &CLIConfig{
		DefaultServer: "127.0.0.1:6378",
		DefaultOutput: "table",
		Timeout:       5 * time.Second,
		Connections:   make(map[string]ConnectionConfig),
	}
}
