// Package config defines the rudis-server configuration.
//
//   - spec.go: ServerConfig struct definition
//   - default.go: default values
//   - verify.go: validation run after loading
//
// Values are loaded by internal/infra/confloader from a YAML file,
// RUDIS_* environment variables and command-line overrides.
package config
