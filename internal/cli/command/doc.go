// Package command defines the rudis-cli commands on urfave/cli/v2.
//
//   - root.go: App, global flags and interactive mode
//   - kv.go: get, set, del and exec
//   - bench.go: concurrent load generator
//
// Commands resolve the connection settings, send requests through
// internal/cli/connection and print replies through internal/cli/output.
package command
