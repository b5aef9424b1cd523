// Package output renders rudis-cli results.
//
//   - formatter.go: Formatter interface and factory
//   - table.go: human-readable rendering via text/tabwriter
//   - json.go: indented JSON
//   - yaml.go: YAML via gopkg.in/yaml.v3
//   - progress.go: request counter for long-running commands
//   - reply.go: printable form of server replies
//
// Types that know how to print themselves for humans implement
// TableRenderer; everything else goes through the generic struct and map
// rendering in table.go.
package output
