// Package config holds rudis-cli preferences.
//
// Preferences live in ~/.rudis/cli.yaml and name the default server, output
// format, request timeout and any saved connection profiles. Environment
// variables (RUDIS_SERVER, RUDIS_OUTPUT, RUDIS_TIMEOUT) and command-line
// flags are merged on top by Merge.
package config
