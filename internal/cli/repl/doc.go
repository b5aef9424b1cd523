// Package repl provides the interactive mode of rudis-cli.
//
// Each input line is split into arguments with redis-cli quoting rules,
// sent to the server as one request, and the reply is printed with the
// configured output formatter. History is kept in ~/.rudis/history.
package repl
