// Package command interprets decoded RESP requests and executes them
// against the key-value store.
//
//   - command.go: Command and Interpret (request shape validation)
//   - dispatcher.go: Dispatcher, the name -> handler routing table
//   - handlers.go: GET, SET and DEL
//   - errors.go: request-level errors and their reply text
//
// Command names are matched case-insensitively. Keys and values are
// opaque, case-sensitive strings. Every failure is turned into an error
// reply; Dispatch never returns an error and never panics outward.
package command
