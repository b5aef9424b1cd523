// Package connection talks RESP to a rudis server on behalf of rudis-cli.
//
//   - client.go: a single connection with request/reply Do
//   - pool.go: a fixed-size pool of clients built on go-commons-pool
//
// A server error reply is returned as a value, not a Go error; use
// ReplyError to turn it into one. Go errors are reserved for transport
// and framing failures, after which the client must not be reused.
package connection
