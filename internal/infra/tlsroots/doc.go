// Package tlsroots loads TLS material for rudis.
//
//   - roots.go: trusted CA pools for client connections
//   - watcher.go: server key pair that reloads when its files change
//
// The tlstest subpackage writes throwaway certificates for tests.
package tlsroots
