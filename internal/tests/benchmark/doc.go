// Package benchmark holds performance benchmarks for rudis.
//
// Run with:
//
//	go test -bench=. -benchmem ./internal/tests/benchmark/
//
// Benchmarks cover the codec, the store under contention, the dispatcher
// and a real server over loopback with and without pipelining.
package benchmark
