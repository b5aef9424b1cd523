// Package resp implements the RESP2 wire codec used by rudis.
//
// The package maps raw bytes to a small tagged value model and back:
//
//   - types.go: Value and its constructors
//   - reader.go: streaming decoder (one frame per ReadValue call)
//   - writer.go: encoder (Encode, AppendValue, buffered Writer)
//
// Decoding never panics on hostile input. Truncated frames, length
// mismatches and malformed numeric headers surface as ErrProtocol;
// oversized frames surface as ErrLimitExceeded.
package resp
