// Package buildinfo exposes version information for rudis binaries.
//
// Release builds inject values via ldflags:
//
//	go build -ldflags "-X github.com/yndnr/rudis/internal/infra/buildinfo.Version=v0.1.0 \
//	  -X github.com/yndnr/rudis/internal/infra/buildinfo.Commit=$(git rev-parse --short HEAD)"
//
// Fields left unset fall back to what the Go toolchain embedded in the
// binary (VCS revision and time, compiler version).
package buildinfo
