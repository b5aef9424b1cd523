// Package httpserver serves the rudis admin HTTP endpoints.
//
// Routes:
//
//	GET /metrics   Prometheus exposition
//	GET /health    liveness probe
//	GET /version   build information
//
// The listener is meant for operators and scrapers only; it is disabled
// unless server.metrics.enabled is set.
package httpserver
