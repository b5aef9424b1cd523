// Package metric provides Prometheus metrics for rudis.
//
//   - prometheus.go: Registry, recording helpers and the /metrics handler
//   - collector.go: custom collector reporting the store's key count
//
// All recording methods accept a nil *Registry, so components can be
// built without metrics in tests.
package metric
