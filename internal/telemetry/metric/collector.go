package metric

import "github.com/prometheus/client_golang/prometheus"

// Sizer reports the number of keys held by a store.
type Sizer interface {
	Len() int
}

// StoreCollector reads the key count at scrape time, so the store does
// not need to update a gauge on every write.
type StoreCollector struct {
	store Sizer
	keys  *prometheus.Desc
}

// NewStoreCollector creates a collector for s.
func NewStoreCollector(s Sizer) *StoreCollector {
	return &StoreCollector{
		store: s,
		keys: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "keys"),
			"Keys currently held by the store.",
			nil, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *StoreCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.keys
}

// Collect implements prometheus.Collector.
func (c *StoreCollector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.keys, prometheus.GaugeValue, float64(c.store.Len()))
}
